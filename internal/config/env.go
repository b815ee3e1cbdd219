// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the BASKETMC_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value. apply
// reports whether the value was understood.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) bool
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"PATHS", []string{"paths"}, func(c *AppConfig, v string) bool {
		return parseInt(v, &c.Paths)
	}},
	{"SUBTASKS", []string{"subtasks"}, func(c *AppConfig, v string) bool {
		return parseInt(v, &c.Subtasks)
	}},
	{"PARALLELISM", []string{"parallelism"}, func(c *AppConfig, v string) bool {
		return parseInt(v, &c.Parallelism)
	}},
	{"SEED", []string{"seed"}, func(c *AppConfig, v string) bool {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return false
		}
		c.Seed = parsed
		return true
	}},
	{"RATE", []string{"rate"}, func(c *AppConfig, v string) bool {
		return parseFloat(v, &c.RiskFreeRate)
	}},
	{"HORIZON", []string{"horizon"}, func(c *AppConfig, v string) bool {
		return parseFloat(v, &c.TimeHorizon)
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) bool {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return false
		}
		c.Timeout = parsed
		return true
	}},

	// String overrides
	{"REQUEST", []string{"request"}, func(c *AppConfig, v string) bool {
		c.RequestFile = v
		return true
	}},
	{"JOIN", []string{"join"}, func(c *AppConfig, v string) bool {
		c.Join = v
		return true
	}},
	{"METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig, v string) bool {
		c.MetricsAddr = v
		return true
	}},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) bool {
		c.OutputFile = v
		return true
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) bool {
		c.LogLevel = v
		return true
	}},

	// Boolean overrides
	{"STRICT_WEIGHTS", []string{"strict-weights"}, func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.StrictWeights)
	}},
	{"VERBOSE", []string{"v", "verbose"}, func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.Verbose)
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.Quiet)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.NoColor)
	}},
	{"TUI", []string{"tui"}, func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.TUI)
	}},
}

func parseInt(val string, dst *int) bool {
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return false
	}
	*dst = parsed
	return true
}

func parseFloat(val string, dst *float64) bool {
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return false
	}
	*dst = parsed
	return true
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Unrecognized values leave dst untouched.
func parseBoolEnv(val string, dst *bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		*dst = true
		return true
	case "false", "0", "no":
		*dst = false
		return true
	}
	return false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables (all prefixed with BASKETMC_):
//   - PATHS, SUBTASKS, PARALLELISM, SEED, RATE, HORIZON, TIMEOUT,
//     REQUEST, JOIN, METRICS_ADDR, OUTPUT, LOG_LEVEL,
//     STRICT_WEIGHTS, VERBOSE, QUIET, NO_COLOR, TUI
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if o.apply(config, val) {
				config.markSet(canonicalFlag(o.flags[0]))
			}
		}
	}
}

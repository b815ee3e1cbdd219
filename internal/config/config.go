// Package config parses the basketmc command line into an AppConfig and
// builds the simulation request it describes.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/logging"
	"github.com/agbru/basketmc/internal/orchestration"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "BASKETMC_"

// Defaults applied when neither a flag, an environment variable nor a request
// file provides a value.
const (
	DefaultPathCount    = 10_000
	DefaultRiskFreeRate = 0.05
	DefaultTimeHorizon  = 1.0
	DefaultTimeout      = 5 * time.Minute
	DefaultLogLevel     = "warn"

	// AutoSubtasks makes BuildRequest derive the subtask count from the final
	// path count and parallelism.
	AutoSubtasks = -1
)

// AppConfig aggregates the configuration parameters of a basketmc run.
type AppConfig struct {
	// RequestFile is a YAML or JSON request document. Empty uses the
	// default basket.
	RequestFile string
	// RiskFreeRate is the annual continuously compounded rate r.
	RiskFreeRate float64
	// TimeHorizon is T in years.
	TimeHorizon float64
	// Paths is the total Monte Carlo path budget.
	Paths int
	// Subtasks is the number of worker units. 0 runs a single Worker unit
	// directly; AutoSubtasks sizes the fan-out from the path budget.
	Subtasks int
	// Join selects how the joiner combines partials ("mean" or "vector").
	Join string
	// Seed makes the run reproducible. 0 draws a fresh seed.
	Seed uint64
	// StrictWeights enforces non-negative weights summing to 1.
	StrictWeights bool
	// Parallelism bounds the units executing at once. 0 means GOMAXPROCS.
	Parallelism int
	// Timeout bounds the whole run.
	Timeout time.Duration
	// MetricsAddr, when set, serves /metrics and /healthz on that address.
	MetricsAddr string
	// OutputFile receives the aggregate result document.
	OutputFile string
	// Quiet prints only the basket value.
	Quiet bool
	// Verbose adds the per-run resource report.
	Verbose bool
	// NoColor disables ANSI colors.
	NoColor bool
	// TUI follows the run in the interactive dashboard.
	TUI bool
	// LogLevel is the zerolog level for structured logs on stderr.
	LogLevel string
	// ShowVersion prints the version and exits.
	ShowVersion bool

	// explicit records the settings given on the command line or through
	// the environment, which take precedence over the request file.
	explicit map[string]struct{}
}

// IsSet reports whether the named flag was set on the command line or
// through its environment variable.
func (c AppConfig) IsSet(name string) bool {
	_, ok := c.explicit[name]
	return ok
}

func (c *AppConfig) markSet(name string) {
	if c.explicit == nil {
		c.explicit = make(map[string]struct{})
	}
	c.explicit[name] = struct{}{}
}

// Validate checks the semantic consistency of the configuration.
//
// Returns:
//   - error: A ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate() error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive, got %s", c.Timeout)
	}
	if c.Paths <= 0 {
		return apperrors.NewConfigError("path count must be positive, got %d", c.Paths)
	}
	if c.Subtasks < AutoSubtasks {
		return apperrors.NewConfigError("subtask count must be %d (auto), 0 (single worker) or positive, got %d", AutoSubtasks, c.Subtasks)
	}
	if c.Parallelism < 0 {
		return apperrors.NewConfigError("parallelism must not be negative, got %d", c.Parallelism)
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return apperrors.NewConfigError("risk-free rate must be finite")
	}
	if math.IsNaN(c.TimeHorizon) || math.IsInf(c.TimeHorizon, 0) || c.TimeHorizon <= 0 {
		return apperrors.NewConfigError("time horizon must be positive, got %v", c.TimeHorizon)
	}
	if _, err := orchestration.ParseJoinMode(c.Join); err != nil {
		return err
	}
	if !logging.IsValidLevel(c.LogLevel) {
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("-quiet and -verbose are mutually exclusive")
	}
	if c.Quiet && c.TUI {
		return apperrors.NewConfigError("-quiet and -tui are mutually exclusive")
	}
	return nil
}

// ParseConfig parses command-line arguments, applies environment overrides
// and validates the result. Priority is CLI flags > environment > defaults;
// request file values sit between the environment and the defaults and are
// merged by BuildRequest.
//
// Parameters:
//   - programName: The program name used in usage output.
//   - args: The arguments, without the program name.
//   - errorWriter: Destination for usage and parse errors.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp for -h, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintln(errorWriter, "Values a risk-neutral GBM basket of assets by Monte Carlo simulation.")
		fmt.Fprintf(errorWriter, "Every flag can also be set through %s<NAME> (e.g. %sPATHS).\n\n", EnvPrefix, EnvPrefix)
		fs.PrintDefaults()
	}

	config := AppConfig{}
	fs.StringVar(&config.RequestFile, "request", "", "YAML or JSON request file (basket, rate, horizon, paths).")
	fs.Float64Var(&config.RiskFreeRate, "rate", DefaultRiskFreeRate, "Annual risk-free rate r.")
	fs.Float64Var(&config.TimeHorizon, "horizon", DefaultTimeHorizon, "Time horizon T in years.")
	fs.IntVar(&config.Paths, "paths", DefaultPathCount, "Total number of Monte Carlo paths.")
	fs.IntVar(&config.Subtasks, "subtasks", AutoSubtasks, "Worker units to split the paths across (0 = single worker, -1 = auto).")
	fs.StringVar(&config.Join, "join", string(orchestration.JoinMean), "Join mode: 'mean' or 'vector'.")
	fs.Uint64Var(&config.Seed, "seed", 0, "Base random seed (0 = random).")
	fs.BoolVar(&config.StrictWeights, "strict-weights", false, "Require non-negative weights summing to 1.")
	fs.IntVar(&config.Parallelism, "parallelism", 0, "Maximum units running at once (0 = GOMAXPROCS).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the run.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the aggregate result document to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for -output.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the basket value.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print resource usage after the run.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.TUI, "tui", false, "Follow the run in an interactive dashboard.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Structured log level: debug, info, warn, error.")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version information and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	fs.Visit(func(f *flag.Flag) { config.markSet(canonicalFlag(f.Name)) })
	applyEnvOverrides(&config, fs)

	if config.ShowVersion {
		return config, nil
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// canonicalFlag maps shorthand flags to their long names.
func canonicalFlag(name string) string {
	switch name {
	case "o":
		return "output"
	case "q":
		return "quiet"
	case "v":
		return "verbose"
	}
	return name
}

package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build metadata, set with -ldflags "-X github.com/agbru/basketmc/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request the version, so main can
// answer before flag validation.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-version", "--version", "-V":
			return true
		}
	}
	return false
}

// resolvedVersion prefers the linker-injected version, then the module
// version recorded by `go install`.
func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// PrintVersion writes the version line.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "basketmc %s (commit %s, built %s) %s %s/%s\n",
		resolvedVersion(), Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

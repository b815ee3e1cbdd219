// Package app wires configuration, the local task platform and the CLI
// presentation into the basketmc command.
package app

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/agbru/basketmc/internal/config"
	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/logging"
	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/platform"
	"github.com/agbru/basketmc/internal/ui"
)

// Application represents the basketmc application instance.
type Application struct {
	Config    config.AppConfig
	Processor platform.Processor
	Logger    logging.Logger
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithProcessor replaces the use-case dispatcher that executes units.
func WithProcessor(p platform.Processor) AppOption {
	return func(a *Application) { a.Processor = p }
}

// WithLogger replaces the console logger built from -log-level.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "basketmc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = config.ApplyAdaptiveDefaults(cfg)

	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, "basketmc", logging.ParseLevel(app.Config.LogLevel))
	}
	if app.Processor == nil {
		app.Processor = orchestration.NewDispatcher(app.Logger)
	}
	return app, nil
}

// Run executes the application and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	ui.InitTheme(a.Config.NoColor)
	return a.runSimulation(ctx, out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

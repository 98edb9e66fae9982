package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/agbru/capplan/internal/cli"
	"github.com/agbru/capplan/internal/config"
	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/logging"
	"github.com/agbru/capplan/internal/model"
	"github.com/agbru/capplan/internal/ui"
)

// Application represents the capplan application instance.
type Application struct {
	Config    config.AppConfig
	Registry  *model.Registry
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithRegistry sets a custom model registry for the application.
func WithRegistry(r *model.Registry) AppOption {
	return func(a *Application) { a.Registry = r }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Registry == nil {
		app.Registry = model.NewDefaultRegistry()
	}

	programName := "capplan"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	available := make([]string, 0)
	for _, id := range app.Registry.Models() {
		available = append(available, string(id))
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, available)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.Theme, a.Config.NoColor)

	if a.Config.List {
		return a.runList(out)
	}

	logger, closer, err := logging.Setup(logging.Options{
		Level:     a.Config.LogLevel,
		File:      a.Config.LogFile,
		Format:    a.Config.LogFormat,
		Component: "capplan",
	}, a.ErrWriter)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer closer.Close()

	return a.runSolve(ctx, out, logger)
}

// runList prints the registered models.
func (a *Application) runList(out io.Writer) int {
	entries := make([]cli.ModelEntry, 0)
	for _, id := range a.Registry.Models() {
		routine := model.RoutineName(id)
		entry := cli.ModelEntry{ID: string(id), Routine: routine}
		if s, err := a.Registry.Lookup(routine); err == nil {
			entry.Name = s.Name()
		}
		entries = append(entries, entry)
	}
	cli.DisplayModels(out, entries)
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCode maps an error returned by New to a process exit code. Help is a
// success; every other parse failure is a configuration error.
func ExitCode(err error) int {
	if err == nil || IsHelpError(err) {
		return apperrors.ExitSuccess
	}
	return apperrors.ExitErrorConfig
}

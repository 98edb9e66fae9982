package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/agbru/capplan/internal/cli"
	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/logging"
	"github.com/agbru/capplan/internal/metrics"
	"github.com/agbru/capplan/internal/orchestration"
	"github.com/agbru/capplan/internal/ui"
)

// runSolve drives the selected models, presents the outcomes and writes the
// optional grid and metrics files.
func (a *Application) runSolve(ctx context.Context, out io.Writer, logger logging.Logger) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	ids := orchestration.ResolveModels(a.Config.Model, a.Registry)
	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(ids, out)
	}

	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	m := metrics.New()
	driver := &orchestration.Driver{
		Registry: a.Registry,
		BaseDir:  a.Config.ModelsDir,
		Logger:   logger,
		Metrics:  m,
	}
	outcomes := orchestration.ExecuteModels(ctx, driver, ids, a.Config.ParamOverrides(), reporter, progressOut)
	annotateTimeouts(outcomes, a.Config.Timeout)

	presenter := cli.CLIResultPresenter{Quiet: a.Config.Quiet, Verbose: a.Config.Verbose}
	exitCode := orchestration.AnalyzeResults(outcomes, presenter, out)

	if code := a.saveGrid(outcomes, out); exitCode == apperrors.ExitSuccess {
		exitCode = code
	}
	if a.Config.MetricsFile != "" {
		if err := m.WriteTextfile(a.Config.MetricsFile); err != nil {
			logger.Error("failed to write metrics file", err, logging.String("path", a.Config.MetricsFile))
			fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
			if exitCode == apperrors.ExitSuccess {
				exitCode = apperrors.ExitErrorGeneric
			}
		}
	}
	return exitCode
}

// saveGrid writes every successful grid to the configured output file.
// With several models, the model identifier is inserted before the file
// extension so no grid overwrites another.
func (a *Application) saveGrid(outcomes []orchestration.Outcome, out io.Writer) int {
	if a.Config.OutputFile == "" {
		return apperrors.ExitSuccess
	}
	outputFormat := a.Config.OutputFormat()
	for _, o := range outcomes {
		if o.Err != nil || o.Grid == nil {
			continue
		}
		path := a.Config.OutputFile
		if len(outcomes) > 1 {
			path = outputPathFor(path, string(o.ID))
		}
		if err := cli.WriteGrid(path, outputFormat, o); err != nil {
			err = apperrors.WrapError(err, "saving grid of model %s", o.ID)
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Grid saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// outputPathFor derives a per-model output path: grid.csv -> grid_<id>.csv.
func outputPathFor(path, id string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + id + ext
}

// annotateTimeouts replaces bare deadline errors with a TimeoutError naming
// the routine and the configured limit. Cancellations are left untouched.
func annotateTimeouts(outcomes []orchestration.Outcome, limit time.Duration) {
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err == nil || !errors.Is(o.Err, context.DeadlineExceeded) {
			continue
		}
		o.Err = apperrors.SolveError{
			Model: string(o.ID),
			Cause: apperrors.TimeoutError{Operation: o.Location.Routine, Limit: limit},
		}
	}
}

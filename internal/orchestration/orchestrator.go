package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/model"
	"github.com/agbru/capplan/internal/solver"
)

// ProgressBufferMultiplier sizes the progress channel relative to the number
// of models so slow displays rarely block solvers.
const ProgressBufferMultiplier = 5

// ExecuteModels runs every model in ids concurrently and returns their
// outcomes in input order. Individual failures are reported in the outcomes;
// they never cancel the other solves.
func ExecuteModels(ctx context.Context, driver *Driver, ids []model.ID, overrides solver.Params, reporter ProgressReporter, out io.Writer) []Outcome {
	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	outcomes := make([]Outcome, len(ids))
	progressChan := make(chan ProgressUpdate, len(ids)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(ids), out)

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = driver.Run(ctx, id, overrides, progressSender(ctx, progressChan, i))
			return nil
		})
	}
	_ = g.Wait()

	close(progressChan)
	displayWg.Wait()
	return outcomes
}

// progressSender adapts a solver progress callback onto the shared channel.
// Sends give up once ctx is done so a stuck display cannot hold a solver.
func progressSender(ctx context.Context, ch chan<- ProgressUpdate, index int) solver.ProgressCallback {
	return func(v float64) {
		select {
		case ch <- ProgressUpdate{ModelIndex: index, Value: v}:
		case <-ctx.Done():
		}
	}
}

// AnalyzeResults presents the outcomes and returns the process exit code.
// Successful grids are always shown; the first failure, if any, determines
// the exit code.
func AnalyzeResults(outcomes []Outcome, presenter ResultPresenter, out io.Writer) int {
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No model was run.")
		return apperrors.ExitErrorConfig
	}
	presenter.PresentSummary(outcomes, out)

	var failed *Outcome
	succeeded := 0
	for i := range outcomes {
		if outcomes[i].Err != nil {
			if failed == nil {
				failed = &outcomes[i]
			}
			continue
		}
		succeeded++
		presenter.PresentGrid(outcomes[i], out)
	}

	if failed == nil {
		return apperrors.ExitSuccess
	}
	if succeeded == 0 && len(outcomes) > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No model could be solved.\n")
	}
	return presenter.HandleError(failed.Err, failed.Duration, out)
}

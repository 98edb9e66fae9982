package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/capplan/internal/solver"
)

// ProgressUpdate carries the progress of one running model.
type ProgressUpdate struct {
	// ModelIndex is the position of the model in the run's input order.
	ModelIndex int
	// Value is the normalized progress (0.0 to 1.0).
	Value float64
}

// ProgressReporter defines the interface for displaying solve progress.
// Implementations handle the visual representation (spinners, progress bars)
// while the orchestration layer coordinates the solves.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numModels int, out io.Writer)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines how outcomes are shown to the user.
type ResultPresenter interface {
	// PresentSummary displays one line per outcome, in input order.
	PresentSummary(outcomes []Outcome, out io.Writer)
	// PresentGrid displays the output grid of a successful outcome.
	PresentGrid(outcome Outcome, out io.Writer)
	ErrorHandler
}

// ErrorHandler handles solve errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// ParamsLoader reads optional parameter overrides from a model's resource
// directory. found is false when the directory holds no parameter file.
type ParamsLoader func(dir string) (params solver.Params, found bool, err error)

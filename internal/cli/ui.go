package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/capplan/internal/format"
	"github.com/agbru/capplan/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
	// PreviewRows is the number of grid rows shown when not verbose.
	PreviewRows = 10
)

// Spinner abstracts a terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with an aggregated progress bar and ETA
// until progressChan is closed. It is run in its own goroutine and calls
// wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numModels int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numModels)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := "Solving"
	if agg.IsMultiModel() {
		label = fmt.Sprintf("Solving %d models", numModels)
	}
	render := func(avg float64, eta time.Duration) string {
		return fmt.Sprintf(" %s %s", label, format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(render(0, 0))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				avg := agg.CalculateAverage()
				fmt.Fprintf(out, "%s [%s] %5.1f%% done in %s\n", label,
					format.ProgressBar(avg, ProgressBarWidth), avg*100,
					format.FormatExecutionDuration(agg.Elapsed()))
				return
			}
			p := agg.Update(update)
			s.UpdateSuffix(render(p.AverageProgress, p.ETA))
		case <-ticker.C:
			s.UpdateSuffix(render(agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

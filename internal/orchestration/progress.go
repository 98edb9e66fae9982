package orchestration

import (
	"time"

	"github.com/agbru/capplan/internal/format"
)

// ProgressAggregator combines the progress of concurrently running models
// into one average with an ETA.
type ProgressAggregator struct {
	state     *format.ProgressWithETA
	numModels int
}

// NewProgressAggregator creates an aggregator for numModels models.
// It returns nil if numModels <= 0.
func NewProgressAggregator(numModels int) *ProgressAggregator {
	if numModels <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:     format.NewProgressWithETA(numModels),
		numModels: numModels,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// ModelIndex is the index of the model that sent the update.
	ModelIndex int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all models.
	AverageProgress float64
	// ETA is the estimated time remaining based on smoothed progress rate.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.ModelIndex, update.Value)
	return AggregatedProgress{
		ModelIndex:      update.ModelIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// IsMultiModel returns true if tracking more than one model.
func (a *ProgressAggregator) IsMultiModel() bool {
	return a.numModels > 1
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}

// Elapsed returns the time since the aggregator was created.
func (a *ProgressAggregator) Elapsed() time.Duration {
	return a.state.Elapsed()
}

package rules

import (
	"milecast/internal/forecast"
	"milecast/internal/state"
)

// Forecaster is the slice of the forecast engine the rules depend on. Rules
// only assert structural properties of the result, never exact numbers, so a
// real engine and the heuristic stub are interchangeable.
type Forecaster interface {
	Forecast(milestoneID string, snap *state.Snapshot, opts forecast.Options) (forecast.Result, error)
}

// StubForecaster is the v1 placeholder: a deterministic heuristic returning
// fixed deltas regardless of input. Replacing it with the real engine
// preserves the interface but changes the numbers.
type StubForecaster struct{}

// StubMethod marks results produced by the heuristic stub.
const StubMethod = "heuristic_stub"

// Forecast returns the fixed heuristic deltas.
func (StubForecaster) Forecast(milestoneID string, snap *state.Snapshot, opts forecast.Options) (forecast.Result, error) {
	return forecast.Result{
		MilestoneID:  milestoneID,
		DeltaP50Days: 7,
		DeltaP80Days: 14,
		Confidence:   forecast.ConfidenceLow,
		Method:       StubMethod,
	}, nil
}

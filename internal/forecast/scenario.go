package forecast

import "milecast/internal/state"

// Comparison pairs a baseline forecast with a perturbed one.
type Comparison struct {
	Baseline Result `json:"baseline"`
	Scenario Result `json:"scenario"`
	// DeltaP80Days is scenario minus baseline: positive means the scenario
	// pushes the P80 date out.
	DeltaP80Days int `json:"delta_p80_days"`
}

// MitigationPreview pairs the current forecast with a hypothetically
// mitigated one.
type MitigationPreview struct {
	Current         Result `json:"current"`
	WithMitigation  Result `json:"with_mitigation"`
	ImprovementDays int    `json:"improvement_days_on_p80"`
}

// ForecastWithScenario runs the forecast twice, once untouched and once with
// the scenario applied, and reports the difference.
func (e *Engine) ForecastWithScenario(milestoneID string, snap *state.Snapshot, sc Scenario, opts Options) (Comparison, error) {
	baseOpts := opts
	baseOpts.Scenario = nil
	baseline, err := e.Forecast(milestoneID, snap, baseOpts)
	if err != nil {
		return Comparison{}, err
	}

	scOpts := opts
	scOpts.Scenario = &sc
	perturbed, err := e.Forecast(milestoneID, snap, scOpts)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Baseline:     baseline,
		Scenario:     perturbed,
		DeltaP80Days: perturbed.DeltaP80Days - baseline.DeltaP80Days,
	}, nil
}

// ForecastMitigationImpact previews what mitigating a risk by the given
// number of days would buy on the P80 date.
func (e *Engine) ForecastMitigationImpact(milestoneID string, snap *state.Snapshot, riskID string, reductionDays float64, opts Options) (MitigationPreview, error) {
	baseOpts := opts
	baseOpts.Mitigation = nil
	current, err := e.Forecast(milestoneID, snap, baseOpts)
	if err != nil {
		return MitigationPreview{}, err
	}

	mitOpts := opts
	mitOpts.Mitigation = &Mitigation{RiskID: riskID, ExpectedImpactReductionDays: reductionDays}
	mitigated, err := e.Forecast(milestoneID, snap, mitOpts)
	if err != nil {
		return MitigationPreview{}, err
	}

	return MitigationPreview{
		Current:         current,
		WithMitigation:  mitigated,
		ImprovementDays: current.DeltaP80Days - mitigated.DeltaP80Days,
	}, nil
}

// TopContributors returns the n largest-magnitude breakdown entries.
func (r Result) TopContributors(n int) []Contribution {
	if n > len(r.Contributions) {
		n = len(r.Contributions)
	}
	return r.Contributions[:n]
}

// Package forecast computes probabilistic milestone completion dates from an
// immutable state snapshot. A single pure function covers baseline forecasts,
// what-if scenarios and mitigation previews: the variants only perturb its
// inputs, there is no second code path.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"milecast/internal/fault"
	"milecast/internal/graph"
	"milecast/internal/state"
)

// Method identifies the algorithm that produced a result. Rule consumers must
// not depend on the numbers of any particular method, only on the shape.
const Method = "critical_path_v1"

// ConfidenceLevel grades how calibrated the forecast numbers are. Always LOW
// in this version; the field exists to carry future calibrated values.
type ConfidenceLevel string

const ConfidenceLow ConfidenceLevel = "LOW"

// ScenarioType enumerates the supported snapshot perturbations.
type ScenarioType string

const (
	ScenarioDependencyDelay ScenarioType = "dependency_delay"
	ScenarioScopeChange     ScenarioType = "scope_change"
	ScenarioCapacityChange  ScenarioType = "capacity_change"
)

// Scenario is a local, temporary perturbation applied inside one call.
type Scenario struct {
	Type ScenarioType `json:"scenario_type"`
	// WorkItemID and DelayDays parameterise dependency_delay.
	WorkItemID string  `json:"work_item_id,omitempty"`
	DelayDays  float64 `json:"delay_days,omitempty"`
	// EffortDeltaDays parameterises scope_change.
	EffortDeltaDays float64 `json:"effort_delta_days,omitempty"`
	// CapacityMultiplier parameterises capacity_change (0.8 means the team
	// runs at 80% capacity).
	CapacityMultiplier float64 `json:"capacity_multiplier,omitempty"`
}

// Mitigation is a hypothetical reduction of one risk's impact, applied only
// for the duration of one call.
type Mitigation struct {
	RiskID                      string  `json:"risk_id"`
	ExpectedImpactReductionDays float64 `json:"expected_impact_reduction_days"`
}

// Options perturbs a forecast. The zero value requests the baseline.
type Options struct {
	// AsOf anchors time-dependent checks (acceptance boundary breach). Zero
	// means the snapshot's GeneratedAt, keeping the call a pure function of
	// its inputs.
	AsOf       time.Time   `json:"as_of,omitempty"`
	Scenario   *Scenario   `json:"scenario,omitempty"`
	Mitigation *Mitigation `json:"mitigation,omitempty"`
}

// Contribution names one component of the slip.
type Contribution struct {
	Cause string  `json:"cause"`
	Days  float64 `json:"days"`
}

// Result is a complete milestone forecast with its causal breakdown. The
// contribution days sum to DeltaP80Days within rounding.
type Result struct {
	MilestoneID          string          `json:"milestone_id"`
	TargetDate           time.Time       `json:"target_date"`
	P50Date              time.Time       `json:"p50_date"`
	P80Date              time.Time       `json:"p80_date"`
	DeltaP50Days         int             `json:"delta_p50_days"`
	DeltaP80Days         int             `json:"delta_p80_days"`
	Confidence           ConfidenceLevel `json:"confidence_level"`
	Contributions        []Contribution  `json:"contribution_breakdown"`
	Explanation          string          `json:"explanation"`
	Method               string          `json:"method"`
	ExternalDependencies int             `json:"external_dependencies"`
	InternalDependencies int             `json:"internal_dependencies"`
}

// Engine computes forecasts. It holds no state: every call builds its own
// graph and memoisation table, so concurrent calls on shared snapshots need
// no locks.
type Engine struct{}

// NewEngine creates a forecast engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Forecast produces the P50/P80 completion dates for a milestone under the
// given options. The input snapshot is never mutated.
func (e *Engine) Forecast(milestoneID string, snap *state.Snapshot, opts Options) (Result, error) {
	if err := validateOptions(snap, opts); err != nil {
		return Result{}, err
	}

	m, ok := snap.Milestones[milestoneID]
	if !ok {
		return Result{}, fmt.Errorf("%w: milestone %q", fault.ErrNotFound, milestoneID)
	}

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = snap.GeneratedAt
	}

	// 1. Apply perturbations onto a shallow copy; the original snapshot
	// stays frozen for the duration of the call.
	work := snap
	var scenarioScope float64
	var capacityMultiplier float64
	if sc := opts.Scenario; sc != nil {
		switch sc.Type {
		case ScenarioDependencyDelay:
			work = work.WithScenarioDelay(sc.WorkItemID, sc.DelayDays)
		case ScenarioScopeChange:
			scenarioScope = 0.8 * sc.EffortDeltaDays
		case ScenarioCapacityChange:
			capacityMultiplier = sc.CapacityMultiplier
		}
	}

	// 2. Hypothetical mitigation reduces one risk's effective impact.
	var mitigationReduction float64
	if mit := opts.Mitigation; mit != nil {
		r := work.Risks[mit.RiskID]
		mitigationReduction = r.Impact.ImpactDays
		work = work.WithRiskImpactReduced(mit.RiskID, mit.ExpectedImpactReductionDays)
		mitigationReduction -= work.Risks[mit.RiskID].Impact.ImpactDays
	}

	g, err := graph.Build(work)
	if err != nil {
		return Result{}, err
	}
	dm := newDelayModel(work, g, asOf)

	var contributions []Contribution

	// 3. Dependency contributions: the milestone delay is the maximum
	// propagated delay across its items (critical-path ripple, not a sum).
	depDelay := 0.0
	argmax := ""
	for _, wid := range m.WorkItemIDs {
		p := dm.propagated(wid)
		if p > depDelay || (p == depDelay && p > 0 && (argmax == "" || wid < argmax)) {
			depDelay = p
			argmax = wid
		}
	}
	if argmax != "" {
		contributions = append(contributions, dm.chainContributions(argmax)...)
	}

	external, internal := 0, 0
	for _, wid := range m.WorkItemIDs {
		if w, ok := work.WorkItems[wid]; ok && w.ExternalTeamID != "" {
			external++
		} else {
			internal++
		}
	}
	if len(m.WorkItemIDs) > 0 {
		contributions = append(contributions, Contribution{
			Cause: fmt.Sprintf("Dependency mix: %d external, %d internal", external, internal),
			Days:  0,
		})
	}

	// 4. Risk contributions. An accepted risk whose boundary has been
	// breached is treated as open.
	riskDelay := 0.0
	openOrMitigating := 0
	for _, r := range work.RisksForMilestone(m.ID) {
		status := r.Status
		if r.BoundaryBreached(asOf) {
			status = state.RiskOpen
		}

		var days float64
		var cause string
		switch status {
		case state.RiskMaterialised:
			days = r.Impact.ImpactDays
			cause = fmt.Sprintf("Materialised risk: %s", r.Title)
		case state.RiskOpen:
			days = r.Impact.ImpactDays * r.Probability * 0.5
			cause = fmt.Sprintf("Open risk: %s (probability-weighted)", r.Title)
			openOrMitigating++
		case state.RiskMitigating:
			days = r.Impact.ImpactDays * 0.3
			cause = fmt.Sprintf("Mitigating risk: %s (reduced buffer)", r.Title)
			openOrMitigating++
		default:
			continue
		}
		previewed := opts.Mitigation != nil && r.ID == opts.Mitigation.RiskID && mitigationReduction > 0
		if previewed {
			cause += fmt.Sprintf(" [mitigation preview: -%sd]", formatDays(mitigationReduction))
		}
		if days > 0 || previewed {
			contributions = append(contributions, Contribution{Cause: cause, Days: days})
		}
		riskDelay += days
	}

	// 5. Scope-change contributions from approved decisions.
	scopeDelay := 0.0
	for _, d := range work.DecisionsForMilestone(m.ID) {
		if d.Type != state.DecisionChangeScope || d.Status != state.DecisionApproved {
			continue
		}
		if d.EffortDeltaDays == nil || *d.EffortDeltaDays == 0 {
			continue
		}
		days := 0.8 * *d.EffortDeltaDays
		scopeDelay += days
		contributions = append(contributions, Contribution{
			Cause: fmt.Sprintf("Recent scope change: %s", d.Description),
			Days:  days,
		})
	}
	if scenarioScope != 0 {
		contributions = append(contributions, Contribution{
			Cause: fmt.Sprintf("Scenario: scope +%sd", formatDays(opts.Scenario.EffortDeltaDays)),
			Days:  scenarioScope,
		})
	}

	// 6. Total P50 slip.
	slip := depDelay + riskDelay + scopeDelay + scenarioScope
	if capacityMultiplier > 0 {
		extra := slip * (1/capacityMultiplier - 1)
		contributions = append(contributions, Contribution{
			Cause: fmt.Sprintf("Scenario: capacity x%s", formatDays(capacityMultiplier)),
			Days:  extra,
		})
		slip += extra
	}

	// 7. Uncertainty buffer.
	uncertainty := 3.0 + 2.0*float64(openOrMitigating)
	contributions = append(contributions, Contribution{
		Cause: "Uncertainty buffer (P80)",
		Days:  uncertainty,
	})

	total := slip + uncertainty
	if sum := sumContributions(contributions); math.Abs(sum-total) > 1e-6 {
		return Result{}, fmt.Errorf("%w: contribution sum %.4f disagrees with slip %.4f",
			fault.ErrInternal, sum, total)
	}

	// 9. Sort by descending magnitude; equal magnitudes keep step order.
	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Days) > math.Abs(contributions[j].Days)
	})

	deltaP50 := int(math.Round(slip))
	deltaP80 := int(math.Round(total))
	res := Result{
		MilestoneID:          m.ID,
		TargetDate:           m.TargetDate,
		P50Date:              m.TargetDate.AddDate(0, 0, deltaP50),
		P80Date:              m.TargetDate.AddDate(0, 0, deltaP80),
		DeltaP50Days:         deltaP50,
		DeltaP80Days:         deltaP80,
		Confidence:           ConfidenceLow,
		Contributions:        contributions,
		Method:               Method,
		ExternalDependencies: external,
		InternalDependencies: internal,
	}
	res.Explanation = explain(m, res)
	return res, nil
}

// chainContributions decomposes the critical chain into per-contributor
// entries so the recorded days sum exactly to the milestone dependency delay.
func (dm *delayModel) chainContributions(argmax string) []Contribution {
	var out []Contribution
	for _, id := range dm.criticalChain(argmax) {
		nd := dm.memo[id]
		if nd.own <= 0 {
			continue
		}
		name := dm.snap.WorkItemTitle(id)
		var cause string
		if nd.signal == signalScenario {
			cause = fmt.Sprintf("Scenario: %s delayed by %sd", name, formatDays(nd.scenarioDays))
		} else {
			cause = fmt.Sprintf("Dependency: %s (%sd remaining)", name, formatDays(nd.remaining))
		}
		out = append(out, Contribution{Cause: cause, Days: nd.own})
	}
	return out
}

func validateOptions(snap *state.Snapshot, opts Options) error {
	if sc := opts.Scenario; sc != nil {
		switch sc.Type {
		case ScenarioDependencyDelay:
			if sc.DelayDays < 0 {
				return fmt.Errorf("%w: negative scenario delay %v", fault.ErrInvalidInput, sc.DelayDays)
			}
			if sc.WorkItemID == "" {
				return fmt.Errorf("%w: dependency_delay scenario requires work_item_id", fault.ErrInvalidInput)
			}
		case ScenarioScopeChange:
			// Negative deltas model scope cuts and are allowed.
		case ScenarioCapacityChange:
			if sc.CapacityMultiplier <= 0 {
				return fmt.Errorf("%w: capacity multiplier must be > 0, got %v",
					fault.ErrInvalidInput, sc.CapacityMultiplier)
			}
		default:
			return fmt.Errorf("%w: unknown scenario type %q", fault.ErrInvalidInput, sc.Type)
		}
	}
	if mit := opts.Mitigation; mit != nil {
		if mit.ExpectedImpactReductionDays < 0 {
			return fmt.Errorf("%w: negative impact reduction", fault.ErrInvalidInput)
		}
		if _, ok := snap.Risks[mit.RiskID]; !ok {
			return fmt.Errorf("%w: risk %q", fault.ErrNotFound, mit.RiskID)
		}
	}
	return nil
}

func sumContributions(cs []Contribution) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Days
	}
	return sum
}

func explain(m state.Milestone, r Result) string {
	top := "no slip contributors"
	for _, c := range r.Contributions {
		if c.Days > 0 {
			top = c.Cause
			break
		}
	}
	return fmt.Sprintf("Milestone %s: P50 %s (+%dd), P80 %s (+%dd). Largest contributor: %s.",
		m.Title,
		r.P50Date.Format("2006-01-02"), r.DeltaP50Days,
		r.P80Date.Format("2006-01-02"), r.DeltaP80Days,
		top)
}

// formatDays renders a day count without trailing zeros (2, 2.4, 0.5).
func formatDays(d float64) string {
	return fmt.Sprintf("%g", d)
}

package forecast

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"milecast/internal/fault"
	"milecast/internal/state"
)

func days(d float64) *float64 { return &d }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// baselineDoc is the reference portfolio: milestone M targeting 2026-02-03,
// three in-progress items with 2 days remaining each, one materialised risk
// (3d), one open risk (p=0.4, 5d) and an approved scope change (+3d effort).
func baselineDoc() state.Document {
	return state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "Launch", TargetDate: date(2026, 2, 3), Status: state.MilestonePending,
				WorkItemIDs: []string{"wi_1", "wi_2", "wi_3"}},
		},
		WorkItems: []state.WorkItem{
			{ID: "wi_1", Title: "wi_1", Status: state.WorkItemInProgress, EstimatedDays: 5, RemainingDays: days(2)},
			{ID: "wi_2", Title: "wi_2", Status: state.WorkItemInProgress, EstimatedDays: 5, RemainingDays: days(2)},
			{ID: "wi_3", Title: "wi_3", Status: state.WorkItemInProgress, EstimatedDays: 5, RemainingDays: days(2)},
		},
		Risks: []state.Risk{
			{ID: "r_mat", Title: "Vendor slip", Status: state.RiskMaterialised,
				Impact: state.RiskImpact{ImpactDays: 3}, MilestoneID: "M"},
			{ID: "r_open", Title: "Key person out", Status: state.RiskOpen, Probability: 0.4,
				Impact: state.RiskImpact{ImpactDays: 5}, MilestoneID: "M"},
		},
		Decisions: []state.Decision{
			{ID: "d_scope", Type: state.DecisionChangeScope, Status: state.DecisionApproved,
				Description: "Add reporting", MilestoneID: "M", EffortDeltaDays: days(3),
				Timestamp: date(2026, 1, 10)},
		},
	}
}

func TestForecastBaselineWithMaterialisedRisk(t *testing.T) {
	snap := state.NewSnapshot(baselineDoc())
	res, err := NewEngine().Forecast("M", snap, Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	// dep 2 + materialised 3 + open 0.4*5*0.5 + scope 2.4 = 8.4 -> 8
	if res.DeltaP50Days != 8 {
		t.Errorf("Expected P50 slip 8, got %d", res.DeltaP50Days)
	}
	// + uncertainty 3 + 2*1 = 13.4 -> 13
	if res.DeltaP80Days != 13 {
		t.Errorf("Expected P80 slip 13, got %d", res.DeltaP80Days)
	}
	if want := date(2026, 2, 11); !res.P50Date.Equal(want) {
		t.Errorf("Expected P50 date %s, got %s", want, res.P50Date)
	}
	if want := date(2026, 2, 16); !res.P80Date.Equal(want) {
		t.Errorf("Expected P80 date %s, got %s", want, res.P80Date)
	}

	if len(res.Contributions) != 6 {
		t.Fatalf("Expected 6 contribution entries, got %d: %+v", len(res.Contributions), res.Contributions)
	}
	// Sorted by magnitude: uncertainty 5 first, dependency-mix 0 last.
	if res.Contributions[0].Days != 5 {
		t.Errorf("Expected uncertainty buffer (5d) first, got %+v", res.Contributions[0])
	}
	if last := res.Contributions[5]; last.Days != 0 || !strings.HasPrefix(last.Cause, "Dependency mix") {
		t.Errorf("Expected zero-day dependency mix entry last, got %+v", last)
	}

	var sum float64
	for _, c := range res.Contributions {
		sum += c.Days
	}
	if math.Abs(sum-13.4) > 1e-9 {
		t.Errorf("Expected contributions to sum to 13.4, got %v", sum)
	}

	if res.Method != Method {
		t.Errorf("Expected method %q, got %q", Method, res.Method)
	}
	if res.Confidence != ConfidenceLow {
		t.Errorf("Expected LOW confidence, got %s", res.Confidence)
	}
}

func TestForecastDependencyDelayScenario(t *testing.T) {
	doc := baselineDoc()
	// A feeds wi_1 from outside the milestone.
	doc.WorkItems = append(doc.WorkItems, state.WorkItem{
		ID: "A", Title: "A", Status: state.WorkItemNotStarted, EstimatedDays: 4,
	})
	for i := range doc.WorkItems {
		if doc.WorkItems[i].ID == "wi_1" {
			doc.WorkItems[i].DependsOn = []string{"A"}
		}
	}
	snap := state.NewSnapshot(doc)

	cmp, err := NewEngine().ForecastWithScenario("M", snap,
		Scenario{Type: ScenarioDependencyDelay, WorkItemID: "A", DelayDays: 5}, Options{})
	if err != nil {
		t.Fatalf("ForecastWithScenario failed: %v", err)
	}

	if cmp.Baseline.DeltaP80Days != 13 {
		t.Errorf("Expected baseline P80 slip 13, got %d", cmp.Baseline.DeltaP80Days)
	}
	if cmp.Scenario.DeltaP80Days != 18 {
		t.Errorf("Expected scenario P80 slip 18, got %d", cmp.Scenario.DeltaP80Days)
	}
	if cmp.DeltaP80Days != 5 {
		t.Errorf("Expected delta 5, got %d", cmp.DeltaP80Days)
	}

	found := false
	for _, c := range cmp.Scenario.Contributions {
		if c.Cause == "Scenario: A delayed by 5d" && c.Days == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected scenario contribution for A, got %+v", cmp.Scenario.Contributions)
	}
}

func TestForecastZeroDelayScenarioIsNoOp(t *testing.T) {
	snap := state.NewSnapshot(baselineDoc())
	eng := NewEngine()

	cmp, err := eng.ForecastWithScenario("M", snap,
		Scenario{Type: ScenarioDependencyDelay, WorkItemID: "wi_1", DelayDays: 0}, Options{})
	if err != nil {
		t.Fatalf("ForecastWithScenario failed: %v", err)
	}
	if cmp.DeltaP80Days != 0 {
		t.Errorf("Expected zero-delay scenario to be a no-op, got delta %d", cmp.DeltaP80Days)
	}
	if !reflect.DeepEqual(cmp.Baseline, cmp.Scenario) {
		t.Errorf("Expected identical baseline and scenario results")
	}
}

func TestForecastMitigationPreview(t *testing.T) {
	doc := state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_1"}},
		},
		WorkItems: []state.WorkItem{
			{ID: "wi_1", Title: "wi_1", Status: state.WorkItemInProgress, EstimatedDays: 5, RemainingDays: days(2)},
		},
		Risks: []state.Risk{
			{ID: "R", Title: "R", Status: state.RiskMaterialised,
				Impact: state.RiskImpact{ImpactDays: 6}, MilestoneID: "M"},
		},
	}
	snap := state.NewSnapshot(doc)

	prev, err := NewEngine().ForecastMitigationImpact("M", snap, "R", 4.0, Options{})
	if err != nil {
		t.Fatalf("ForecastMitigationImpact failed: %v", err)
	}
	if prev.ImprovementDays != 4 {
		t.Errorf("Expected 4 days improvement, got %d", prev.ImprovementDays)
	}
	if prev.Current.DeltaP80Days != prev.WithMitigation.DeltaP80Days+4 {
		t.Errorf("Expected mitigated P80 to be 4 days earlier: %d vs %d",
			prev.Current.DeltaP80Days, prev.WithMitigation.DeltaP80Days)
	}

	found := false
	for _, c := range prev.WithMitigation.Contributions {
		if strings.Contains(c.Cause, "[mitigation preview: -4d]") {
			found = true
			if c.Days != 2 {
				t.Errorf("Expected mitigated impact 2d, got %v", c.Days)
			}
		}
	}
	if !found {
		t.Errorf("Expected mitigation preview tag, got %+v", prev.WithMitigation.Contributions)
	}

	// The original snapshot must be untouched.
	if snap.Risks["R"].Impact.ImpactDays != 6 {
		t.Errorf("Mitigation preview mutated the snapshot: %v", snap.Risks["R"].Impact.ImpactDays)
	}
}

func TestForecastEmptyMilestone(t *testing.T) {
	doc := state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1)},
		},
	}
	res, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if res.DeltaP50Days != 0 {
		t.Errorf("Expected zero P50 slip, got %d", res.DeltaP50Days)
	}
	if res.DeltaP80Days != 3 {
		t.Errorf("Expected P80 slip 3 (bare uncertainty), got %d", res.DeltaP80Days)
	}
	if !res.P50Date.Equal(res.TargetDate) {
		t.Errorf("Expected P50 date to equal target, got %s", res.P50Date)
	}
	if len(res.Contributions) != 1 {
		t.Errorf("Expected only the uncertainty entry, got %+v", res.Contributions)
	}
}

func TestForecastAllItemsCompleted(t *testing.T) {
	doc := baselineDoc()
	for i := range doc.WorkItems {
		doc.WorkItems[i].Status = state.WorkItemCompleted
		doc.WorkItems[i].RemainingDays = nil
	}
	res, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	// dep 0, risks 3 + 1.0, scope 2.4 = 6.4 -> 6; + 5 = 11.4 -> 11
	if res.DeltaP50Days != 6 {
		t.Errorf("Expected P50 slip 6 with no dependency delay, got %d", res.DeltaP50Days)
	}
	if res.DeltaP80Days != 11 {
		t.Errorf("Expected P80 slip 11, got %d", res.DeltaP80Days)
	}
}

func TestForecastIsIdempotent(t *testing.T) {
	snap := state.NewSnapshot(baselineDoc())
	eng := NewEngine()

	first, err := eng.Forecast("M", snap, Options{})
	if err != nil {
		t.Fatalf("first Forecast failed: %v", err)
	}
	second, err := eng.Forecast("M", snap, Options{})
	if err != nil {
		t.Fatalf("second Forecast failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Forecast is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first.P80Date.Before(first.P50Date) {
		t.Errorf("P80 date %s precedes P50 date %s", first.P80Date, first.P50Date)
	}
}

func TestForecastBreachedBoundaryCountsAsOpen(t *testing.T) {
	boundary := date(2026, 1, 10)
	doc := state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_1"}},
		},
		WorkItems: []state.WorkItem{
			{ID: "wi_1", Title: "wi_1", Status: state.WorkItemCompleted},
		},
		Risks: []state.Risk{
			{ID: "R", Title: "R", Status: state.RiskAccepted, Probability: 0.5,
				Impact:             state.RiskImpact{ImpactDays: 8},
				AcceptanceBoundary: state.BoundaryDate, BoundaryDate: &boundary,
				MilestoneID: "M"},
		},
	}
	snap := state.NewSnapshot(doc)
	eng := NewEngine()

	// GeneratedAt is past the boundary: the accepted risk contributes as open.
	res, err := eng.Forecast("M", snap, Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	// open contribution 8*0.5*0.5 = 2 -> slip 2, uncertainty 3+2 = 5
	if res.DeltaP50Days != 2 || res.DeltaP80Days != 7 {
		t.Errorf("Expected slip 2/7 with breached boundary, got %d/%d", res.DeltaP50Days, res.DeltaP80Days)
	}

	// Before the boundary the acceptance holds and the risk is silent.
	res, err = eng.Forecast("M", snap, Options{AsOf: date(2026, 1, 5)})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if res.DeltaP50Days != 0 || res.DeltaP80Days != 3 {
		t.Errorf("Expected slip 0/3 inside the boundary, got %d/%d", res.DeltaP50Days, res.DeltaP80Days)
	}
}

func TestForecastCriticalityAndSlackShapeDelay(t *testing.T) {
	doc := state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_down"}},
		},
		WorkItems: []state.WorkItem{
			{ID: "wi_down", Title: "down", Status: state.WorkItemInProgress, EstimatedDays: 4, RemainingDays: days(4)},
			{ID: "wi_up", Title: "up", Status: state.WorkItemInProgress, EstimatedDays: 6, RemainingDays: days(6)},
		},
		Dependencies: []state.Dependency{
			{ID: "dep_1", FromID: "wi_down", ToID: "wi_up",
				Criticality: state.CriticalityCritical, SlackDays: 2},
		},
	}
	res, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	// up (the blocker, governed by dep_1): 6*2.0 - 2 = 10
	// down: own 4, propagated 4 + 10 = 14; + uncertainty 3
	if res.DeltaP50Days != 14 {
		t.Errorf("Expected P50 slip 14, got %d", res.DeltaP50Days)
	}
	if res.DeltaP80Days != 17 {
		t.Errorf("Expected P80 slip 17, got %d", res.DeltaP80Days)
	}
}

func TestForecastProgressSignals(t *testing.T) {
	cases := []struct {
		name      string
		remaining *float64
		pct       *float64
		wantP50   int
	}{
		// (1 - 0.4) * 10 = 6
		{"completion percentage alone", nil, days(0.4), 6},
		// max(3, (1 - 0.5) * 10) = 5
		{"completion more pessimistic than remaining", days(3), days(0.5), 5},
		// max(6, (1 - 0.5) * 10) = 6
		{"remaining more pessimistic than completion", days(6), days(0.5), 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := state.Document{
				GeneratedAt: date(2026, 1, 15),
				Milestones: []state.Milestone{
					{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_1"}},
				},
				WorkItems: []state.WorkItem{
					{ID: "wi_1", Title: "wi_1", Status: state.WorkItemInProgress, EstimatedDays: 10,
						RemainingDays: tc.remaining, CompletionPercentage: tc.pct},
				},
			}
			res, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
			if err != nil {
				t.Fatalf("Forecast failed: %v", err)
			}
			if res.DeltaP50Days != tc.wantP50 {
				t.Errorf("Expected P50 slip %d, got %d", tc.wantP50, res.DeltaP50Days)
			}
			if res.DeltaP80Days != tc.wantP50+3 {
				t.Errorf("Expected P80 slip %d, got %d", tc.wantP50+3, res.DeltaP80Days)
			}
		})
	}
}

func TestForecastExternalTeamHistory(t *testing.T) {
	cases := []struct {
		name      string
		remaining *float64
		history   []state.ExternalTeamHistory
		wantP50   int
	}{
		// 10 * (1 - 0.5) * 0.8 = 4
		{"history alone", nil,
			[]state.ExternalTeamHistory{{TeamID: "team_np", SlipProbability: 0.8, ReliabilityScore: 0.5}}, 4},
		// base stays the full estimate: 10 * (1 - 0.2) * 1.0 = 8 beats remaining 2
		{"history outweighs small remaining", days(2),
			[]state.ExternalTeamHistory{{TeamID: "team_np", SlipProbability: 1.0, ReliabilityScore: 0.2}}, 8},
		// no history for the team: status heuristic 10 / 2 = 5
		{"unknown team falls back to status", nil, nil, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := state.Document{
				GeneratedAt: date(2026, 1, 15),
				Milestones: []state.Milestone{
					{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_1"}},
				},
				WorkItems: []state.WorkItem{
					{ID: "wi_1", Title: "wi_1", Status: state.WorkItemInProgress, EstimatedDays: 10,
						RemainingDays: tc.remaining, ExternalTeamID: "team_np"},
				},
				TeamHistory: tc.history,
			}
			res, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
			if err != nil {
				t.Fatalf("Forecast failed: %v", err)
			}
			if res.DeltaP50Days != tc.wantP50 {
				t.Errorf("Expected P50 slip %d, got %d", tc.wantP50, res.DeltaP50Days)
			}
			if res.ExternalDependencies != 1 || res.InternalDependencies != 0 {
				t.Errorf("Expected 1 external / 0 internal, got %d/%d",
					res.ExternalDependencies, res.InternalDependencies)
			}
		})
	}
}

// dateSlipDoc: feed lands 2026-02-10 but ship (estimate 14, done 2026-02-14)
// needs it by 2026-01-31, ten days earlier.
func dateSlipDoc() state.Document {
	feedExpected := date(2026, 2, 10)
	shipExpected := date(2026, 2, 14)
	return state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_feed"}},
		},
		WorkItems: []state.WorkItem{
			{ID: "wi_feed", Title: "feed", Status: state.WorkItemInProgress, EstimatedDays: 5,
				ExpectedCompletion: &feedExpected},
			{ID: "wi_ship", Title: "ship", Status: state.WorkItemCompleted, EstimatedDays: 14,
				ExpectedCompletion: &shipExpected, DependsOn: []string{"wi_feed"}},
		},
	}
}

func TestForecastDateSlipAgainstNeededBy(t *testing.T) {
	res, err := NewEngine().Forecast("M", state.NewSnapshot(dateSlipDoc()), Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if res.DeltaP50Days != 10 || res.DeltaP80Days != 13 {
		t.Errorf("Expected slip 10/13 from the date slip, got %d/%d",
			res.DeltaP50Days, res.DeltaP80Days)
	}
}

func TestForecastDateSlipFallsBackToMilestoneTarget(t *testing.T) {
	expected := date(2026, 3, 6)
	doc := state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_1"}},
		},
		WorkItems: []state.WorkItem{
			// Nothing waits on wi_1, so the milestone target is the needed-by
			// date: five days of slip.
			{ID: "wi_1", Title: "wi_1", Status: state.WorkItemInProgress, EstimatedDays: 8,
				ExpectedCompletion: &expected},
		},
	}
	res, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if res.DeltaP50Days != 5 || res.DeltaP80Days != 8 {
		t.Errorf("Expected slip 5/8 against the target date, got %d/%d",
			res.DeltaP50Days, res.DeltaP80Days)
	}
}

func TestForecastDateSlipFlooredAtAsOf(t *testing.T) {
	snap := state.NewSnapshot(dateSlipDoc())
	eng := NewEngine()

	// AsOf past the stated completion: the slip is measured from AsOf,
	// 2026-02-20 minus the 2026-01-31 needed-by date.
	res, err := eng.Forecast("M", snap, Options{AsOf: date(2026, 2, 20)})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if res.DeltaP50Days != 20 || res.DeltaP80Days != 23 {
		t.Errorf("Expected slip 20/23 with a stale expected completion, got %d/%d",
			res.DeltaP50Days, res.DeltaP80Days)
	}

	// AsOf before the stated completion leaves the slip untouched.
	res, err = eng.Forecast("M", snap, Options{AsOf: date(2026, 1, 20)})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if res.DeltaP50Days != 10 || res.DeltaP80Days != 13 {
		t.Errorf("Expected slip 10/13 before the expected completion, got %d/%d",
			res.DeltaP50Days, res.DeltaP80Days)
	}
}

func TestForecastErrors(t *testing.T) {
	snap := state.NewSnapshot(baselineDoc())
	eng := NewEngine()

	if _, err := eng.Forecast("nope", snap, Options{}); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown milestone, got %v", err)
	}
	if _, err := eng.Forecast("M", snap, Options{Scenario: &Scenario{
		Type: ScenarioDependencyDelay, WorkItemID: "wi_1", DelayDays: -1,
	}}); !errors.Is(err, fault.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative delay, got %v", err)
	}
	if _, err := eng.Forecast("M", snap, Options{Scenario: &Scenario{
		Type: ScenarioCapacityChange, CapacityMultiplier: 0,
	}}); !errors.Is(err, fault.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero capacity, got %v", err)
	}
	if _, err := eng.Forecast("M", snap, Options{Scenario: &Scenario{
		Type: "weather",
	}}); !errors.Is(err, fault.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown scenario type, got %v", err)
	}
	if _, err := eng.Forecast("M", snap, Options{Mitigation: &Mitigation{
		RiskID: "nope", ExpectedImpactReductionDays: 1,
	}}); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown mitigation risk, got %v", err)
	}
}

func TestForecastCyclicGraphFails(t *testing.T) {
	doc := baselineDoc()
	for i := range doc.WorkItems {
		switch doc.WorkItems[i].ID {
		case "wi_1":
			doc.WorkItems[i].DependsOn = []string{"wi_2"}
		case "wi_2":
			doc.WorkItems[i].DependsOn = []string{"wi_1"}
		}
	}
	_, err := NewEngine().Forecast("M", state.NewSnapshot(doc), Options{})
	if !errors.Is(err, fault.ErrInvalidGraph) {
		t.Errorf("Expected ErrInvalidGraph for cyclic dependencies, got %v", err)
	}
}

func TestForecastCapacityScenario(t *testing.T) {
	doc := state.Document{
		GeneratedAt: date(2026, 1, 15),
		Milestones: []state.Milestone{
			{ID: "M", Title: "M", TargetDate: date(2026, 3, 1), WorkItemIDs: []string{"wi_1"}},
		},
		WorkItems: []state.WorkItem{
			{ID: "wi_1", Title: "wi_1", Status: state.WorkItemInProgress, EstimatedDays: 8, RemainingDays: days(8)},
		},
	}
	cmp, err := NewEngine().ForecastWithScenario("M", state.NewSnapshot(doc),
		Scenario{Type: ScenarioCapacityChange, CapacityMultiplier: 0.8}, Options{})
	if err != nil {
		t.Fatalf("ForecastWithScenario failed: %v", err)
	}
	// 0.8 capacity adds 25%: slip 8 -> 10.
	if cmp.Baseline.DeltaP50Days != 8 || cmp.Scenario.DeltaP50Days != 10 {
		t.Errorf("Expected P50 slip 8 -> 10 at 0.8 capacity, got %d -> %d",
			cmp.Baseline.DeltaP50Days, cmp.Scenario.DeltaP50Days)
	}
}

func TestTopContributors(t *testing.T) {
	res := Result{Contributions: []Contribution{
		{Cause: "a", Days: 5}, {Cause: "b", Days: 3}, {Cause: "c", Days: 1},
	}}
	if got := res.TopContributors(2); len(got) != 2 || got[0].Cause != "a" {
		t.Errorf("Unexpected top contributors: %+v", got)
	}
	if got := res.TopContributors(10); len(got) != 3 {
		t.Errorf("Expected clamp to available entries, got %d", len(got))
	}
}

package forecast

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"milecast/internal/state"
)

// genDoc draws a random acyclic portfolio: a chain-free DAG where item i may
// only depend on items with a lower index.
func genDoc(t *rapid.T) state.Document {
	doc := state.Document{GeneratedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
	n := rapid.IntRange(1, 6).Draw(t, "items")

	m := state.Milestone{
		ID:         "M",
		Title:      "M",
		TargetDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	statuses := []state.WorkItemStatus{
		state.WorkItemNotStarted, state.WorkItemInProgress,
		state.WorkItemBlocked, state.WorkItemCompleted,
	}

	for i := 0; i < n; i++ {
		w := state.WorkItem{
			ID:            fmt.Sprintf("wi_%02d", i),
			Title:         fmt.Sprintf("wi_%02d", i),
			Status:        statuses[rapid.IntRange(0, 3).Draw(t, "status")],
			EstimatedDays: rapid.Float64Range(0, 12).Draw(t, "est"),
		}
		if rapid.Bool().Draw(t, "hasRemaining") {
			rem := rapid.Float64Range(0, 10).Draw(t, "remaining")
			w.RemainingDays = &rem
		}
		for j := 0; j < i; j++ {
			if rapid.Bool().Draw(t, "edge") {
				w.DependsOn = append(w.DependsOn, fmt.Sprintf("wi_%02d", j))
			}
		}
		m.WorkItemIDs = append(m.WorkItemIDs, w.ID)
		doc.WorkItems = append(doc.WorkItems, w)
	}
	doc.Milestones = []state.Milestone{m}

	for r := 0; r < rapid.IntRange(0, 3).Draw(t, "risks"); r++ {
		riskStatuses := []state.RiskStatus{
			state.RiskOpen, state.RiskMaterialised, state.RiskMitigating, state.RiskClosed,
		}
		doc.Risks = append(doc.Risks, state.Risk{
			ID:          fmt.Sprintf("risk_%02d", r),
			Title:       fmt.Sprintf("risk_%02d", r),
			Status:      riskStatuses[rapid.IntRange(0, 3).Draw(t, "riskStatus")],
			Probability: rapid.Float64Range(0, 1).Draw(t, "prob"),
			Impact:      state.RiskImpact{ImpactDays: rapid.Float64Range(0, 15).Draw(t, "impact")},
			MilestoneID: "M",
		})
	}
	return doc
}

func TestForecastProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		snap := state.NewSnapshot(genDoc(rt))
		eng := NewEngine()

		res, err := eng.Forecast("M", snap, Options{})
		if err != nil {
			rt.Fatalf("Forecast failed: %v", err)
		}

		// Contributions account for the whole P80 slip within rounding.
		var sum float64
		for _, c := range res.Contributions {
			sum += c.Days
		}
		if math.Abs(sum-float64(res.DeltaP80Days)) > 0.5 {
			rt.Fatalf("Contribution sum %v disagrees with P80 slip %d", sum, res.DeltaP80Days)
		}

		if res.P80Date.Before(res.P50Date) {
			rt.Fatalf("P80 %s precedes P50 %s", res.P80Date, res.P50Date)
		}
		if res.DeltaP50Days < 0 || res.DeltaP80Days < res.DeltaP50Days {
			rt.Fatalf("Slip ordering broken: p50=%d p80=%d", res.DeltaP50Days, res.DeltaP80Days)
		}

		// Contributions are sorted by descending magnitude.
		for i := 1; i < len(res.Contributions); i++ {
			if math.Abs(res.Contributions[i].Days) > math.Abs(res.Contributions[i-1].Days) {
				rt.Fatalf("Contributions not sorted at %d: %+v", i, res.Contributions)
			}
		}

		// Same inputs, same output; the snapshot is never written.
		again, err := eng.Forecast("M", snap, Options{})
		if err != nil {
			rt.Fatalf("second Forecast failed: %v", err)
		}
		if !reflect.DeepEqual(res, again) {
			rt.Fatalf("Forecast not deterministic:\nfirst:  %+v\nsecond: %+v", res, again)
		}
	})
}

func TestForecastScenarioRevertLaw(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		snap := state.NewSnapshot(genDoc(rt))
		eng := NewEngine()

		baseline, err := eng.Forecast("M", snap, Options{})
		if err != nil {
			rt.Fatalf("baseline failed: %v", err)
		}

		// Running a scenario must leave the snapshot's baseline intact.
		target := fmt.Sprintf("wi_%02d", rapid.IntRange(0, len(snap.WorkItems)-1).Draw(rt, "target"))
		delay := rapid.Float64Range(0, 20).Draw(rt, "delay")
		if _, err := eng.ForecastWithScenario("M", snap,
			Scenario{Type: ScenarioDependencyDelay, WorkItemID: target, DelayDays: delay},
			Options{}); err != nil {
			rt.Fatalf("scenario failed: %v", err)
		}

		after, err := eng.Forecast("M", snap, Options{})
		if err != nil {
			rt.Fatalf("post-scenario baseline failed: %v", err)
		}
		if !reflect.DeepEqual(baseline, after) {
			rt.Fatalf("Scenario leaked into the snapshot:\nbefore: %+v\nafter:  %+v", baseline, after)
		}
	})
}

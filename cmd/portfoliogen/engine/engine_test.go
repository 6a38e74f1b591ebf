package engine

import (
	"testing"
	"time"

	"milecast/internal/forecast"
	"milecast/internal/state"
)

func TestGenerateProducesForecastablePortfolio(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, scenario := range []string{"mild", "chaos", "blocked"} {
		doc := Generate(GeneratorConfig{Scenario: scenario, Count: 8, Now: now, Seed: 1})

		if len(doc.Milestones) != 2 {
			t.Fatalf("%s: expected 2 milestones, got %d", scenario, len(doc.Milestones))
		}
		if len(doc.WorkItems) != 16 {
			t.Fatalf("%s: expected 16 work items, got %d", scenario, len(doc.WorkItems))
		}

		snap := state.NewSnapshot(doc)
		for _, m := range doc.Milestones {
			if _, err := forecast.NewEngine().Forecast(m.ID, snap, forecast.Options{}); err != nil {
				t.Errorf("%s: forecast of %s failed: %v", scenario, m.ID, err)
			}
		}
	}
}

func TestGenerateIsSeedDeterministic(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	a := Generate(GeneratorConfig{Scenario: "chaos", Count: 5, Now: now, Seed: 7})
	b := Generate(GeneratorConfig{Scenario: "chaos", Count: 5, Now: now, Seed: 7})

	if len(a.WorkItems) != len(b.WorkItems) {
		t.Fatalf("Item counts differ: %d vs %d", len(a.WorkItems), len(b.WorkItems))
	}
	for i := range a.WorkItems {
		if a.WorkItems[i].EstimatedDays != b.WorkItems[i].EstimatedDays {
			t.Errorf("Item %d differs across runs with the same seed", i)
		}
	}
}

func TestGenerateBlockedScenarioHasBlockedItem(t *testing.T) {
	doc := Generate(GeneratorConfig{Scenario: "blocked", Count: 8, Seed: 1})
	blocked := 0
	for _, w := range doc.WorkItems {
		if w.Status == state.WorkItemBlocked {
			blocked++
		}
	}
	if blocked == 0 {
		t.Errorf("Expected at least one blocked item")
	}
}

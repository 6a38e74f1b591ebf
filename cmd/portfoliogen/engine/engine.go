// Package engine generates synthetic portfolio documents for local testing
// of the forecast and rule engines.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"milecast/internal/state"
)

type GeneratorConfig struct {
	Scenario string // "mild", "chaos" or "blocked"
	Count    int    // work items per milestone
	Now      time.Time
	Seed     int64
}

// Generate builds a two-milestone portfolio whose shape depends on the
// scenario: mild portfolios are mostly on track, chaos portfolios carry open
// risks and scope churn, blocked portfolios have a blocked dependency chain.
func Generate(cfg GeneratorConfig) state.Document {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	doc := state.Document{GeneratedAt: cfg.Now}

	doc.Actors = []state.Actor{
		{ID: "actor_pm", Name: "Delivery Lead", Role: "pm"},
		{ID: "actor_platform", Name: "Platform Team", Role: "team"},
	}
	doc.TeamHistory = []state.ExternalTeamHistory{
		{TeamID: "team_vendor", AvgSlipDays: 6, SlipProbability: 0.5, ReliabilityScore: 0.6},
	}

	for mi := 1; mi <= 2; mi++ {
		mid := fmt.Sprintf("ms_%d", mi)
		target := cfg.Now.AddDate(0, 0, 30*mi)
		m := state.Milestone{
			ID:         mid,
			Title:      fmt.Sprintf("Release %d", mi),
			TargetDate: target,
			Status:     state.MilestonePending,
		}

		prev := ""
		for i := 1; i <= cfg.Count; i++ {
			wid := fmt.Sprintf("wi_%d_%02d", mi, i)
			est := 3.0 + rng.Float64()*7.0
			w := state.WorkItem{
				ID:            wid,
				Title:         fmt.Sprintf("Work item %d.%d", mi, i),
				Status:        state.WorkItemInProgress,
				EstimatedDays: est,
				OwnerID:       "actor_platform",
			}

			// 1. Lifecycle mix: early items are done, late ones untouched.
			progress := float64(i) / float64(cfg.Count)
			switch {
			case progress < 0.3:
				w.Status = state.WorkItemCompleted
			case progress > 0.8:
				w.Status = state.WorkItemNotStarted
			default:
				rem := est * (1 - progress) * (0.5 + rng.Float64())
				w.RemainingDays = &rem
			}

			// 2. Chain each item onto its predecessor.
			if prev != "" {
				w.DependsOn = []string{prev}
			}

			// 3. Scenario twists.
			if cfg.Scenario == "blocked" && i == cfg.Count/2 {
				w.Status = state.WorkItemBlocked
				w.RemainingDays = nil
			}
			if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
				w.ExternalTeamID = "team_vendor"
			}

			m.WorkItemIDs = append(m.WorkItemIDs, wid)
			doc.WorkItems = append(doc.WorkItems, w)
			prev = wid
		}
		doc.Milestones = append(doc.Milestones, m)

		doc.Dependencies = append(doc.Dependencies, state.Dependency{
			ID:          fmt.Sprintf("dep_%d_chain", mi),
			FromID:      fmt.Sprintf("wi_%d_%02d", mi, cfg.Count),
			ToID:        fmt.Sprintf("wi_%d_%02d", mi, cfg.Count-1),
			Criticality: state.CriticalityHigh,
			OwnerID:     "actor_pm",
		})

		doc.Risks = append(doc.Risks, state.Risk{
			ID:          fmt.Sprintf("risk_%d_capacity", mi),
			Title:       fmt.Sprintf("Capacity shortfall in release %d", mi),
			Status:      state.RiskOpen,
			Probability: 0.3 + rng.Float64()*0.4,
			Impact:      state.RiskImpact{ImpactDays: 4 + rng.Float64()*6},
			MilestoneID: mid,
		})
	}

	if cfg.Scenario == "chaos" {
		delta := 10.0
		doc.Decisions = append(doc.Decisions, state.Decision{
			ID:              "dec_scope_growth",
			Type:            state.DecisionChangeScope,
			Status:          state.DecisionApproved,
			Description:     "Late scope addition",
			MilestoneID:     "ms_1",
			EffortDeltaDays: &delta,
			Timestamp:       cfg.Now.AddDate(0, 0, -3),
		})
	}

	return doc
}

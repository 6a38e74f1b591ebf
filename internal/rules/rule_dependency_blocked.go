package rules

import (
	"fmt"

	"milecast/internal/forecast"
	"milecast/internal/state"
)

// riskDeltaP80Threshold is the materiality bar (inclusive): a blocked
// dependency warrants a risk when it moves the P80 date by at least this
// many days.
const riskDeltaP80Threshold = 7.0

// dependencyBlockedRule raises an issue for a blocked dependency and, when
// the forecast says the block is material, a materialised risk and an owner
// follow-up date.
type dependencyBlockedRule struct {
	forecaster Forecaster
}

func (r *dependencyBlockedRule) Name() string { return "dependency_blocked" }

func (r *dependencyBlockedRule) Matches(event Event, _ *state.Snapshot) bool {
	return event.Type == EventDependencyBlocked || event.Type == EventDependencyUnavailable
}

func (r *dependencyBlockedRule) Execute(event Event, snap *state.Snapshot) ([]Command, error) {
	em := newEmitter(event, r.Name())

	dep, ok := snap.Dependencies[event.Payload.DependencyID]
	if !ok {
		em.explain(event.Payload.DependencyID,
			fmt.Sprintf("dependency %q not found in snapshot, nothing to do", event.Payload.DependencyID))
		return em.commands(), nil
	}

	fromTitle := snap.WorkItemTitle(dep.FromID)
	toTitle := snap.WorkItemTitle(dep.ToID)

	// 1. Raise the tracking issue unless one is already open for this
	// dependency. The id is deterministic so executors dedupe naturally.
	issueID := "issue_dep_blocked_" + dep.ID
	_, alreadyOpen := snap.OpenIssueForDependency(dep.ID)
	if !alreadyOpen {
		em.emit(CmdCreateIssue, issueID,
			fmt.Sprintf("Dependency %s is blocked: %s is waiting on %s", dep.ID, fromTitle, toTitle),
			map[string]any{
				"issue_type":    string(state.IssueDependencyBlocked),
				"dependency_id": dep.ID,
				"description":   fmt.Sprintf("%s cannot finish until %s does; the dependency is reported blocked", fromTitle, toTitle),
				"priority":      "high",
			})
	}

	// 2. Ask the forecaster how material the block is for the impacted
	// milestone.
	milestoneID := ""
	if from, ok := snap.WorkItems[dep.FromID]; ok {
		milestoneID = from.MilestoneID
	}
	fc, err := r.forecaster.Forecast(milestoneID, snap, forecast.Options{AsOf: event.Timestamp})
	if err != nil {
		em.explain(dep.ID, fmt.Sprintf("forecast unavailable for milestone %q, risk materiality not assessed", milestoneID))
	}

	// 3. Threshold is inclusive.
	if err == nil && float64(fc.DeltaP80Days) >= riskDeltaP80Threshold {
		riskID := "risk_dep_blocked_" + dep.ID
		riskCmd := CmdCreateRisk
		if _, exists := snap.Risks[riskID]; exists {
			riskCmd = CmdUpdateRisk
		}
		em.emit(riskCmd, riskID,
			fmt.Sprintf("Blocked dependency shifts P80 by %dd (threshold %gd)", fc.DeltaP80Days, riskDeltaP80Threshold),
			map[string]any{
				"title":        fmt.Sprintf("Blocked Dependency: %s", fromTitle),
				"description":  fmt.Sprintf("%s is blocked waiting on %s", fromTitle, toTitle),
				"status":       string(state.RiskMaterialised),
				"milestone_id": milestoneID,
				"impact": map[string]any{
					"blocked_item":   fromTitle,
					"blocking_item":  toTitle,
					"p50_delay_days": fc.DeltaP50Days,
					"p80_delay_days": fc.DeltaP80Days,
				},
			})
	}

	// 4. Owner follow-up in a week, whether or not the block proved material.
	em.emit(CmdSetNextDate, dep.OwnerID,
		fmt.Sprintf("Review blocked dependency %s", dep.ID),
		map[string]any{
			"dependency_id": dep.ID,
			"next_date":     event.Timestamp.AddDate(0, 0, 7),
		})

	return em.commands(), nil
}

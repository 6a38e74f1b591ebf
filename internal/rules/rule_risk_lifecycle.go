package rules

import (
	"fmt"
	"sort"
	"strings"

	"milecast/internal/state"
)

// boundaryBreachedRule re-opens an accepted risk whose acceptance boundary
// has been breached. The forecast engine already treats such risks as open;
// this rule emits the state update that makes the transition durable.
type boundaryBreachedRule struct{}

func (r *boundaryBreachedRule) Name() string { return "risk_boundary_breached" }

func (r *boundaryBreachedRule) Matches(event Event, _ *state.Snapshot) bool {
	return event.Type == EventRiskBoundaryBreached
}

func (r *boundaryBreachedRule) Execute(event Event, snap *state.Snapshot) ([]Command, error) {
	em := newEmitter(event, r.Name())

	risk, ok := snap.Risks[event.Payload.RiskID]
	if !ok {
		em.explain(event.Payload.RiskID,
			fmt.Sprintf("risk %q not found in snapshot, nothing to do", event.Payload.RiskID))
		return em.commands(), nil
	}
	if risk.Status != state.RiskAccepted {
		em.explain(risk.ID,
			fmt.Sprintf("risk %q is %s, not accepted; boundary breach has no effect", risk.ID, risk.Status))
		return em.commands(), nil
	}

	em.emit(CmdUpdateRisk, risk.ID,
		fmt.Sprintf("Acceptance boundary of risk %q breached, returning it to open", risk.Title),
		map[string]any{
			"status":          string(state.RiskOpen),
			"escalation_mode": "normal",
		})

	if risk.MilestoneID != "" {
		em.emit(CmdRecomputeForecast, risk.MilestoneID,
			fmt.Sprintf("Risk %q re-opened, milestone forecast is stale", risk.Title),
			map[string]any{"risk_id": risk.ID})
	}

	return em.commands(), nil
}

// workItemUnblockedRule auto-closes risks raised for a blocked work item once
// the item leaves blocked. Matching risks are found by three keys in order:
// the risk's deterministic id, the impact's blocked_item field, and the
// affected items set.
type workItemUnblockedRule struct{}

func (r *workItemUnblockedRule) Name() string { return "work_item_unblocked" }

func (r *workItemUnblockedRule) Matches(event Event, _ *state.Snapshot) bool {
	return event.Type == EventWorkItemStatusChanged &&
		event.Payload.PreviousStatus == string(state.WorkItemBlocked) &&
		event.Payload.NewStatus != string(state.WorkItemBlocked)
}

func (r *workItemUnblockedRule) Execute(event Event, snap *state.Snapshot) ([]Command, error) {
	em := newEmitter(event, r.Name())

	wid := event.Payload.WorkItemID
	title := snap.WorkItemTitle(wid)
	note := fmt.Sprintf("%s is no longer blocked", title)

	riskIDs := make([]string, 0, len(snap.Risks))
	for id := range snap.Risks {
		riskIDs = append(riskIDs, id)
	}
	sort.Strings(riskIDs)

	closed := 0
	for _, id := range riskIDs {
		risk := snap.Risks[id]
		if risk.Status == state.RiskClosed {
			continue
		}
		if !riskTracksBlockedItem(risk, wid) {
			continue
		}
		em.emit(CmdUpdateRisk, risk.ID,
			fmt.Sprintf("Auto-resolving risk %q: %s", risk.Title, note),
			map[string]any{
				"status":          string(state.RiskClosed),
				"resolution_note": note,
			})
		closed++
	}

	// Resolve the open dependency-blocked issues raised while this item
	// held up its dependents.
	depIDs := make([]string, 0, len(snap.Dependencies))
	for id := range snap.Dependencies {
		depIDs = append(depIDs, id)
	}
	sort.Strings(depIDs)
	for _, id := range depIDs {
		dep := snap.Dependencies[id]
		if dep.ToID != wid {
			continue
		}
		if iss, ok := snap.OpenIssueForDependency(dep.ID); ok {
			em.emit(CmdResolveIssue, iss.ID,
				fmt.Sprintf("Dependency %s unblocked: %s", dep.ID, note),
				map[string]any{"resolution_notes": note})
		}
	}

	if len(em.commands()) == 0 {
		em.explain(wid, fmt.Sprintf("no open risks or issues track blocked item %q", wid))
	}
	return em.commands(), nil
}

// riskTracksBlockedItem applies the three-way scan the historical data
// requires: deterministic risk id, impact.blocked_item, then affected items.
func riskTracksBlockedItem(risk state.Risk, workItemID string) bool {
	if strings.HasSuffix(risk.ID, "_"+workItemID) {
		return true
	}
	if risk.Impact.BlockedItem == workItemID {
		return true
	}
	for _, id := range risk.AffectedItems {
		if id == workItemID {
			return true
		}
	}
	return false
}

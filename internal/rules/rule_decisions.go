package rules

import (
	"fmt"
	"time"

	"milecast/internal/state"
)

// acceptRiskRule records the acceptance of a risk when the matching decision
// is approved: the risk enters quiet monitoring until its boundary breaches
// or its next review date arrives.
type acceptRiskRule struct{}

func (r *acceptRiskRule) Name() string { return "accept_risk_approved" }

func (r *acceptRiskRule) Matches(event Event, snap *state.Snapshot) bool {
	if event.Type != EventDecisionApproved {
		return false
	}
	d, ok := snap.Decisions[event.Payload.DecisionID]
	return ok && d.Type == state.DecisionAcceptRisk
}

func (r *acceptRiskRule) Execute(event Event, snap *state.Snapshot) ([]Command, error) {
	em := newEmitter(event, r.Name())

	d := snap.Decisions[event.Payload.DecisionID]
	risk, ok := snap.Risks[d.RiskID]
	if !ok {
		em.explain(d.RiskID, fmt.Sprintf("decision %s accepts risk %q which is not in the snapshot", d.ID, d.RiskID))
		return em.commands(), nil
	}

	payload := map[string]any{
		"status":              string(state.RiskAccepted),
		"accepted_at":         event.Timestamp,
		"accepted_by":         event.ActorID,
		"acceptance_boundary": string(d.AcceptanceBoundary),
		"escalation_mode":     "quiet_monitoring",
	}
	if d.AcceptanceUntil != nil {
		payload["boundary_date"] = *d.AcceptanceUntil
	}
	em.emit(CmdUpdateRisk, risk.ID,
		fmt.Sprintf("Decision %s accepted risk %q", d.ID, risk.Title), payload)

	// Next review is the earlier of the boundary date and one week out;
	// escalation stays suppressed until the boundary itself.
	nextReview := event.Timestamp.AddDate(0, 0, 7)
	var suppressUntil time.Time
	if d.AcceptanceUntil != nil {
		suppressUntil = *d.AcceptanceUntil
		if d.AcceptanceUntil.Before(nextReview) {
			nextReview = *d.AcceptanceUntil
		}
	}
	nextPayload := map[string]any{"next_date": nextReview}
	if !suppressUntil.IsZero() {
		nextPayload["suppress_escalation_until"] = suppressUntil
	}
	em.emit(CmdSetNextDate, risk.ID,
		fmt.Sprintf("Schedule review of accepted risk %q", risk.Title), nextPayload)

	return em.commands(), nil
}

// mitigateRiskRule starts mitigation on a risk when the matching decision is
// approved and asks downstream consumers to recompute the forecast when the
// mitigation is due.
type mitigateRiskRule struct{}

func (r *mitigateRiskRule) Name() string { return "mitigate_risk_approved" }

func (r *mitigateRiskRule) Matches(event Event, snap *state.Snapshot) bool {
	if event.Type != EventDecisionApproved {
		return false
	}
	d, ok := snap.Decisions[event.Payload.DecisionID]
	return ok && d.Type == state.DecisionMitigateRisk
}

func (r *mitigateRiskRule) Execute(event Event, snap *state.Snapshot) ([]Command, error) {
	em := newEmitter(event, r.Name())

	d := snap.Decisions[event.Payload.DecisionID]
	risk, ok := snap.Risks[d.RiskID]
	if !ok {
		em.explain(d.RiskID, fmt.Sprintf("decision %s mitigates risk %q which is not in the snapshot", d.ID, d.RiskID))
		return em.commands(), nil
	}

	payload := map[string]any{
		"status":                string(state.RiskMitigating),
		"mitigation_started_at": event.Timestamp,
		"mitigation_action":     d.MitigationAction,
	}
	dueDate := event.Timestamp.AddDate(0, 0, 7)
	if d.MitigationDueDate != nil {
		dueDate = *d.MitigationDueDate
		payload["mitigation_due_date"] = dueDate
	}
	em.emit(CmdUpdateRisk, risk.ID,
		fmt.Sprintf("Decision %s started mitigation of risk %q", d.ID, risk.Title), payload)

	em.emit(CmdSetNextDate, risk.ID,
		fmt.Sprintf("Check mitigation progress on risk %q", risk.Title),
		map[string]any{"next_date": dueDate})

	forecastTarget := risk.MilestoneID
	if forecastTarget == "" {
		forecastTarget = risk.ID
	}
	em.emit(CmdUpdateForecast, forecastTarget,
		fmt.Sprintf("Mitigation of risk %q changes the expected impact", risk.Title),
		map[string]any{
			"trigger": "mitigation_completion",
			"risk_id": risk.ID,
		})

	return em.commands(), nil
}

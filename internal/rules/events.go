// Package rules implements the deterministic decision-risk rule engine. It
// consumes one event plus an immutable snapshot and emits an ordered list of
// commands describing what should change; it never writes state itself.
package rules

import (
	"fmt"
	"time"

	"milecast/internal/fault"
)

// EventType enumerates the 19 event types across six families.
type EventType string

const (
	// Dependency family.
	EventDependencyBlocked     EventType = "DEPENDENCY_BLOCKED"
	EventDependencyUnavailable EventType = "DEPENDENCY_UNAVAILABLE"
	EventDependencyDelayed     EventType = "DEPENDENCY_DELAYED"
	EventDependencyResolved    EventType = "DEPENDENCY_RESOLVED"

	// Issue family.
	EventIssueCreated   EventType = "ISSUE_CREATED"
	EventIssueResolved  EventType = "ISSUE_RESOLVED"
	EventIssueEscalated EventType = "ISSUE_ESCALATED"

	// Risk family.
	EventRiskCreated          EventType = "RISK_CREATED"
	EventRiskMaterialised     EventType = "RISK_MATERIALISED"
	EventRiskBoundaryBreached EventType = "RISK_BOUNDARY_BREACHED"
	EventRiskReviewDue        EventType = "RISK_REVIEW_DUE"

	// Decision family.
	EventDecisionProposed   EventType = "DECISION_PROPOSED"
	EventDecisionApproved   EventType = "DECISION_APPROVED"
	EventDecisionRejected   EventType = "DECISION_REJECTED"
	EventDecisionSuperseded EventType = "DECISION_SUPERSEDED"

	// Change family.
	EventWorkItemStatusChanged EventType = "WORK_ITEM_STATUS_CHANGED"
	EventScopeChanged          EventType = "SCOPE_CHANGED"

	// Forecast family.
	EventForecastRequested EventType = "FORECAST_REQUESTED"
	EventForecastCompleted EventType = "FORECAST_COMPLETED"
)

// Payload holds only the ids relevant to the event's type; all other fields
// stay empty.
type Payload struct {
	DependencyID   string `json:"dependency_id,omitempty"`
	WorkItemID     string `json:"work_item_id,omitempty"`
	RiskID         string `json:"risk_id,omitempty"`
	DecisionID     string `json:"decision_id,omitempty"`
	IssueID        string `json:"issue_id,omitempty"`
	MilestoneID    string `json:"milestone_id,omitempty"`
	PreviousStatus string `json:"previous_status,omitempty"`
	NewStatus      string `json:"new_status,omitempty"`
}

// Event is a single immutable occurrence handed to the engine.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
	Payload   Payload   `json:"payload"`
}

// Validate checks that the event carries the id its type requires.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: event id is required", fault.ErrInvalidInput)
	}
	var missing string
	switch e.Type {
	case EventDependencyBlocked, EventDependencyUnavailable,
		EventDependencyDelayed, EventDependencyResolved:
		if e.Payload.DependencyID == "" {
			missing = "dependency_id"
		}
	case EventIssueCreated, EventIssueResolved, EventIssueEscalated:
		if e.Payload.IssueID == "" {
			missing = "issue_id"
		}
	case EventRiskCreated, EventRiskMaterialised,
		EventRiskBoundaryBreached, EventRiskReviewDue:
		if e.Payload.RiskID == "" {
			missing = "risk_id"
		}
	case EventDecisionProposed, EventDecisionApproved,
		EventDecisionRejected, EventDecisionSuperseded:
		if e.Payload.DecisionID == "" {
			missing = "decision_id"
		}
	case EventWorkItemStatusChanged:
		if e.Payload.WorkItemID == "" {
			missing = "work_item_id"
		}
	case EventScopeChanged, EventForecastRequested, EventForecastCompleted:
		if e.Payload.MilestoneID == "" {
			missing = "milestone_id"
		}
	default:
		return fmt.Errorf("%w: unknown event type %q", fault.ErrInvalidInput, e.Type)
	}
	if missing != "" {
		return fmt.Errorf("%w: event %s requires payload.%s", fault.ErrInvalidInput, e.Type, missing)
	}
	return nil
}

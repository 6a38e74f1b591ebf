// Package state defines the portfolio entities and the immutable snapshot the
// reasoning core reads. All identifiers are opaque strings; the core never
// mutates a snapshot after construction.
package state

import "time"

// MilestoneStatus is the lifecycle state of a milestone.
type MilestoneStatus string

const (
	MilestonePending  MilestoneStatus = "pending"
	MilestoneAtRisk   MilestoneStatus = "at_risk"
	MilestoneAchieved MilestoneStatus = "achieved"
	MilestoneMissed   MilestoneStatus = "missed"
)

// WorkItemStatus is the lifecycle state of a work item.
type WorkItemStatus string

const (
	WorkItemNotStarted WorkItemStatus = "not_started"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemBlocked    WorkItemStatus = "blocked"
	WorkItemCompleted  WorkItemStatus = "completed"
)

// Criticality grades a dependency edge.
type Criticality string

const (
	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

// Multiplier returns the delay multiplier for the criticality grade.
func (c Criticality) Multiplier() float64 {
	switch c {
	case CriticalityLow:
		return 0.5
	case CriticalityHigh:
		return 1.5
	case CriticalityCritical:
		return 2.0
	default:
		return 1.0
	}
}

// RiskStatus is a state in the risk state machine. Risks start open and
// end closed; materialised, mitigating, and accepted sit between.
type RiskStatus string

const (
	RiskOpen         RiskStatus = "open"
	RiskMaterialised RiskStatus = "materialised"
	RiskMitigating   RiskStatus = "mitigating"
	RiskAccepted     RiskStatus = "accepted"
	RiskClosed       RiskStatus = "closed"
)

// DecisionType classifies a portfolio decision.
type DecisionType string

const (
	DecisionChangeScope    DecisionType = "change_scope"
	DecisionAcceptRisk     DecisionType = "accept_risk"
	DecisionMitigateRisk   DecisionType = "mitigate_risk"
	DecisionDelay          DecisionType = "delay"
	DecisionAccelerate     DecisionType = "accelerate"
	DecisionHire           DecisionType = "hire"
	DecisionFire           DecisionType = "fire"
	DecisionAddResource    DecisionType = "add_resource"
	DecisionRemoveResource DecisionType = "remove_resource"
)

// DecisionStatus is the lifecycle state of a decision.
type DecisionStatus string

const (
	DecisionProposed   DecisionStatus = "proposed"
	DecisionApproved   DecisionStatus = "approved"
	DecisionRejected   DecisionStatus = "rejected"
	DecisionSuperseded DecisionStatus = "superseded"
)

// IssueType classifies an operational issue.
type IssueType string

const (
	IssueDependencyBlocked  IssueType = "dependency_blocked"
	IssueResourceConstraint IssueType = "resource_constraint"
	IssueTechnicalBlocker   IssueType = "technical_blocker"
	IssueExternalDependency IssueType = "external_dependency"
	IssueScopeUnclear       IssueType = "scope_unclear"
	IssueOther              IssueType = "other"
)

// IssueStatus is the lifecycle state of an issue.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

// BoundaryType classifies how an accepted risk's acceptance boundary is
// expressed.
type BoundaryType string

const (
	BoundaryDate      BoundaryType = "date"
	BoundaryThreshold BoundaryType = "threshold"
	BoundaryEvent     BoundaryType = "event"
)

// Milestone tracks an ordered set of work items toward a target date.
type Milestone struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	TargetDate time.Time       `json:"target_date"`
	Status     MilestoneStatus `json:"status"`
	// WorkItemIDs is ordered; the forecast iterates it in this order.
	WorkItemIDs []string `json:"work_item_ids"`
}

// WorkItem is a single unit of work with optional progress signals.
type WorkItem struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Status               WorkItemStatus `json:"status"`
	EstimatedDays        float64        `json:"estimated_days,omitempty"`
	ActualDays           *float64       `json:"actual_days,omitempty"`
	RemainingDays        *float64       `json:"remaining_days,omitempty"`
	CompletionPercentage *float64       `json:"completion_percentage,omitempty"`
	MilestoneID          string         `json:"milestone_id,omitempty"`
	ExternalTeamID       string         `json:"external_team_id,omitempty"`
	ExpectedCompletion   *time.Time     `json:"expected_completion_date,omitempty"`
	ConfidenceLevel      *float64       `json:"confidence_level,omitempty"`
	// DependsOn lists upstream work item ids: this item cannot finish until
	// they do.
	DependsOn []string `json:"depends_on,omitempty"`
	OwnerID   string   `json:"owner_id,omitempty"`
}

// Dependency is an explicit finish-to-start edge: FromID cannot finish until
// ToID does.
type Dependency struct {
	ID                  string      `json:"id"`
	FromID              string      `json:"from_id"`
	ToID                string      `json:"to_id"`
	Criticality         Criticality `json:"criticality,omitempty"`
	SlackDays           float64     `json:"slack_days,omitempty"`
	ProbabilityDelay    *float64    `json:"probability_delay,omitempty"`
	ExpectedDelayIfLate float64     `json:"expected_delay_if_late,omitempty"`
	OwnerID             string      `json:"owner_id,omitempty"`
}

// RiskImpact carries the quantified consequence of a risk.
type RiskImpact struct {
	ImpactDays   float64 `json:"impact_days"`
	BlockedItem  string  `json:"blocked_item,omitempty"`
	BlockingItem string  `json:"blocking_item,omitempty"`
	P50DelayDays float64 `json:"p50_delay_days,omitempty"`
	P80DelayDays float64 `json:"p80_delay_days,omitempty"`
}

// Risk is a threat to a milestone, moving through the risk state machine.
type Risk struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        RiskStatus `json:"status"`
	Probability   float64    `json:"probability,omitempty"`
	Impact        RiskImpact `json:"impact"`
	MilestoneID   string     `json:"milestone_id,omitempty"`
	AffectedItems []string   `json:"affected_items,omitempty"`

	// Acceptance metadata (set when the risk is accepted).
	AcceptedAt              *time.Time   `json:"accepted_at,omitempty"`
	AcceptedBy              string       `json:"accepted_by,omitempty"`
	AcceptanceBoundary      BoundaryType `json:"acceptance_boundary,omitempty"`
	BoundaryDate            *time.Time   `json:"boundary_date,omitempty"`
	NextReviewDate          *time.Time   `json:"next_review_date,omitempty"`
	SuppressEscalationUntil *time.Time   `json:"suppress_escalation_until,omitempty"`

	// Mitigation metadata (set when mitigation starts).
	MitigationStartedAt *time.Time `json:"mitigation_started_at,omitempty"`
	MitigationAction    string     `json:"mitigation_action,omitempty"`
	MitigationDueDate   *time.Time `json:"mitigation_due_date,omitempty"`
}

// BoundaryBreached reports whether an accepted risk's date boundary has
// passed as of the given time. Threshold and event boundaries breach only via
// explicit events, never by clock.
func (r Risk) BoundaryBreached(asOf time.Time) bool {
	if r.Status != RiskAccepted {
		return false
	}
	if r.AcceptanceBoundary != BoundaryDate || r.BoundaryDate == nil {
		return false
	}
	return r.BoundaryDate.Before(asOf)
}

// Decision is a recorded portfolio decision.
type Decision struct {
	ID                 string         `json:"id"`
	Type               DecisionType   `json:"type"`
	Status             DecisionStatus `json:"status"`
	Description        string         `json:"description,omitempty"`
	MilestoneID        string         `json:"milestone_id,omitempty"`
	EffortDeltaDays    *float64       `json:"effort_delta_days,omitempty"`
	RiskID             string         `json:"risk_id,omitempty"`
	AcceptanceBoundary BoundaryType   `json:"acceptance_boundary,omitempty"`
	AcceptanceUntil    *time.Time     `json:"acceptance_until,omitempty"`
	MitigationAction   string         `json:"mitigation_action,omitempty"`
	MitigationDueDate  *time.Time     `json:"mitigation_due_date,omitempty"`
	Timestamp          time.Time      `json:"timestamp"`
}

// Issue is an operational problem raised against a dependency, work item or
// risk.
type Issue struct {
	ID                string      `json:"id"`
	Type              IssueType   `json:"type"`
	Status            IssueStatus `json:"status"`
	Priority          string      `json:"priority,omitempty"`
	Title             string      `json:"title,omitempty"`
	DependencyID      string      `json:"dependency_id,omitempty"`
	WorkItemID        string      `json:"work_item_id,omitempty"`
	RiskID            string      `json:"risk_id,omitempty"`
	ImpactDescription string      `json:"impact_description,omitempty"`
	ResolutionNotes   string      `json:"resolution_notes,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	ResolvedAt        *time.Time  `json:"resolved_at,omitempty"`
}

// Actor is a person or team that can own entities and receive follow-ups.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// ExternalTeamHistory records the historical slip behaviour of an external
// team. When absent the delay model falls back to status heuristics.
type ExternalTeamHistory struct {
	TeamID           string  `json:"team_id"`
	AvgSlipDays      float64 `json:"avg_slip_days"`
	SlipProbability  float64 `json:"slip_probability"`
	ReliabilityScore float64 `json:"reliability_score"`
}

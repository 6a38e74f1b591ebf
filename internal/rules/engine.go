package rules

import (
	"fmt"

	"milecast/internal/state"
)

// Rule is a pair of pure functions over the same (event, snapshot) input.
// Rules share no implementation; the engine's only job is deterministic
// iteration.
type Rule interface {
	Name() string
	// Matches reports whether the rule applies to the event.
	Matches(event Event, snap *state.Snapshot) bool
	// Execute produces the rule's commands. A matched rule that decides
	// nothing needs doing returns an empty (or explanation-only) list.
	Execute(event Event, snap *state.Snapshot) ([]Command, error)
}

// RuleInfo is registry metadata surfaced by the engine's rules endpoint.
type RuleInfo struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Status   string `json:"status"` // active | reserved
}

// Engine holds the ordered rule registry. The order is fixed at construction
// and is part of the engine's contract: commands from matching rules are
// concatenated in rule order, then in emission order within a rule.
type Engine struct {
	registry []Rule
}

// NewEngine builds the v1 registry around the given forecaster (the real
// engine or the heuristic stub).
func NewEngine(f Forecaster) *Engine {
	return &Engine{registry: []Rule{
		&dependencyBlockedRule{forecaster: f},
		reservedRule{name: "resource_constraint", matches: matchesIssueType(EventIssueCreated, state.IssueResourceConstraint)},
		reservedRule{name: "external_dependency_slip", matches: matchesEventType(EventDependencyDelayed)},
		&acceptRiskRule{},
		&mitigateRiskRule{},
		reservedRule{name: "scope_change_approved", matches: matchesDecisionType(state.DecisionChangeScope)},
		&boundaryBreachedRule{},
		&workItemUnblockedRule{},
		reservedRule{name: "forecast_requested", matches: matchesEventType(EventForecastRequested)},
		reservedRule{name: "issue_escalation", matches: matchesEventType(EventIssueEscalated)},
		reservedRule{name: "risk_review_due", matches: matchesEventType(EventRiskReviewDue)},
	}}
}

// ProcessEvent runs the event through the registry and returns the complete
// command list. It is pure: identical inputs produce byte-identical output,
// and the snapshot is never written. Either the full list is returned or an
// error; no partial commands.
func (e *Engine) ProcessEvent(event Event, snap *state.Snapshot) ([]Command, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	commands := []Command{}
	for _, rule := range e.registry {
		if !rule.Matches(event, snap) {
			continue
		}
		cmds, err := rule.Execute(event, snap)
		if err != nil {
			return nil, fmt.Errorf("rule %s failed: %w", rule.Name(), err)
		}
		commands = append(commands, cmds...)
	}
	return commands, nil
}

// Rules returns registry metadata in iteration order.
func (e *Engine) Rules() []RuleInfo {
	infos := make([]RuleInfo, 0, len(e.registry))
	for i, r := range e.registry {
		status := "active"
		if _, reserved := r.(reservedRule); reserved {
			status = "reserved"
		}
		infos = append(infos, RuleInfo{Position: i + 1, Name: r.Name(), Status: status})
	}
	return infos
}

// RuleCount returns the number of registered rules.
func (e *Engine) RuleCount() int {
	return len(e.registry)
}

// reservedRule has a real matching predicate but emits no commands yet.
type reservedRule struct {
	name    string
	matches func(Event, *state.Snapshot) bool
}

func (r reservedRule) Name() string { return r.name }

func (r reservedRule) Matches(event Event, snap *state.Snapshot) bool {
	return r.matches(event, snap)
}

func (r reservedRule) Execute(event Event, snap *state.Snapshot) ([]Command, error) {
	return []Command{}, nil
}

func matchesEventType(t EventType) func(Event, *state.Snapshot) bool {
	return func(e Event, _ *state.Snapshot) bool { return e.Type == t }
}

func matchesIssueType(t EventType, issueType state.IssueType) func(Event, *state.Snapshot) bool {
	return func(e Event, snap *state.Snapshot) bool {
		if e.Type != t {
			return false
		}
		iss, ok := snap.Issues[e.Payload.IssueID]
		return ok && iss.Type == issueType
	}
}

func matchesDecisionType(dt state.DecisionType) func(Event, *state.Snapshot) bool {
	return func(e Event, snap *state.Snapshot) bool {
		if e.Type != EventDecisionApproved {
			return false
		}
		d, ok := snap.Decisions[e.Payload.DecisionID]
		return ok && d.Type == dt
	}
}

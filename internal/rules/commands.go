package rules

import (
	"fmt"
	"time"
)

// CommandType enumerates the 15 command types across five families.
type CommandType string

const (
	// Issue family.
	CmdCreateIssue   CommandType = "CREATE_ISSUE"
	CmdUpdateIssue   CommandType = "UPDATE_ISSUE"
	CmdResolveIssue  CommandType = "RESOLVE_ISSUE"
	CmdEscalateIssue CommandType = "ESCALATE_ISSUE"

	// Risk family.
	CmdCreateRisk          CommandType = "CREATE_RISK"
	CmdUpdateRisk          CommandType = "UPDATE_RISK"
	CmdSetRiskStatus       CommandType = "SET_RISK_STATUS"
	CmdLinkRiskToMilestone CommandType = "LINK_RISK_TO_MILESTONE"

	// Decision family.
	CmdLinkDecisionToRisk    CommandType = "LINK_DECISION_TO_RISK"
	CmdMarkDecisionEffective CommandType = "MARK_DECISION_EFFECTIVE"

	// Forecast family.
	CmdUpdateForecast    CommandType = "UPDATE_FORECAST"
	CmdRecomputeForecast CommandType = "RECOMPUTE_FORECAST"

	// Control family.
	CmdSetNextDate     CommandType = "SET_NEXT_DATE"
	CmdAssignOwner     CommandType = "ASSIGN_OWNER"
	CmdEmitExplanation CommandType = "EMIT_EXPLANATION"
)

// Command is one instruction emitted by a rule. Execution happens outside the
// core; executors are expected to be idempotent on CommandID.
type Command struct {
	CommandID string         `json:"command_id"`
	Type      CommandType    `json:"command_type"`
	TargetID  string         `json:"target_object_id"`
	Reason    string         `json:"reason"`
	RuleName  string         `json:"rule_name"`
	Timestamp time.Time      `json:"timestamp"`
	Priority  string         `json:"priority,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// emitter accumulates a rule's commands, assigning each a deterministic id
// derived from event id, rule name and emission ordinal.
type emitter struct {
	event Event
	rule  string
	cmds  []Command
}

func newEmitter(event Event, rule string) *emitter {
	return &emitter{event: event, rule: rule}
}

func (em *emitter) emit(t CommandType, targetID, reason string, payload map[string]any) {
	em.cmds = append(em.cmds, Command{
		CommandID: fmt.Sprintf("%s:%s:%d", em.event.ID, em.rule, len(em.cmds)),
		Type:      t,
		TargetID:  targetID,
		Reason:    reason,
		RuleName:  em.rule,
		Timestamp: em.event.Timestamp,
		Payload:   payload,
	})
}

// explain emits an EMIT_EXPLANATION command so that a matched rule that
// decides nothing needs doing still says so explicitly.
func (em *emitter) explain(targetID, reason string) {
	em.emit(CmdEmitExplanation, targetID, reason, nil)
}

func (em *emitter) commands() []Command {
	return em.cmds
}

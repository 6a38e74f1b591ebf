package rules

import (
	"context"
	"testing"
)

func TestLogExecutorIsIdempotent(t *testing.T) {
	x := NewLogExecutor()
	cmds := []Command{
		{CommandID: "evt_1:rule:0", Type: CmdCreateIssue, TargetID: "i_1", Reason: "r", RuleName: "rule"},
		{CommandID: "evt_1:rule:1", Type: CmdSetNextDate, TargetID: "a_1", Reason: "r", RuleName: "rule"},
	}

	if err := x.Execute(context.Background(), cmds); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	// Replaying the same batch must not error; seen ids are skipped.
	if err := x.Execute(context.Background(), cmds); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if len(x.seen) != 2 {
		t.Errorf("Expected 2 recorded command ids, got %d", len(x.seen))
	}
}

func TestLogExecutorHonoursContext(t *testing.T) {
	x := NewLogExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := x.Execute(ctx, []Command{{CommandID: "evt_1:rule:0"}})
	if err == nil {
		t.Errorf("Expected context error")
	}
	if len(x.seen) != 0 {
		t.Errorf("Expected no commands recorded after cancellation")
	}
}

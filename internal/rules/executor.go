package rules

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Executor hands emitted commands to whatever writes state. Implementations
// must be idempotent on CommandID.
type Executor interface {
	Execute(ctx context.Context, cmds []Command) error
}

// LogExecutor is the placeholder executor: it records which command ids it
// has seen and logs each new command instead of writing anywhere.
type LogExecutor struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewLogExecutor creates an empty logging executor.
func NewLogExecutor() *LogExecutor {
	return &LogExecutor{seen: make(map[string]bool)}
}

// Execute logs every command it has not seen before.
func (x *LogExecutor) Execute(ctx context.Context, cmds []Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, c := range cmds {
		if x.seen[c.CommandID] {
			log.Debug().Str("command_id", c.CommandID).Msg("Skipping already-executed command")
			continue
		}
		x.seen[c.CommandID] = true
		log.Info().
			Str("command_id", c.CommandID).
			Str("type", string(c.Type)).
			Str("target", c.TargetID).
			Str("rule", c.RuleName).
			Str("reason", c.Reason).
			Msg("Executing command")
	}
	return nil
}

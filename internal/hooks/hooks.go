// Package hooks models the host's lifecycle event bus.
//
// Handlers are registered against named events once, at startup, and the
// bus is read-only afterwards. Each dispatch runs its handlers to completion
// on the caller's goroutine.
package hooks

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/HendryAvila/evermem-bridge/internal/config"
	"github.com/HendryAvila/evermem-bridge/internal/memory"
)

// EventName identifies a host lifecycle event.
type EventName string

const (
	EventBeforeAgentStart EventName = "before_agent_start" // a turn is about to start
	EventAgentEnd         EventName = "agent_end"          // an interaction finished
)

// BeforeAgentStart carries the prompt of the turn about to start.
type BeforeAgentStart struct {
	Prompt string `json:"prompt"`
}

// BeforeAgentStartResult lets a handler prepend context to the turn.
type BeforeAgentStartResult struct {
	PrependContext string `json:"prependContext"`
}

// AgentEnd reports a completed interaction.
type AgentEnd struct {
	Success  bool              `json:"success"`
	Messages []json.RawMessage `json:"messages"`
}

// BeforeAgentStartHandler may return nil to leave the turn untouched.
type BeforeAgentStartHandler func(ctx context.Context, ev BeforeAgentStart) *BeforeAgentStartResult

// AgentEndHandler observes completed interactions.
type AgentEndHandler func(ctx context.Context, ev AgentEnd)

// Bus dispatches lifecycle events to registered handlers.
type Bus struct {
	beforeAgentStart []BeforeAgentStartHandler
	agentEnd         []AgentEndHandler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// OnBeforeAgentStart subscribes h to EventBeforeAgentStart.
func (b *Bus) OnBeforeAgentStart(h BeforeAgentStartHandler) {
	b.beforeAgentStart = append(b.beforeAgentStart, h)
}

// OnAgentEnd subscribes h to EventAgentEnd.
func (b *Bus) OnAgentEnd(h AgentEndHandler) {
	b.agentEnd = append(b.agentEnd, h)
}

// Has reports whether any handler is subscribed to name.
func (b *Bus) Has(name EventName) bool {
	switch name {
	case EventBeforeAgentStart:
		return len(b.beforeAgentStart) > 0
	case EventAgentEnd:
		return len(b.agentEnd) > 0
	default:
		return false
	}
}

// BeforeAgentStart dispatches ev in registration order. Contexts from
// several handlers are joined with a blank line; nil means nothing to add.
func (b *Bus) BeforeAgentStart(ctx context.Context, ev BeforeAgentStart) *BeforeAgentStartResult {
	var parts []string
	for _, h := range b.beforeAgentStart {
		if res := h(ctx, ev); res != nil && res.PrependContext != "" {
			parts = append(parts, res.PrependContext)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &BeforeAgentStartResult{PrependContext: strings.Join(parts, "\n\n")}
}

// AgentEnd dispatches ev in registration order.
func (b *Bus) AgentEnd(ctx context.Context, ev AgentEnd) {
	for _, h := range b.agentEnd {
		h(ctx, ev)
	}
}

// Recaller is satisfied by *memory.Recaller.
type Recaller interface {
	Recall(ctx context.Context, prompt string) (string, bool)
}

// Capturer is satisfied by *memory.Capturer.
type Capturer interface {
	Capture(ctx context.Context, in memory.Interaction) int
}

// Register subscribes auto-recall and auto-capture according to the
// configuration's feature flags.
func Register(b *Bus, cfg config.BridgeConfig, r Recaller, c Capturer) {
	if cfg.AutoRecall && r != nil {
		b.OnBeforeAgentStart(func(ctx context.Context, ev BeforeAgentStart) *BeforeAgentStartResult {
			text, ok := r.Recall(ctx, ev.Prompt)
			if !ok {
				return nil
			}
			return &BeforeAgentStartResult{PrependContext: text}
		})
	}
	if cfg.AutoCapture && c != nil {
		b.OnAgentEnd(func(ctx context.Context, ev AgentEnd) {
			c.Capture(ctx, memory.Interaction{Success: ev.Success, Messages: ev.Messages})
		})
	}
}

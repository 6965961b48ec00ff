package memtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/evermem-bridge/internal/hooks"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── RecallTool ─────────────────────────────────────────────────────────────

// RecallTool handles the memory_recall MCP tool. It lets an MCP host drive
// the before_agent_start hook explicitly.
type RecallTool struct {
	bus *hooks.Bus
}

// NewRecallTool creates a RecallTool.
func NewRecallTool(bus *hooks.Bus) *RecallTool {
	return &RecallTool{bus: bus}
}

// Definition returns the MCP tool definition for memory_recall.
func (t *RecallTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_recall",
		mcp.WithDescription(
			"Call at the START of a turn with the user's prompt. Returns a <relevant-memories> block "+
				"to prepend to your context when past conversations look relevant.",
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The user's prompt for the turn about to start"),
		),
	)
}

// Handle processes the memory_recall tool call.
func (t *RecallTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.bus.Has(hooks.EventBeforeAgentStart) {
		return mcp.NewToolResultText("Auto-recall is disabled."), nil
	}

	res := t.bus.BeforeAgentStart(ctx, hooks.BeforeAgentStart{Prompt: req.GetString("prompt", "")})
	if res == nil {
		return mcp.NewToolResultText("No relevant memories to inject."), nil
	}
	return mcp.NewToolResultStructured(res, res.PrependContext), nil
}

// ─── CaptureTool ────────────────────────────────────────────────────────────

// CaptureTool handles the memory_capture MCP tool. It lets an MCP host drive
// the agent_end hook explicitly.
type CaptureTool struct {
	bus *hooks.Bus
}

// NewCaptureTool creates a CaptureTool.
func NewCaptureTool(bus *hooks.Bus) *CaptureTool {
	return &CaptureTool{bus: bus}
}

// Definition returns the MCP tool definition for memory_capture.
func (t *CaptureTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_capture",
		mcp.WithDescription(
			"Call at the END of an interaction with its messages. User messages that state preferences, "+
				"decisions, contact details or explicit 'remember' requests are saved automatically.",
		),
		mcp.WithArray("messages",
			mcp.Required(),
			mcp.Description("Messages of the interaction: objects with 'role' and 'content' (string or text blocks)"),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithBoolean("success",
			mcp.Description("Whether the interaction completed successfully (default: true)"),
		),
	)
}

// Handle processes the memory_capture tool call.
func (t *CaptureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.bus.Has(hooks.EventAgentEnd) {
		return mcp.NewToolResultText("Auto-capture is disabled."), nil
	}

	items, ok := req.GetArguments()["messages"].([]any)
	if !ok {
		return mcp.NewToolResultError("'messages' must be an array"), nil
	}
	messages := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		messages = append(messages, raw)
	}

	t.bus.AgentEnd(ctx, hooks.AgentEnd{
		Success:  boolArg(req, "success", true),
		Messages: messages,
	})
	return mcp.NewToolResultText(fmt.Sprintf("Processed %d messages for auto-capture.", len(messages))), nil
}

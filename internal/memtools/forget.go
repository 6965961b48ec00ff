package memtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
)

// Deleter removes memories. *evermem.Client satisfies it.
type Deleter interface {
	Delete(ctx context.Context, p evermem.DeleteParams) (json.RawMessage, error)
}

// ForgetTool handles the memory_forget MCP tool.
type ForgetTool struct {
	deleter Deleter
}

// NewForgetTool creates a ForgetTool.
func NewForgetTool(deleter Deleter) *ForgetTool {
	return &ForgetTool{deleter: deleter}
}

// Definition returns the MCP tool definition for memory_forget.
func (t *ForgetTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_forget",
		mcp.WithDescription(
			"Delete memories from EverMemOS. Use only when the user explicitly asks to forget something. "+
				"At least one of event_id, user_id or group_id is required.",
		),
		mcp.WithString("event_id",
			mcp.Description("Delete the memories extracted from one event"),
		),
		mcp.WithString("user_id",
			mcp.Description("Delete every memory of a user"),
		),
		mcp.WithString("group_id",
			mcp.Description("Delete every memory of a session/group"),
		),
	)
}

// Handle processes the memory_forget tool call.
func (t *ForgetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := evermem.DeleteParams{
		EventID: req.GetString("event_id", ""),
		UserID:  req.GetString("user_id", ""),
		GroupID: req.GetString("group_id", ""),
	}
	// No implicit default user: an empty filter must never widen a delete.
	if p.EventID == "" && p.UserID == "" && p.GroupID == "" {
		return mcp.NewToolResultError("one of 'event_id', 'user_id' or 'group_id' is required"), nil
	}

	data, err := t.deleter.Delete(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Memory delete failed: %v", err)), nil
	}

	count := gjson.GetBytes(data, "result.count").Int()
	return mcp.NewToolResultStructured(map[string]any{"count": count},
		fmt.Sprintf("Memories deleted: %d", count)), nil
}

package memtools

import (
	"context"
	"fmt"
	"time"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/HendryAvila/evermem-bridge/internal/memory"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// now and newID are package-level vars to allow test injection.
var (
	now   = time.Now
	newID = uuid.NewString
)

// StoreTool handles the memory_store MCP tool.
type StoreTool struct {
	storer memory.Storer
	userID string
}

// NewStoreTool creates a StoreTool. userID is the sender when a call names none.
func NewStoreTool(storer memory.Storer, userID string) *StoreTool {
	return &StoreTool{storer: storer, userID: userID}
}

// Definition returns the MCP tool definition for memory_store.
func (t *StoreTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_store",
		mcp.WithDescription(
			"Save important information to long-term memory via EverMemOS. "+
				"Use for facts, preferences, decisions worth remembering.",
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Text to remember"),
		),
		mcp.WithString("sender",
			mcp.Description("Who said this (default: user)"),
		),
		mcp.WithString("role",
			mcp.Description("Author role (default: user)"),
			mcp.Enum("user", "assistant"),
		),
		mcp.WithString("group_id",
			mcp.Description("Session/group identifier"),
		),
	)
}

// Handle processes the memory_store tool call.
func (t *StoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	role, err := enumArg(req, "role", "user", "user", "assistant")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sender := req.GetString("sender", "")

	data, err := t.storer.Store(ctx, evermem.StoreParams{
		MessageID:  "oc_" + newID(),
		CreateTime: now().UTC().Format(memory.CreateTimeLayout),
		Sender:     orDefault(sender, t.userID),
		SenderName: orDefault(sender, memory.DefaultSenderName),
		Content:    content,
		Role:       role,
		GroupID:    req.GetString("group_id", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Memory store failed: %v", err)), nil
	}

	ack := evermem.ParseStoreAck(data)
	return mcp.NewToolResultStructured(ack,
		fmt.Sprintf("Memory stored (status: %s, extracted: %d)", ack.Status, ack.Count)), nil
}

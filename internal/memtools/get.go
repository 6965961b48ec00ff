package memtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/HendryAvila/evermem-bridge/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// Fetcher lists memories of one type. *evermem.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, p evermem.FetchParams) (json.RawMessage, error)
}

// GetTool handles the memory_get MCP tool.
type GetTool struct {
	fetcher Fetcher
	userID  string
}

// NewGetTool creates a GetTool.
func NewGetTool(fetcher Fetcher, userID string) *GetTool {
	return &GetTool{fetcher: fetcher, userID: userID}
}

// Definition returns the MCP tool definition for memory_get.
func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_get",
		mcp.WithDescription("Fetch memories by type (episodic_memory, profile, foresight, event_log)."),
		mcp.WithString("memory_type",
			mcp.Description("Memory type (default: episodic_memory)"),
			mcp.Enum(evermem.MemoryTypes...),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10)"),
		),
		mcp.WithString("user_id",
			mcp.Description("User ID"),
		),
	)
}

// Handle processes the memory_get tool call.
func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memType, err := enumArg(req, "memory_type", evermem.TypeEpisodic, evermem.MemoryTypes...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := t.fetcher.Fetch(ctx, evermem.FetchParams{
		MemoryType: memType,
		Limit:      intArg(req, "limit", 10),
		UserID:     orDefault(req.GetString("user_id", ""), t.userID),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Memory fetch failed: %v", err)), nil
	}

	return mcp.NewToolResultStructured(map[string]any{
		"count":       memory.TotalCount(data),
		"memory_type": memType,
	}, memory.FormatReport(data)), nil
}

package memtools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/HendryAvila/evermem-bridge/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

var searchMethods = []string{
	string(evermem.MethodKeyword),
	string(evermem.MethodVector),
	string(evermem.MethodHybrid),
}

// SearchTool handles the memory_search MCP tool.
type SearchTool struct {
	searcher memory.Searcher
	userID   string
}

// NewSearchTool creates a SearchTool. userID is used when a call names none.
func NewSearchTool(searcher memory.Searcher, userID string) *SearchTool {
	return &SearchTool{searcher: searcher, userID: userID}
}

// Definition returns the MCP tool definition for memory_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription(
			"Search through memories stored in EverMemOS. Use when you need context about past conversations, "+
				"user preferences, decisions, or previously discussed topics.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithString("method",
			mcp.Description("Retrieval method (default: keyword)"),
			mcp.Enum(searchMethods...),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Max results (default: 5)"),
		),
		mcp.WithString("user_id",
			mcp.Description("User ID to search for"),
		),
	)
}

// Handle processes the memory_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	method, err := enumArg(req, "method", string(evermem.MethodKeyword), searchMethods...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := t.searcher.Search(ctx, evermem.SearchParams{
		Query:          query,
		RetrieveMethod: evermem.RetrieveMethod(method),
		TopK:           intArg(req, "top_k", 5),
		UserID:         orDefault(req.GetString("user_id", ""), t.userID),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Memory search failed: %v", err)), nil
	}

	return mcp.NewToolResultStructured(map[string]any{
		"count":  memory.TotalCount(data),
		"method": method,
	}, memory.FormatReport(data)), nil
}

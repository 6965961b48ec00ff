// Package memtools provides MCP tool handlers for the EverMemOS bridge.
//
// Each tool handler follows the same pattern:
// - A struct with its dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Transport failures never escape as Go errors: they come back as an
// error result carrying a human-readable message.
package memtools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// enumArg extracts a string argument restricted to allowed values. An empty
// or missing argument yields defaultVal.
func enumArg(req mcp.CallToolRequest, key, defaultVal string, allowed ...string) (string, error) {
	v := req.GetString(key, "")
	if v == "" {
		return defaultVal, nil
	}
	if !slices.Contains(allowed, v) {
		return "", fmt.Errorf("'%s' must be one of: %s", key, strings.Join(allowed, ", "))
	}
	return v, nil
}

// orDefault returns v, or fallback when v is empty.
func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Package resources implements MCP resource handlers for the bridge.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (evermem://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/evermem-bridge/internal/config"
	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/HendryAvila/evermem-bridge/internal/journal"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatusURI addresses the bridge status resource.
const StatusURI = "evermem://status"

// HealthChecker probes the memory store. *evermem.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) evermem.Health
}

// JournalStats reports capture journal counts. *journal.Store satisfies it.
type JournalStats interface {
	Stats(ctx context.Context, userID string) (*journal.Stats, error)
}

// Status is the JSON document served at StatusURI.
type Status struct {
	APIURL      string         `json:"api_url"`
	UserID      string         `json:"user_id"`
	AutoRecall  bool           `json:"auto_recall"`
	AutoCapture bool           `json:"auto_capture"`
	Health      evermem.Health `json:"health"`
	Journal     *journal.Stats `json:"journal,omitempty"`
}

// Handler manages bridge resource endpoints.
type Handler struct {
	cfg     config.BridgeConfig
	health  HealthChecker
	journal JournalStats
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(cfg config.BridgeConfig, health HealthChecker) *Handler {
	return &Handler{cfg: cfg, health: health}
}

// SetJournal adds capture journal counts to the status document.
func (h *Handler) SetJournal(j JournalStats) {
	h.journal = j
}

// StatusResource returns the MCP resource definition for bridge status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		StatusURI,
		"EverMemOS Bridge Status",
		mcp.WithResourceDescription("Bridge configuration, live EverMemOS health and capture journal counts"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus probes the store and returns the status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := Status{
		APIURL:      h.cfg.APIURL,
		UserID:      h.cfg.DefaultUserID,
		AutoRecall:  h.cfg.AutoRecall,
		AutoCapture: h.cfg.AutoCapture,
		Health:      h.health.Health(ctx),
	}
	if h.journal != nil {
		stats, err := h.journal.Stats(ctx, h.cfg.DefaultUserID)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
		status.Journal = stats
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}

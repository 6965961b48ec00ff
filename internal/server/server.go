// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, hooks, prompts and resources that depend on
// narrow interfaces. No business logic lives here, only wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/HendryAvila/evermem-bridge/internal/config"
	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/HendryAvila/evermem-bridge/internal/hooks"
	"github.com/HendryAvila/evermem-bridge/internal/journal"
	"github.com/HendryAvila/evermem-bridge/internal/memory"
	"github.com/HendryAvila/evermem-bridge/internal/memtools"
	"github.com/HendryAvila/evermem-bridge/internal/prompts"
	"github.com/HendryAvila/evermem-bridge/internal/resources"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Bridge is one registration of the memory bridge: the MCP server, the
// lifecycle hook bus and the resources they share.
type Bridge struct {
	MCP *server.MCPServer
	Bus *hooks.Bus

	cfg     config.BridgeConfig
	client  *evermem.Client
	journal *journal.Store
	logger  *zap.Logger
}

// New creates the bridge with all tools, hooks, prompts and resources
// registered. This is the single place where all dependencies are resolved.
//
// The capture journal is optional: if it fails to open, capture still
// works without an audit trail and a warning is logged.
func New(cfg config.BridgeConfig, logger *zap.Logger, opts ...evermem.Option) (*Bridge, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateAPIURL(cfg.APIURL); err != nil {
		return nil, err
	}

	b := &Bridge{
		cfg:    cfg,
		client: evermem.New(cfg.APIURL, opts...),
		logger: logger,
	}

	// --- Optional capture journal ---

	if cfg.JournalPath != "" {
		j, err := journal.New(cfg.JournalPath)
		if err != nil {
			logger.Warn("capture journal disabled", zap.String("path", cfg.JournalPath), zap.Error(err))
		} else {
			b.journal = j
		}
	}

	// --- Lifecycle hooks ---

	recaller := memory.NewRecaller(b.client, cfg.DefaultUserID, logger)
	capturer := memory.NewCapturer(b.client, cfg.DefaultUserID, logger)
	if b.journal != nil {
		capturer.SetJournal(b.journal)
	}

	b.Bus = hooks.NewBus()
	hooks.Register(b.Bus, cfg, recaller, capturer)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"evermem-bridge",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register memory tools ---

	searchTool := memtools.NewSearchTool(b.client, cfg.DefaultUserID)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	storeTool := memtools.NewStoreTool(b.client, cfg.DefaultUserID)
	s.AddTool(storeTool.Definition(), storeTool.Handle)

	getTool := memtools.NewGetTool(b.client, cfg.DefaultUserID)
	s.AddTool(getTool.Definition(), getTool.Handle)

	forgetTool := memtools.NewForgetTool(b.client)
	s.AddTool(forgetTool.Definition(), forgetTool.Handle)

	// --- Register lifecycle tools ---
	//
	// These let an MCP host that has no plugin hooks drive auto-recall and
	// auto-capture explicitly. They answer "disabled" when the matching
	// feature flag is off.

	recallTool := memtools.NewRecallTool(b.Bus)
	s.AddTool(recallTool.Definition(), recallTool.Handle)

	captureTool := memtools.NewCaptureTool(b.Bus)
	s.AddTool(captureTool.Definition(), captureTool.Handle)

	// --- Register prompts ---

	rememberPrompt := prompts.NewRememberPrompt()
	s.AddPrompt(rememberPrompt.Definition(), rememberPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(cfg, b.client)
	if b.journal != nil {
		resourceHandler.SetJournal(b.journal)
	}
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	b.MCP = s

	logger.Info("registered",
		zap.String("api", cfg.APIURL),
		zap.String("user", cfg.DefaultUserID),
		zap.Bool("auto_recall", cfg.AutoRecall),
		zap.Bool("auto_capture", cfg.AutoCapture),
		zap.Bool("journal", b.journal != nil),
	)
	return b, nil
}

// ErrInvalidAPIURL is returned by New when the API URL is not absolute.
var ErrInvalidAPIURL = errors.New("invalid EverMemOS API URL")

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAPIURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w %q", ErrInvalidAPIURL, raw)
	}
	return nil
}

// Client returns the store transport the bridge talks through.
func (b *Bridge) Client() *evermem.Client {
	return b.client
}

// Journal returns the capture journal, or nil when it is disabled.
func (b *Bridge) Journal() *journal.Store {
	return b.journal
}

// Start probes EverMemOS once and logs the outcome. An unreachable store
// is not fatal: every operation degrades on its own.
func (b *Bridge) Start(ctx context.Context) evermem.Health {
	h := b.client.Health(ctx)
	if h.OK {
		b.logger.Info("connected to EverMemOS", zap.String("status", h.Status))
	} else {
		b.logger.Warn("EverMemOS unreachable", zap.String("error", h.Error))
	}
	return h
}

// Close releases the journal and logs shutdown. It is safe to call more
// than once.
func (b *Bridge) Close() {
	if b.journal != nil {
		if err := b.journal.Close(); err != nil {
			b.logger.Warn("capture journal close", zap.Error(err))
		}
		b.journal = nil
	}
	b.logger.Info("stopped")
}

// serverInstructions returns the system instructions that tell the AI
// how to use the memory bridge.
func serverInstructions() string {
	return `You have access to long-term memory backed by EverMemOS.

## Tools

- memory_search: search past conversations, preferences and decisions.
  method is keyword (default), vector or hybrid; top_k defaults to 5.
- memory_store: save one fact, preference or decision worth remembering.
  Write it as a standalone statement.
- memory_get: list memories of one type: episodic_memory (default),
  profile, foresight or event_log.
- memory_forget: delete memories by event, user or group. Only when the
  user explicitly asks you to forget something.

## Lifecycle

If your host does not inject memories automatically:

1. At the START of every turn, call memory_recall with the user's prompt.
   If it returns a <relevant-memories> block, treat it as background
   context from earlier conversations.
2. At the END of an interaction, call memory_capture with its messages.
   Qualifying user statements (explicit "remember" requests, preferences,
   important facts, contact details) are saved automatically.

Never store the <relevant-memories> block itself.`
}

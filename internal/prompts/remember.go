// Package prompts implements MCP prompt handlers for the bridge.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// RememberPrompt handles the emem-remember MCP prompt.
// It asks the AI to save a fact to long-term memory.
type RememberPrompt struct{}

// NewRememberPrompt creates a RememberPrompt.
func NewRememberPrompt() *RememberPrompt {
	return &RememberPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RememberPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("emem-remember",
		mcp.WithPromptDescription(
			"Save something to long-term memory in EverMemOS. "+
				"Without a fact, the AI picks the most durable fact from the conversation.",
		),
		mcp.WithArgument("fact",
			mcp.ArgumentDescription("The fact, preference or decision to remember"),
		),
	)
}

// Handle processes the emem-remember prompt request.
func (p *RememberPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	fact := ""
	if args := req.Params.Arguments; args != nil {
		fact = strings.TrimSpace(args["fact"])
	}

	var text string
	if fact != "" {
		text = fmt.Sprintf(
			"Please remember this: %q\n\n"+
				"Call `memory_store` with it as `content`. Rephrase it as a standalone statement "+
				"if it depends on the conversation to make sense, then confirm what was stored.",
			fact,
		)
	} else {
		text = "Look back over our conversation and pick the most durable fact about me: " +
			"a preference, a decision, or contact details.\n\n" +
			"Call `memory_store` with it as a standalone statement in `content`, " +
			"then tell me what you stored."
	}

	return &mcp.GetPromptResult{
		Description: "Remember a fact",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

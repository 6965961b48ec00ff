package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the emem-status MCP prompt.
// It instructs the AI to report on the memory store and what it holds.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("emem-status",
		mcp.WithPromptDescription(
			"Check the EverMemOS connection and summarize what is remembered about you.",
		),
	)
}

// Handle processes the emem-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "EverMemOS Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please read the `evermem://status` resource to check the memory bridge.\n\n" +
						"Then:\n" +
						"1. Tell me whether EverMemOS is reachable\n" +
						"2. Tell me whether auto-recall and auto-capture are on\n" +
						"3. Call `memory_get` with memory_type=profile and summarize what you know about me\n" +
						"4. If the store is unreachable, suggest running `evermem-bridge health`",
				),
			},
		},
	}, nil
}

package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Messages[0].Content)
	}
	return tc.Text
}

func TestRememberPrompt_Definition(t *testing.T) {
	def := NewRememberPrompt().Definition()
	if def.Name != "emem-remember" {
		t.Errorf("name = %q, want emem-remember", def.Name)
	}
	if len(def.Arguments) != 1 || def.Arguments[0].Name != "fact" {
		t.Errorf("arguments = %+v", def.Arguments)
	}
}

func TestRememberPrompt_WithFact(t *testing.T) {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"fact": "  I take my coffee black  "}

	res, err := NewRememberPrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := promptText(t, res)
	if !strings.Contains(text, `"I take my coffee black"`) {
		t.Errorf("fact not quoted in prompt: %q", text)
	}
	if !strings.Contains(text, "memory_store") {
		t.Error("prompt should point at memory_store")
	}
}

func TestRememberPrompt_WithoutFact(t *testing.T) {
	res, err := NewRememberPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := promptText(t, res)
	if !strings.Contains(text, "most durable fact") {
		t.Errorf("text = %q", text)
	}
}

func TestStatusPrompt(t *testing.T) {
	p := NewStatusPrompt()
	if p.Definition().Name != "emem-status" {
		t.Errorf("name = %q", p.Definition().Name)
	}
	res, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(promptText(t, res), "evermem://status") {
		t.Error("status prompt should read the status resource")
	}
}

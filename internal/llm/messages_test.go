package llm

import (
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestPrepareMessagesMergesSystemForSystemlessFamily(t *testing.T) {
	in := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "Be precise."},
		{Role: openai.ChatMessageRoleUser, Content: "Draft an affidavit."},
	}
	out := PrepareMessages(FamilyOpenAIReasoning, in, false)
	for _, m := range out {
		if m.Role == openai.ChatMessageRoleSystem {
			t.Fatalf("expected no system message for system-less family, got %+v", out)
		}
	}
	if !strings.Contains(out[0].Content, "Australian English") {
		t.Fatalf("expected Australian English directive merged into user message: %q", out[0].Content)
	}
	if !strings.Contains(out[0].Content, "Be precise.") {
		t.Fatalf("expected original system content preserved: %q", out[0].Content)
	}
}

func TestPrepareMessagesKeepsSystemForSupportingFamily(t *testing.T) {
	in := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "Be precise."},
		{Role: openai.ChatMessageRoleUser, Content: "Draft an affidavit."},
	}
	out := PrepareMessages(FamilyClaude4, in, false)
	if out[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system message preserved, got %+v", out[0])
	}
	if !strings.Contains(out[0].Content, "Australian English") {
		t.Fatalf("expected directive prepended to system message: %q", out[0].Content)
	}
}

func TestPrepareMessagesDateInjectionWithoutTools(t *testing.T) {
	in := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hello"}}
	out := PrepareMessages(FamilyClaude4, in, false)
	if !strings.Contains(out[0].Content, "Today's date is") {
		t.Fatalf("expected direct date injection, got %q", out[0].Content)
	}
}

func TestPrepareMessagesDateInjectionWithTools(t *testing.T) {
	in := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hello"}}
	out := PrepareMessages(FamilyClaude4, in, true)
	if !strings.Contains(out[0].Content, "now") {
		t.Fatalf("expected now-tool instruction, got %q", out[0].Content)
	}
}

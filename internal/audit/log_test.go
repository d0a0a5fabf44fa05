package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveLogJSONDropsCombinedContent(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, "json")
	path, err := l.SaveLog("research_combine", LogPayload{
		"combined_content": strings.Repeat("x", 1000),
		"total_tokens":      10,
		"total_words":       5,
		"file_count":        2,
	})
	if err != nil {
		t.Fatalf("SaveLog: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["combined_content"]; ok {
		t.Fatalf("expected combined_content to be dropped, got: %v", m)
	}
	if m["total_tokens"].(float64) != 10 {
		t.Fatalf("expected total_tokens preserved, got %v", m["total_tokens"])
	}
}

func TestSaveLogMarkdownLLMConversation(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, "markdown")
	path, err := l.SaveLog("llm_claude-sonnet", LogPayload{
		"model":    "anthropic/claude-sonnet-4.5",
		"messages": "hello",
		"response": "world",
	})
	if err != nil {
		t.Fatalf("SaveLog: %v", err)
	}
	if filepath.Ext(path) != ".md" {
		t.Fatalf("expected .md file, got %s", path)
	}
	b, _ := os.ReadFile(path)
	body := string(b)
	if !strings.Contains(body, "## Messages") || !strings.Contains(body, "## Response") {
		t.Fatalf("expected LLM conversation sections, got: %s", body)
	}
}

func TestSaveLogNoOverlapBySequence(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, "json")
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := l.SaveLog("llm_call", LogPayload{"i": i})
		if err != nil {
			t.Fatalf("SaveLog: %v", err)
		}
		if seen[path] {
			t.Fatalf("filename collision: %s", path)
		}
		seen[path] = true
	}
}

func TestSaveCommandOutputWithCritique(t *testing.T) {
	dir := t.TempDir()
	w := NewOutputWriter(dir, false)
	path, err := w.SaveCommandOutput("draft", "body text", "my-matter", map[string]string{"court": "FCA"},
		[]CritiqueSection{{Heading: "Issue 1", Body: "looks fine"}})
	if err != nil {
		t.Fatalf("SaveCommandOutput: %v", err)
	}
	b, _ := os.ReadFile(path)
	body := string(b)
	if !strings.Contains(body, "AI CRITIQUE & VERIFICATION") {
		t.Fatalf("expected critique section, got: %s", body)
	}
	if !strings.Contains(body, "court: FCA") {
		t.Fatalf("expected metadata line, got: %s", body)
	}
}

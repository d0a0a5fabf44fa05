package truncation

import (
	"fmt"
	"strings"
	"testing"
)

// TestDropLargestOrder exercises spec.md §8's literal scenario 3: small/
// big/mid documents, two token-limit failures, "big" dropped first, then
// "mid", surviving only "small".
func TestDropLargestOrder(t *testing.T) {
	docs := []Document{
		{Name: "small", Content: strings.Repeat("a", 100)},
		{Name: "big", Content: strings.Repeat("a", 10000)},
		{Name: "mid", Content: strings.Repeat("a", 2000)},
	}
	m := NewManager(docs)

	var loggedDrops []string
	logFn := func(dropped string, remaining []string) { loggedDrops = append(loggedDrops, dropped) }

	attempt := 0
	executeFn := func(prompt, system string) (any, error) {
		attempt++
		if attempt <= 2 {
			return nil, fmt.Errorf("exceeded maximum context length")
		}
		return "ok", nil
	}
	buildFn := func(docs []Document) (string, string) { return "", "" }

	result, err := m.ExecuteWithTruncation(buildFn, executeFn, logFn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected ok, got %v", result)
	}
	if len(m.Documents) != 1 || m.Documents[0].Name != "small" {
		t.Fatalf("expected only 'small' to survive, got %+v", m.Documents)
	}
	if len(loggedDrops) != 2 || loggedDrops[0] != "big" || loggedDrops[1] != "mid" {
		t.Fatalf("expected drop order [big mid], got %v", loggedDrops)
	}
}

// TestNonTokenLimitErrorPropagates verifies the Manager never
// retries on a non-token-limit error, per spec.md §8's invariant.
func TestNonTokenLimitErrorPropagates(t *testing.T) {
	m := NewManager([]Document{{Name: "only", Content: "x"}})
	calls := 0
	executeFn := func(prompt, system string) (any, error) {
		calls++
		return nil, fmt.Errorf("connection refused")
	}
	buildFn := func(docs []Document) (string, string) { return "", "" }

	_, err := m.ExecuteWithTruncation(buildFn, executeFn, nil)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected propagated connection error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call (no retry), got %d", calls)
	}
	if len(m.Documents) != 1 {
		t.Fatalf("expected no documents dropped, got %+v", m.Documents)
	}
}

// TestEmptyDocumentSetFails verifies the final-exception message spec.md
// §4.4 specifies when every document has been dropped.
func TestEmptyDocumentSetFails(t *testing.T) {
	m := NewManager([]Document{{Name: "a", Content: "xx"}, {Name: "b", Content: "x"}})
	executeFn := func(prompt, system string) (any, error) {
		return nil, fmt.Errorf("token limit exceeded")
	}
	buildFn := func(docs []Document) (string, string) { return "", "" }

	_, err := m.ExecuteWithTruncation(buildFn, executeFn, nil)
	if err == nil || !strings.Contains(err.Error(), "Failed to get LLM response after dropping all documents") {
		t.Fatalf("expected drop-all error, got %v", err)
	}
}

func TestEstimatedTokens(t *testing.T) {
	m := NewManager([]Document{{Name: "a", Content: strings.Repeat("x", 400)}, {Name: "b", Content: strings.Repeat("y", 4)}})
	got := m.EstimatedTokens()
	if got != 100+1 {
		t.Fatalf("expected 101 estimated tokens (400/4 + ceil(4/4)), got %d", got)
	}
	m.dropLargest()
	if got := m.EstimatedTokens(); got != 1 {
		t.Fatalf("expected 1 estimated token after dropping the largest document, got %d", got)
	}
}

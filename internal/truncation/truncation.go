// Package truncation implements the drop-largest token-budget retry of
// spec.md §4.4: on a token-limit error, drop the single largest document
// from the prompt and re-issue the call, rather than the teacher's
// proportional-scaling strategy (internal/app/truncation.go), which this
// package's manager is an alternative to, not a wrapper around.
package truncation

import (
	"fmt"

	"github.com/hyperifyio/litassist-core/internal/apierr"
	"github.com/hyperifyio/litassist-core/internal/budget"
)

// Document is the (name, content) pair spec.md §3 describes.
type Document struct {
	Name    string
	Content string
}

// LogFunc records a drop decision: the dropped document's name and the
// names of the documents that remain, per spec.md §4.4.
type LogFunc func(dropped string, remaining []string)

// BuildPromptFunc assembles the next call's prompt (and any other
// call-specific state) from the current surviving document set.
type BuildPromptFunc func(docs []Document) (prompt string, systemContent string)

// ExecuteFunc issues the call; a token-limit error (per
// apierr.IsTokenLimitError) triggers another drop-and-retry, any other
// error propagates unchanged.
type ExecuteFunc func(prompt string, systemContent string) (result any, err error)

// Manager holds an ordered list of surviving Documents plus the list of
// documents dropped so far, for the lifetime of a single retry loop, per
// spec.md §3's Document ownership note.
type Manager struct {
	Documents []Document
	Dropped   []Document

	// MaxAttempts bounds the number of drop-and-retry cycles. Zero means
	// unbounded (in practice limited by len(Documents)), per spec.md §4.4.
	MaxAttempts int

	attempts int
}

// NewManager constructs a Manager over the given ordered documents.
func NewManager(documents []Document) *Manager {
	docs := make([]Document, len(documents))
	copy(docs, documents)
	return &Manager{Documents: docs}
}

// ExecuteWithTruncation runs buildPromptFn/executeFn against the surviving
// document set, dropping the largest document and retrying whenever
// executeFn fails with a token-limit error, per spec.md §4.4's algorithm.
// Any non-token-limit error propagates unchanged. If a token-limit error
// arrives when no documents are left to drop, it returns the fixed "Failed
// to get LLM response after dropping all documents" error.
func (m *Manager) ExecuteWithTruncation(buildPromptFn BuildPromptFunc, executeFn ExecuteFunc, logFn LogFunc) (any, error) {
	for {
		prompt, system := buildPromptFn(m.Documents)
		result, err := executeFn(prompt, system)
		if err == nil {
			return result, nil
		}
		if !apierr.IsTokenLimitError(err) {
			return nil, err
		}
		if len(m.Documents) == 0 {
			return nil, fmt.Errorf("Failed to get LLM response after dropping all documents")
		}
		if m.MaxAttempts > 0 && m.attempts >= m.MaxAttempts {
			return nil, err
		}
		dropped := m.dropLargest()
		m.attempts++
		if logFn != nil {
			logFn(dropped.Name, m.remainingNames())
		}
	}
}

// dropLargest removes and returns the document with the greatest
// len(Content), breaking ties by first occurrence, per spec.md §5's
// "argmax by content length; ties resolved by first-occurrence" ordering
// guarantee.
func (m *Manager) dropLargest() Document {
	largestIdx := 0
	for i, d := range m.Documents {
		if len(d.Content) > len(m.Documents[largestIdx].Content) {
			largestIdx = i
		}
	}
	dropped := m.Documents[largestIdx]
	m.Documents = append(m.Documents[:largestIdx:largestIdx], m.Documents[largestIdx+1:]...)
	m.Dropped = append(m.Dropped, dropped)
	return dropped
}

// EstimatedTokens returns a rough token-count estimate of the currently
// surviving documents (budget.EstimateTokensFromChars per document,
// summed), for audit entries that want to report how much budget a drop
// decision freed up without re-tokenizing against a real model.
func (m *Manager) EstimatedTokens() int {
	total := 0
	for _, d := range m.Documents {
		total += budget.EstimateTokensFromChars(len(d.Content))
	}
	return total
}

func (m *Manager) remainingNames() []string {
	names := make([]string, 0, len(m.Documents))
	for _, d := range m.Documents {
		names = append(names, d.Name)
	}
	return names
}

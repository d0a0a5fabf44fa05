package verifychain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/citation"
	"github.com/hyperifyio/litassist-core/internal/ratelimit"
)

type fakeCSE struct{}

func (fakeCSE) Search(_ context.Context, _, _ string, _ int) ([]citation.SearchResult, error) {
	return nil, nil
}

type fakeURLChecker struct{ status int }

func (f fakeURLChecker) CheckURL(_ context.Context, _ string) (int, error) { return f.status, nil }

func newTestVerifier() *citation.Verifier {
	return citation.NewVerifier(citation.NewCache(), fakeCSE{}, fakeURLChecker{status: 404}, ratelimit.NewAustLIIPacer(0, 0), nil, "legal", "gov", "austlii")
}

// TestRunGatesNoCitationsPasses verifies a document with no citations at
// all clears the pattern and database gates and, for a high-risk command,
// passes the LLM-verification stage.
func TestRunGatesNoCitationsPasses(t *testing.T) {
	chain := &Chain{VerifyLLM: &fakeCaller{response: "## Issues Found\nNo issues found"}}
	content := "This document makes no citation claims whatsoever."
	result, err := chain.RunGates(context.Background(), "extractfacts", content, newTestVerifier(), false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stage != "llm" || !result.Passed {
		t.Fatalf("expected llm stage to pass, got %+v", result)
	}
}

// TestRunGatesDatabaseTerminalForStrict verifies a strict command
// (strategy) stops at the database gate when a citation cannot be
// verified online.
func TestRunGatesDatabaseTerminalForStrict(t *testing.T) {
	chain := &Chain{}
	content := "See [2022] ACTSC 272 for the relevant authority."
	result, err := chain.RunGates(context.Background(), "strategy", content, newTestVerifier(), false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stage != "database" {
		t.Fatalf("expected database gate to terminate, got stage %q", result.Stage)
	}
	if len(result.DatabaseIssues) != 1 {
		t.Fatalf("expected 1 unverified citation, got %v", result.DatabaseIssues)
	}
}

// TestRunGatesLenientCommandSkipsLLMStage verifies a non-high-risk command
// (lookup) passes through without requiring VerifyLLM to be configured.
func TestRunGatesLenientCommandSkipsLLMStage(t *testing.T) {
	chain := &Chain{}
	content := "See [2022] ACTSC 272 for the relevant authority."
	result, err := chain.RunGates(context.Background(), "lookup", content, newTestVerifier(), false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stage != "passed" {
		t.Fatalf("expected passed stage for lenient command, got %q", result.Stage)
	}
}

// TestRunGatesOfflineValidationGatesPatternStage verifies offlineValidation
// controls whether the Patterns stage runs at all: with it false, no
// citation_validation record is written even when the logger is set; with it
// true, ValidatePatterns runs and a well-formed citation on a high-risk
// command does not stop at the patterns stage.
func TestRunGatesOfflineValidationGatesPatternStage(t *testing.T) {
	content := "See [2021] ACTSC 1 for background."

	t.Run("disabled", func(t *testing.T) {
		dir := t.TempDir()
		logger := audit.NewLogger(dir, "json")
		chain := &Chain{VerifyLLM: &fakeCaller{response: "## Issues Found\nNo issues found"}}
		result, err := chain.RunGates(context.Background(), "extractfacts", content, newTestVerifier(), false, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stage == "patterns" {
			t.Fatalf("expected patterns stage to be skipped, got %+v", result)
		}
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".json" && len(e.Name()) >= len("citation_validation") && e.Name()[:len("citation_validation")] == "citation_validation" {
				t.Fatalf("did not expect a citation_validation log when offlineValidation is false, found %s", e.Name())
			}
		}
	})

	// The fixed extraction patterns in internal/citation/extract.go require
	// their year/court/number capture groups, so Extract never itself
	// produces a PatternIssue; ValidatePatterns' detection logic is covered
	// directly in internal/citation/patterns_test.go. Here we only confirm
	// enabling offlineValidation does not introduce a false positive for a
	// well-formed citation on a high-risk command.
	t.Run("enabled", func(t *testing.T) {
		dir := t.TempDir()
		logger := audit.NewLogger(dir, "json")
		chain := &Chain{VerifyLLM: &fakeCaller{response: "## Issues Found\nNo issues found"}}
		result, err := chain.RunGates(context.Background(), "extractfacts", content, newTestVerifier(), true, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stage == "patterns" {
			t.Fatalf("expected well-formed citation to pass the patterns gate, got %+v", result)
		}
	})
}

// TestRunGatesHighRiskRequiresVerifyLLM verifies that a high-risk command
// with all citations verified still requires VerifyLLM to be configured
// for its mandatory LLM-verification stage.
func TestRunGatesHighRiskRequiresVerifyLLM(t *testing.T) {
	chain := &Chain{}
	content := "No citations here at all."
	_, err := chain.RunGates(context.Background(), "draft", content, newTestVerifier(), false, nil)
	if err == nil {
		t.Fatalf("expected error when VerifyLLM is not configured for a high-risk command")
	}
}

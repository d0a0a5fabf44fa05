package verifychain

import (
	"strings"
	"testing"
)

func TestExtractIssuesNoIssues(t *testing.T) {
	response := "## Issues Found\nNo issues found\n"
	if issues := ExtractIssues(response); issues != nil {
		t.Fatalf("expected nil issues, got %v", issues)
	}
}

func TestExtractIssuesNumberedList(t *testing.T) {
	response := "## Issues Found\n1. The citation is fabricated.\n2. The date is invalid.\n\n## Verified and Corrected Document\nCorrected text here."
	issues := ExtractIssues(response)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	if issues[0] != "The citation is fabricated." {
		t.Fatalf("unexpected first issue: %q", issues[0])
	}
	corrected := ExtractCorrectedDocument(response)
	if corrected != "Corrected text here." {
		t.Fatalf("unexpected corrected document: %q", corrected)
	}
}

func TestExtractCorrectedDocumentAbsent(t *testing.T) {
	response := "## Issues Found\nNo issues found"
	if got := ExtractCorrectedDocument(response); got != "" {
		t.Fatalf("expected empty corrected document, got %q", got)
	}
}

func TestBuildSoundnessPromptIncludesMarkers(t *testing.T) {
	prompt := buildSoundnessPrompt("content", "citation context", "reasoning context")
	if !strings.Contains(prompt, "=== PRIOR VERIFICATION: CITATIONS ===") {
		t.Fatalf("expected citation marker in prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "=== PRIOR VERIFICATION: REASONING ===") {
		t.Fatalf("expected reasoning marker in prompt: %q", prompt)
	}
}

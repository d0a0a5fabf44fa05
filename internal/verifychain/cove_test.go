package verifychain

import (
	"context"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/litassist-core/internal/llm"
)

// fakeCaller returns a fixed response regardless of input, matching the
// teacher's fake-client test style (internal/verify/verify_test.go,
// internal/synth/synth_test.go).
type fakeCaller struct {
	response string
	calls    int
}

func (f *fakeCaller) Complete(_ context.Context, _ []openai.ChatCompletionMessage, _ llm.Overrides) (llm.CompletionResult, error) {
	f.calls++
	return llm.CompletionResult{Content: f.response, Usage: llm.Usage{TotalTokens: 100}}, nil
}

// TestCoVeWithIssuesRegenerates exercises spec.md §8's scenario 4: stage 3
// finds issues, stage 4 runs, and the result reports regenerated=true,
// passed=false, with the final content equal to stage 4's output.
func TestCoVeWithIssuesRegenerates(t *testing.T) {
	chain := &Chain{
		QuestionsLLM:     &fakeCaller{response: "1. Is Smith v Jones correctly decided?\n2. Is the date correct?"},
		AnswersLLM:       &fakeCaller{response: "1. No, the citation is fabricated.\n2. No, February 30 does not exist."},
		InconsistencyLLM: &fakeCaller{response: "1. The citation Smith v Jones [2025] FAKE 123 does not exist.\n2. February 30, 2024 is not a valid date."},
		RegenerateLLM:    &fakeCaller{response: "Corrected document with the fabricated citation and invalid date removed."},
	}

	original := "Smith v Jones [2025] FAKE 123 established this on February 30, 2024."
	result, err := chain.RunCoVe(context.Background(), "draft", original, PriorContexts{}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Regenerated {
		t.Fatalf("expected regenerated=true")
	}
	if result.Passed {
		t.Fatalf("expected passed=false")
	}
	if result.FinalContent != "Corrected document with the fabricated citation and invalid date removed." {
		t.Fatalf("unexpected final content: %q", result.FinalContent)
	}
	if result.OriginalContentLength != len(original) {
		t.Fatalf("expected original content length recorded")
	}
	if result.TotalTokens != 400 {
		t.Fatalf("expected total tokens summed across all 4 stages, got %d", result.TotalTokens)
	}
}

// TestCoVeWithoutIssuesSkipsRegeneration exercises spec.md §8's scenario 5:
// stage 3 reports "No issues found", stage 4 is skipped, regenerated=false,
// passed=true, and the final content equals the original.
func TestCoVeWithoutIssuesSkipsRegeneration(t *testing.T) {
	regen := &fakeCaller{response: "should never be called"}
	chain := &Chain{
		QuestionsLLM:     &fakeCaller{response: "1. Is the citation correct?"},
		AnswersLLM:       &fakeCaller{response: "1. Yes, Mabo v Queensland (No 2) (1992) 175 CLR 1 is correctly cited."},
		InconsistencyLLM: &fakeCaller{response: "No issues found"},
		RegenerateLLM:    regen,
	}

	original := "Mabo v Queensland (No 2) (1992) 175 CLR 1 established native title."
	result, err := chain.RunCoVe(context.Background(), "lookup", original, PriorContexts{}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Regenerated {
		t.Fatalf("expected regenerated=false")
	}
	if !result.Passed {
		t.Fatalf("expected passed=true")
	}
	if result.FinalContent != original {
		t.Fatalf("expected final content to equal original, got %q", result.FinalContent)
	}
	if regen.calls != 0 {
		t.Fatalf("expected regeneration stage to be skipped, got %d calls", regen.calls)
	}
	if result.TotalTokens != 300 {
		t.Fatalf("expected total tokens summed across the 3 stages that ran, got %d", result.TotalTokens)
	}
}

func TestFormatCoVeReportHandlesMissingFields(t *testing.T) {
	cases := []map[string]any{
		{},
		{"cove": map[string]any{}},
		{"questions": nil, "answers": nil, "issues": nil},
		{"cove": map[string]any{"questions": []string{"q1"}, "passed": true}},
	}
	for i, data := range cases {
		out := FormatCoVeReport(data)
		if strings.TrimSpace(out) == "" {
			t.Fatalf("case %d: expected non-empty report", i)
		}
	}
}

func TestIsNoIssuesFound(t *testing.T) {
	if !isNoIssuesFound("No issues found") {
		t.Fatalf("expected exact match to be recognised")
	}
	if !isNoIssuesFound("  no issues found.  ") {
		t.Fatalf("expected case/whitespace-insensitive match")
	}
	if isNoIssuesFound("1. The date is wrong.") {
		t.Fatalf("expected enumerated issues to not match")
	}
}

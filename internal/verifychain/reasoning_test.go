package verifychain

import "testing"

func TestExtractReasoningTrace(t *testing.T) {
	doc := `## Issue
Whether the contract term was unconscionable.

## Applicable Law
Section 20 of the Australian Consumer Law prohibits unconscionable conduct in trade or commerce.

## Application
The clause imposed a disproportionate penalty with no opportunity for negotiation, which the authorities treat as a strong indicator of unconscionability here.

## Conclusion
The term is likely void as unconscionable.

## Confidence
78

## Sources
- Australian Consumer Law s 20
- ACCC v Medibank Private Ltd (2018) FCAFC 235
`
	trace, ok := ExtractReasoningTrace(doc, "strategy")
	if !ok {
		t.Fatalf("expected trace to be extracted")
	}
	if trace.Confidence != 78 {
		t.Fatalf("expected confidence 78, got %d", trace.Confidence)
	}
	if len(trace.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %v", trace.Sources)
	}
	if problems := ValidateReasoningTrace(trace); len(problems) != 0 {
		t.Fatalf("expected no validation problems, got %v", problems)
	}
}

func TestValidateReasoningTraceRejectsShortFields(t *testing.T) {
	trace := ReasoningTrace{
		Issue:         "short",
		ApplicableLaw: "too short",
		Application:   "also short",
		Conclusion:    "x",
		Confidence:    150,
	}
	problems := ValidateReasoningTrace(trace)
	if len(problems) == 0 {
		t.Fatalf("expected validation problems for short fields and out-of-range confidence")
	}
}

func TestExtractReasoningTraceAbsent(t *testing.T) {
	if _, ok := ExtractReasoningTrace("Just a plain document with no IRAC headings.", "draft"); ok {
		t.Fatalf("expected no trace to be found")
	}
}

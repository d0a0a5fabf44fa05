package citation

import (
	"context"
	"testing"

	"github.com/hyperifyio/litassist-core/internal/ratelimit"
)

func TestVerifyAllLenientRemovesUnverified(t *testing.T) {
	cache := NewCache()
	cse := &fakeCSE{resp: map[string][]SearchResult{}}
	checker := &fakeURLChecker{status: 404}
	pacer := ratelimit.NewAustLIIPacer(0, 0)
	v := NewVerifier(cache, cse, checker, pacer, nil, "legal-id", "gov-id", "austlii-id")

	text := "The principle was affirmed in [2030] FAKECOURT 1, and is settled law."
	result, err := VerifyAll(context.Background(), text, v, nil, false)
	if err != nil {
		t.Fatalf("unexpected error in lenient mode: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", result.Warnings)
	}
	if containsSub(result.Cleaned, "[2030] FAKECOURT 1") {
		t.Fatalf("expected unverified citation removed: %q", result.Cleaned)
	}
}

func TestVerifyAllStrictRaisesOnUnverified(t *testing.T) {
	cache := NewCache()
	cse := &fakeCSE{resp: map[string][]SearchResult{}}
	checker := &fakeURLChecker{status: 404}
	pacer := ratelimit.NewAustLIIPacer(0, 0)
	v := NewVerifier(cache, cse, checker, pacer, nil, "legal-id", "gov-id", "austlii-id")

	text := "See [2031] FAKECOURT 2 for authority."
	_, err := VerifyAll(context.Background(), text, v, nil, true)
	if err == nil {
		t.Fatalf("expected strict-mode error for unverified citation")
	}
}

func TestVerifyAllLegislationNeedsNoNetwork(t *testing.T) {
	cache := NewCache()
	cse := &fakeCSE{resp: map[string][]SearchResult{}}
	checker := &fakeURLChecker{status: 200}
	pacer := ratelimit.NewAustLIIPacer(0, 0)
	v := NewVerifier(cache, cse, checker, pacer, nil, "legal-id", "gov-id", "austlii-id")

	text := "Under the Fair Work Act 2009 (Cth), an employee may..."
	result, err := VerifyAll(context.Background(), text, v, nil, true)
	if err != nil {
		t.Fatalf("unexpected error for legislation reference: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings for legislation, got %+v", result.Warnings)
	}
	if checker.calls != 0 {
		t.Fatalf("expected no network calls for legislation, got %d", checker.calls)
	}
}

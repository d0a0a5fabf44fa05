package citation

import (
	"context"
	"testing"

	"github.com/hyperifyio/litassist-core/internal/ratelimit"
)

type fakeCSE struct {
	calls int
	resp  map[string][]SearchResult
}

func (f *fakeCSE) Search(ctx context.Context, cseID, query string, num int) ([]SearchResult, error) {
	f.calls++
	return f.resp[cseID], nil
}

type fakeURLChecker struct {
	calls  int
	status int
}

func (f *fakeURLChecker) CheckURL(ctx context.Context, url string) (int, error) {
	f.calls++
	return f.status, nil
}

func TestVerifySingleDirectURLScenario(t *testing.T) {
	cache := NewCache()
	cse := &fakeCSE{resp: map[string][]SearchResult{}}
	checker := &fakeURLChecker{status: 200}
	pacer := ratelimit.NewAustLIIPacer(0, 0)
	v := NewVerifier(cache, cse, checker, pacer, nil, "legal-id", "gov-id", "austlii-id")

	cites := Extract("See [2022] ACTSC 272.")
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %+v", cites)
	}
	result := v.VerifySingle(context.Background(), cites[0])
	if !result.Exists {
		t.Fatalf("expected citation to verify as existing")
	}
	wantURL := "https://www.austlii.edu.au/cgi-bin/viewdoc/au/cases/act/ACTSC/2022/272.html"
	if result.URL != wantURL {
		t.Fatalf("url mismatch: got %q want %q", result.URL, wantURL)
	}
	if result.Reason != "Verified via AustLII direct URL" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 cache entry, got %d", cache.Len())
	}
}

func TestVerifySingleIdempotentNoExtraNetworkCalls(t *testing.T) {
	cache := NewCache()
	cse := &fakeCSE{resp: map[string][]SearchResult{}}
	checker := &fakeURLChecker{status: 200}
	pacer := ratelimit.NewAustLIIPacer(0, 0)
	v := NewVerifier(cache, cse, checker, pacer, nil, "legal-id", "gov-id", "austlii-id")

	cites := Extract("See [2022] ACTSC 272.")
	first := v.VerifySingle(context.Background(), cites[0])
	callsAfterFirst := checker.calls

	second := v.VerifySingle(context.Background(), cites[0])
	if checker.calls != callsAfterFirst {
		t.Fatalf("expected no additional network calls on second verify, calls went from %d to %d", callsAfterFirst, checker.calls)
	}
	if first != second {
		t.Fatalf("expected identical result on repeated verification: %+v vs %+v", first, second)
	}
}

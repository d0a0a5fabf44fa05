package citation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/ratelimit"
)

// SearchResult is a single Google Custom Search item, trimmed to the fields
// the verification logic inspects.
type SearchResult struct {
	Title   string
	Snippet string
	Link    string
}

// CSEClient is the minimal Google Custom Search v1 surface the verifier
// needs, per spec.md §6's CSE protocol.
type CSEClient interface {
	Search(ctx context.Context, cseID, query string, num int) ([]SearchResult, error)
}

// URLChecker issues the AustLII direct-URL GET (HEAD is forbidden for this
// path per spec.md §4.2/§6).
type URLChecker interface {
	CheckURL(ctx context.Context, url string) (status int, err error)
}

// Verifier performs online citation verification, consulting the cache,
// then classification, then the three CSEs and the AustLII direct URL, in
// the deterministic order of spec.md §5.
type Verifier struct {
	Cache      *Cache
	CSE        CSEClient
	URLChecker URLChecker
	Pacer      *ratelimit.AustLIIPacer
	Logger     *audit.Logger

	LegalCSEID    string
	GovCSEID      string
	AustLIICSEID  string

	now func() time.Time
}

// NewVerifier constructs a Verifier.
func NewVerifier(cache *Cache, cse CSEClient, checker URLChecker, pacer *ratelimit.AustLIIPacer, logger *audit.Logger, legalID, govID, austliiID string) *Verifier {
	return &Verifier{
		Cache: cache, CSE: cse, URLChecker: checker, Pacer: pacer, Logger: logger,
		LegalCSEID: legalID, GovCSEID: govID, AustLIICSEID: austliiID,
		now: time.Now,
	}
}

// VerifySingle verifies one citation, consulting the cache first (making
// the operation idempotent: a second call for the same normalized citation
// issues no further network calls, per spec.md §8).
func (v *Verifier) VerifySingle(ctx context.Context, c Citation) Citation {
	norm := Normalize(c.Raw)
	if norm == "" {
		norm = c.Normalized
	}
	c.Normalized = norm

	if v.Cache != nil {
		if e, ok := v.Cache.Get(norm); ok {
			c.Exists, c.URL, c.Reason = e.Exists, e.URL, e.Reason
			return c
		}
	}

	if resolved, done := ClassifyWithoutVerification(c); done {
		v.store(norm, resolved)
		return resolved
	}

	// Online verification order: primary legal CSE -> comprehensive CSE ->
	// AustLII CSE -> AustLII direct URL.
	for _, step := range []struct {
		id   string
		kind string
	}{
		{v.LegalCSEID, "legal"},
		{v.GovCSEID, "comprehensive"},
		{v.AustLIICSEID, "austlii"},
	} {
		if step.id == "" || v.CSE == nil {
			continue
		}
		if found, url := v.searchCSE(ctx, step.id, step.kind, c); found {
			c.Exists, c.URL, c.Reason = true, url, fmt.Sprintf("Verified via %s CSE", step.kind)
			v.store(norm, c)
			return c
		}
	}

	if c.Subtype == SubtypeMediumNeutral {
		if url, status, err := v.tryDirectURL(ctx, c); err == nil && status == 200 {
			c.Exists, c.URL, c.Reason = true, url, "Verified via AustLII direct URL"
			v.store(norm, c)
			return c
		}
	}

	c.Exists, c.URL, c.Reason = false, "", "Citation could not be verified in any available database"
	v.store(norm, c)
	return c
}

func (v *Verifier) store(norm string, c Citation) {
	if v.Cache == nil {
		return
	}
	v.Cache.Put(norm, CacheEntry{Exists: c.Exists, URL: c.URL, Reason: c.Reason})
}

func (v *Verifier) searchCSE(ctx context.Context, cseID, kind string, c Citation) (bool, string) {
	start := v.nowFn()
	query := c.Normalized
	num := 10
	results, err := v.CSE.Search(ctx, cseID, query, num)
	elapsed := v.nowFn().Sub(start)
	var url string
	found := false
	if err == nil {
		for _, r := range results {
			if matchesFormatVariation(r, c) {
				found = true
				url = r.Link
				break
			}
		}
	}
	v.logCSEAttempt(cseID, kind, query, found, elapsed, err)
	return found, url
}

func (v *Verifier) logCSEAttempt(cseID, kind, query string, found bool, elapsed time.Duration, err error) {
	if v.Logger == nil {
		return
	}
	payload := audit.LogPayload{
		"cse_id":      cseID,
		"kind":        kind,
		"query":       query,
		"found":       found,
		"elapsed_ms":  elapsed.Milliseconds(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	_, _ = v.Logger.SaveLog("google_cse_validation", payload)
}

// formatVariations returns up to four lowercased string forms of a
// citation's normalized text that an online result's title/snippet/link
// might contain, per spec.md §4.2.
func formatVariations(c Citation) []string {
	base := strings.ToLower(c.Normalized)
	noBrackets := strings.NewReplacer("[", "", "]", "").Replace(base)
	noSpaces := strings.ReplaceAll(noBrackets, " ", "")
	reordered := fmt.Sprintf("%s %s %s", strings.ToLower(c.Court), c.Number, c.Year)
	return []string{base, noBrackets, noSpaces, reordered}
}

func matchesFormatVariation(r SearchResult, c Citation) bool {
	hay := strings.ToLower(r.Title + " " + r.Snippet + " " + r.Link)
	for _, v := range formatVariations(c) {
		if v != "" && strings.Contains(hay, v) {
			return true
		}
	}
	if c.Subtype == SubtypeTraditional {
		if c.Year != "" && c.Volume != "" && c.Court != "" && c.Number != "" {
			if strings.Contains(hay, strings.ToLower(c.Court)) &&
				strings.Contains(hay, c.Year) &&
				strings.Contains(hay, c.Number) {
				return true
			}
		}
	}
	return false
}

// tryDirectURL constructs the AustLII direct URL from the court-mapping
// table and issues a paced GET (HEAD is blocked by AustLII for this path),
// per spec.md §4.2/§6.
func (v *Verifier) tryDirectURL(ctx context.Context, c Citation) (string, int, error) {
	path, ok := CourtPath(c.Court)
	if !ok {
		return "", 0, fmt.Errorf("unknown court abbreviation: %s", c.Court)
	}
	if _, err := strconv.Atoi(c.Number); err != nil {
		return "", 0, fmt.Errorf("invalid citation number: %s", c.Number)
	}
	url := fmt.Sprintf("https://www.austlii.edu.au/cgi-bin/viewdoc/au/cases/%s/%s/%s.html", path, c.Year, c.Number)

	if v.Pacer != nil {
		if err := v.Pacer.Wait(ctx); err != nil {
			return url, 0, err
		}
	}
	start := v.nowFn()
	var status int
	var err error
	if v.URLChecker != nil {
		status, err = v.URLChecker.CheckURL(ctx, url)
	} else {
		err = fmt.Errorf("no URL checker configured")
	}
	if v.Pacer != nil {
		v.Pacer.MarkDone()
	}
	elapsed := v.nowFn().Sub(start)

	if v.Logger != nil {
		payload := audit.LogPayload{
			"url":        url,
			"http_status": status,
			"elapsed_ms": elapsed.Milliseconds(),
		}
		if err != nil {
			payload["error"] = err.Error()
		}
		_, _ = v.Logger.SaveLog("austlii_direct_verification", payload)
	}
	return url, status, err
}

func (v *Verifier) nowFn() time.Time {
	if v.now != nil {
		return v.now()
	}
	return time.Now()
}

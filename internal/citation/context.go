package citation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hyperifyio/litassist-core/internal/audit"
)

// Fetcher retrieves the full text of a URL within a timeout, per spec.md
// §4.3. Errors are non-fatal to the caller (empty content means "could not
// fetch"), per spec.md §7.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// legislationHardcodedURLs overrides CSE-derived URLs for specific Acts
// whose canonical AustLII/legislation.gov.au location is well known, per
// spec.md §4.2.
var legislationHardcodedURLs = map[string]string{
	"Evidence Act 1995":             "https://www.legislation.gov.au/Details/C2022C00197",
	"Freedom of Information Act 1982": "https://www.legislation.gov.au/Details/C2022C00289",
}

// ContextFetcher retrieves the full document text for a citation, per
// spec.md §4.2's context-fetching algorithm.
type ContextFetcher struct {
	CSE     CSEClient
	Fetcher Fetcher
	Logger  *audit.Logger

	GovCSEID     string
	AustLIICSEID string

	FetchTimeout time.Duration
}

// NewContextFetcher constructs a ContextFetcher with the 15s timeout
// spec.md §4.2 specifies.
func NewContextFetcher(cse CSEClient, fetcher Fetcher, logger *audit.Logger, govCSEID, austliiCSEID string) *ContextFetcher {
	return &ContextFetcher{CSE: cse, Fetcher: fetcher, Logger: logger, GovCSEID: govCSEID, AustLIICSEID: austliiCSEID, FetchTimeout: 15 * time.Second}
}

// FetchContext resolves a URL for c (preferring c.URL if already verified),
// fetches it, validates the opening text matches the citation, and returns
// either a statute section window or the full cleaned document.
func (cf *ContextFetcher) FetchContext(ctx context.Context, c Citation, sectionHint string) (string, error) {
	candidateURLs := cf.candidateURLs(ctx, c)
	for _, url := range candidateURLs {
		raw, err := cf.Fetcher.Fetch(ctx, url, cf.FetchTimeout)
		if err != nil || strings.TrimSpace(raw) == "" {
			continue
		}
		cleaned := CleanDocument(raw)
		if !matchesOpening(cleaned, c) {
			continue
		}
		if section := extractSectionWindow(cleaned, sectionHint); section != "" {
			return section, nil
		}
		return cleaned, nil
	}
	return "", fmt.Errorf("could not fetch context for citation %q", c.Normalized)
}

func (cf *ContextFetcher) candidateURLs(ctx context.Context, c Citation) []string {
	var urls []string
	if c.URL != "" {
		urls = append(urls, c.URL)
	}

	if c.Subtype == SubtypeLegislation || c.Subtype == SubtypeRegulation {
		if override, ok := legislationHardcodedURLs[c.Name+" "+c.Year]; ok {
			urls = append(urls, override)
		}
		urls = append(urls, cf.searchURLs(ctx, cf.GovCSEID, c.Normalized+" filetype:pdf site:gov.au")...)
		urls = append(urls, fmt.Sprintf("https://www.austlii.edu.au/au/legis/cth/consol_act/%s/", slugify(c.Name)))
		urls = append(urls, cf.searchURLs(ctx, cf.GovCSEID, c.Normalized+" site:gov.au")...)
		return urls
	}

	// Case law.
	urls = append(urls, cf.searchURLs(ctx, cf.AustLIICSEID, c.Normalized+" site:austlii.edu.au/au/cases")...)
	urls = append(urls, cf.searchURLs(ctx, cf.GovCSEID, c.Normalized)...)
	if c.Subtype == SubtypeMediumNeutral {
		if path, ok := CourtPath(c.Court); ok {
			urls = append(urls, fmt.Sprintf("https://www.austlii.edu.au/cgi-bin/viewdoc/au/cases/%s/%s/%s.html", path, c.Year, c.Number))
		}
	}
	return urls
}

func (cf *ContextFetcher) searchURLs(ctx context.Context, cseID, query string) []string {
	if cf.CSE == nil || cseID == "" {
		return nil
	}
	results, err := cf.CSE.Search(ctx, cseID, query, 5)
	if cf.Logger != nil {
		payload := audit.LogPayload{"cse_id": cseID, "query": query, "result_count": len(results)}
		if err != nil {
			payload["error"] = err.Error()
		}
		_, _ = cf.Logger.SaveLog("citation_context_cse_search", payload)
	}
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Link)
	}
	return out
}

// matchesOpening validates that the fetched content begins (within the
// first ~500 chars) with the core citation/name, per spec.md §4.2: the
// jurisdiction suffix is stripped for legislation, whitespace/brackets are
// normalized for medium-neutral citations.
func matchesOpening(content string, c Citation) bool {
	window := content
	if len(window) > 500 {
		window = window[:500]
	}
	window = strings.ToLower(window)

	var needle string
	switch c.Subtype {
	case SubtypeLegislation, SubtypeRegulation:
		needle = strings.ToLower(c.Name)
	default:
		needle = strings.ToLower(strings.NewReplacer("[", "", "]", "").Replace(c.Normalized))
	}
	needle = strings.Join(strings.Fields(needle), " ")
	window = strings.Join(strings.Fields(window), " ")
	return needle != "" && strings.Contains(window, needle)
}

var sectionRe = regexp.MustCompile(`(?i)\bs(?:ection)?\.?\s*(\d+[A-Za-z]?)\b`)

// extractSectionWindow returns the requested section plus one adjoining
// section on each side, or "" if sectionHint names no section (the full
// cleaned document should be used instead).
func extractSectionWindow(doc string, sectionHint string) string {
	m := sectionRe.FindStringSubmatch(sectionHint)
	if m == nil {
		return ""
	}
	target := m[1]
	sections := splitIntoSections(doc)
	if len(sections) == 0 {
		return ""
	}
	idx := -1
	for i, s := range sections {
		if s.number == target {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ""
	}
	start := idx - 1
	if start < 0 {
		start = 0
	}
	end := idx + 1
	if end >= len(sections) {
		end = len(sections) - 1
	}
	var b strings.Builder
	for i := start; i <= end; i++ {
		b.WriteString(sections[i].text)
		if i != end {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

type docSection struct {
	number string
	text   string
}

var sectionHeadingRe = regexp.MustCompile(`(?m)^\s*(\d+[A-Za-z]?)\s+[A-Z]`)

func splitIntoSections(doc string) []docSection {
	locs := sectionHeadingRe.FindAllStringSubmatchIndex(doc, -1)
	if len(locs) == 0 {
		return nil
	}
	var out []docSection
	for i, loc := range locs {
		start := loc[0]
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		number := doc[loc[2]:loc[3]]
		out = append(out, docSection{number: number, text: strings.TrimSpace(doc[start:end])})
	}
	return out
}

func slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

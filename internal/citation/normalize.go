package citation

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)
var mediumNeutralRe = regexp.MustCompile(`^\[(\d{4})\]\s*([A-Za-z]+(?:\s+[A-Za-z]+)*)\s+(\d+)$`)

// Normalize collapses whitespace and canonicalises medium-neutral spacing,
// per spec.md §3. It is idempotent: Normalize(Normalize(s)) == Normalize(s).
//
// Text scraped from PDFs and AustLII/gov.au HTML frequently mixes
// precomposed and decomposed Unicode forms (accented names, non-breaking
// spaces from copy-pasted reporter citations); NFC-normalizing first means
// two byte-different but visually identical citations collapse to the same
// cache key instead of missing each other in internal/citation's cache.
func Normalize(s string) string {
	trimmed := strings.TrimSpace(norm.NFC.String(s))
	collapsed := whitespaceRe.ReplaceAllString(trimmed, " ")
	if m := mediumNeutralRe.FindStringSubmatch(collapsed); m != nil {
		return "[" + m[1] + "] " + m[2] + " " + m[3]
	}
	return collapsed
}

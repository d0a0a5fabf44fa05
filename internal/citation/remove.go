package citation

import (
	"regexp"
	"strings"
)

// removalPatternTemplates are tried in order, per spec.md §4.2: the most
// specific surrounding phrasing first, falling back to a bare match.
var removalPatternTemplates = []string{
	`(?i)as held in\s+%s`,
	`\(\s*%s\s*\)`,
	`\s*[-—–]+\s*%s`,
	`;\s*%s`,
	`,\s*%s`,
	`%s`,
}

// RemoveCitationFromText scrubs an unverified citation from text using the
// punctuation-aware removal sequence of spec.md §4.2, then normalizes
// whitespace/punctuation. The operation is idempotent: calling it twice with
// the same citation yields the same result as calling it once (modulo
// whitespace normalization), per spec.md §8.
func RemoveCitationFromText(text string, citation string) string {
	quoted := regexp.QuoteMeta(strings.TrimSpace(citation))
	if quoted == "" {
		return normalizePunctuation(text)
	}
	out := text
	for _, tmpl := range removalPatternTemplates {
		re := regexp.MustCompile(tmpl)
		if re.MatchString(out) {
			out = re.ReplaceAllString(out, "")
			break
		}
	}
	return normalizePunctuation(out)
}

var (
	reMultiSpaceOrTab = regexp.MustCompile(`[ \t]+`)
	reRepeatedPunct   = regexp.MustCompile(`([,.;:])\1+`)
	reDanglingPunct   = regexp.MustCompile(`\s+([,.;:])`)
	reLeadingPunct    = regexp.MustCompile(`(?m)^[ \t]*[,;]\s*`)
)

// normalizePunctuation collapses runs of spaces/tabs (preserving newlines),
// fixes repeated punctuation, and removes dangling punctuation left behind
// by a removed citation.
func normalizePunctuation(s string) string {
	s = reMultiSpaceOrTab.ReplaceAllString(s, " ")
	s = reDanglingPunct.ReplaceAllString(s, "$1")
	s = reRepeatedPunct.ReplaceAllString(s, "$1")
	s = reLeadingPunct.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
		lines[i] = strings.TrimLeft(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}

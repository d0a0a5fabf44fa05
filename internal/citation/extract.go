package citation

import (
	"regexp"
	"strings"
)

// extractionPatterns is the fixed ordered set of regular expressions run
// over generated text, per spec.md §4.2. Order matters: Extract runs them in
// this order and keeps the first citation seen for each normalized string;
// a span matched by one pattern is not excluded from the later patterns.
var (
	reMediumNeutral = regexp.MustCompile(`\[(\d{4})\]\s+([A-Za-z]{2,10})\s+(\d+)\b`)
	reTraditional   = regexp.MustCompile(`\((\d{4})\)\s+(\d+)\s+([A-Za-z]{2,10})\s+(\d+)\b`)
	reMediumNeutralSuffix = regexp.MustCompile(`\[(\d{4})\]\s+(EWCA|EWHC)\s+(Civ|Crim|Admin|Fam|Ch|QB|Comm)\s+(\d+)\b`)
	reVolumeYearSeries    = regexp.MustCompile(`\[(\d{4})\]\s+(\d+)\s+([A-Za-z]{1,10})\s+(\d+)\b`)
	reUSReporter          = regexp.MustCompile(`(\d+)\s+(U\.S\.|F\.2d|F\.3d|S\.Ct\.)\s+(\d+)\b`)
	reLloydsBracket       = regexp.MustCompile(`\[(\d{4})\]\s+(\d+\s+)?Lloyd'?s\s+Rep\.?\s+(\d+)\b`)
	reLloydsParen         = regexp.MustCompile(`\((\d{4})\)\s+(\d+\s+)?Lloyd'?s\s+Rep\.?\s+(\d+)\b`)
	reCrAppRBracket       = regexp.MustCompile(`\[(\d{4})\]\s+(\d+)\s+Cr\s?App\s?R\.?\s+(\d+)\b`)
	reCrAppRParen         = regexp.MustCompile(`\((\d{4})\)\s+(\d+)\s+Cr\s?App\s?R\.?\s+(\d+)\b`)
	reAct                 = regexp.MustCompile(`\b((?:[A-Z][a-zA-Z'&-]*\s+){1,8})Act\s+(\d{4})(?:\s*\(([A-Za-z]+)\))?`)
	reRegulations         = regexp.MustCompile(`\b((?:[A-Z][a-zA-Z'&-]*\s+){1,8})Regulations?\s+(\d{4})(?:\s*\(([A-Za-z]+)\))?`)
)

// sentenceStartBlacklist are interrogative/modal words that, when they are
// the first word of an "Act"/"Regulations" name phrase, indicate the match
// is a misparsed sentence opener rather than a statute name (spec.md §8:
// "Does Act 1975" yields no Act citation).
var sentenceStartBlacklist = map[string]bool{
	"Does": true, "Did": true, "Is": true, "Are": true, "Was": true, "Were": true,
	"Should": true, "Would": true, "Could": true, "Can": true, "Will": true, "Has": true, "Have": true,
}

// Extract runs the fixed ordered regex set over text and returns unique
// normalized citations, grouped by pattern in the set's order and, within
// one pattern, in order of appearance in text, per spec.md §4.2.
func Extract(text string) []Citation {
	var out []Citation
	seen := map[string]bool{}

	add := func(raw string, c Citation) {
		norm := Normalize(raw)
		if norm == "" || seen[norm] {
			return
		}
		seen[norm] = true
		c.Raw = raw
		c.Normalized = norm
		out = append(out, c)
	}

	for _, m := range reMediumNeutral.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeMediumNeutral, Year: m[1], Court: m[2], Number: m[3]})
	}
	for _, m := range reTraditional.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeTraditional, Year: m[1], Volume: m[2], Court: m[3], Number: m[4]})
	}
	for _, m := range reMediumNeutralSuffix.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeInternational, Year: m[1], Court: m[2] + " " + m[3], Number: m[4]})
	}
	for _, m := range reVolumeYearSeries.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeMediumNeutral, Year: m[1], Volume: m[2], Court: m[3], Number: m[4]})
	}
	for _, m := range reUSReporter.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeForeign, Volume: m[1], Court: m[2], Number: m[3]})
	}
	for _, m := range reLloydsBracket.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeForeign, Year: m[1], Court: "Lloyd's Rep", Number: m[3]})
	}
	for _, m := range reLloydsParen.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeForeign, Year: m[1], Court: "Lloyd's Rep", Number: m[3]})
	}
	for _, m := range reCrAppRBracket.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeForeign, Year: m[1], Volume: m[2], Court: "Cr App R", Number: m[3]})
	}
	for _, m := range reCrAppRParen.FindAllStringSubmatch(text, -1) {
		add(m[0], Citation{Subtype: SubtypeForeign, Year: m[1], Volume: m[2], Court: "Cr App R", Number: m[3]})
	}
	for _, m := range reAct.FindAllStringSubmatch(text, -1) {
		if isSentenceStarterPhrase(m[1]) {
			continue
		}
		add(m[0], Citation{Subtype: SubtypeLegislation, Name: strings.TrimSpace(m[1]) + " Act", Year: m[2], Jurisdiction: m[3]})
	}
	for _, m := range reRegulations.FindAllStringSubmatch(text, -1) {
		if isSentenceStarterPhrase(m[1]) {
			continue
		}
		add(m[0], Citation{Subtype: SubtypeRegulation, Name: strings.TrimSpace(m[1]) + " Regulations", Year: m[2], Jurisdiction: m[3]})
	}
	return out
}

func isSentenceStarterPhrase(phrase string) bool {
	fields := strings.Fields(phrase)
	if len(fields) == 0 {
		return false
	}
	return sentenceStartBlacklist[fields[0]]
}

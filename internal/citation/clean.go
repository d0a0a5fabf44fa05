package citation

import (
	"regexp"
	"strings"
)

// boilerplateLinePatterns match entire lines of known site chrome that
// CleanDocument strips, per spec.md §4.2's _clean_document rules.
var boilerplateLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*copyright\b.*$`),
	regexp.MustCompile(`(?i)^\s*privacy\s+polic(y|ies)\b.*$`),
	regexp.MustCompile(`(?i)^\s*terms\s+(of\s+)?(use|service)\b.*$`),
	regexp.MustCompile(`(?i)^\s*skip\s+to\s+main\s+content\s*$`),
	regexp.MustCompile(`(?i)^\s*last\s+updated\b.*$`),
	regexp.MustCompile(`(?i)^\s*this\s+(act|instrument|legislation)\s+is\s+administered\s+by\b.*$`),
	regexp.MustCompile(`(?i)^\s*view\s+series\b.*$`),
	regexp.MustCompile(`(?i)^\s*download\b.*$`),
}

// CleanDocument strips known boilerplate lines and collapses excess blank
// lines, never truncating content, per spec.md §4.2.
func CleanDocument(doc string) string {
	lines := strings.Split(doc, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if isBoilerplateLine(line) {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return collapseBlankLines(out)
}

func isBoilerplateLine(line string) bool {
	for _, re := range boilerplateLinePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func collapseBlankLines(lines []string) string {
	out := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}
	// Trim leading/trailing blank lines.
	start := 0
	for start < len(out) && strings.TrimSpace(out[start]) == "" {
		start++
	}
	end := len(out)
	for end > start && strings.TrimSpace(out[end-1]) == "" {
		end--
	}
	return strings.Join(out[start:end], "\n")
}

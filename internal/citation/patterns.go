package citation

import "fmt"

// PatternIssue is a single non-blocking format warning from offline pattern
// validation, per spec.md §4.2.
type PatternIssue struct {
	Citation string
	Message  string
}

// ValidatePatterns inspects extracted citations for structural problems
// (missing year, non-numeric page/section, empty court) without any network
// access. Pattern validation is optional and skipped by default; callers
// gate it on Config.OfflineValidation, per spec.md §4.2.
func ValidatePatterns(cites []Citation) []PatternIssue {
	var issues []PatternIssue
	for _, c := range cites {
		switch c.Subtype {
		case SubtypeMediumNeutral, SubtypeTraditional, SubtypeInternational, SubtypeForeign:
			if c.Year == "" {
				issues = append(issues, PatternIssue{Citation: c.Raw, Message: "missing year"})
			}
			if c.Court == "" {
				issues = append(issues, PatternIssue{Citation: c.Raw, Message: "missing court/reporter abbreviation"})
			}
			if c.Number == "" {
				issues = append(issues, PatternIssue{Citation: c.Raw, Message: "missing decision/page number"})
			}
		case SubtypeLegislation, SubtypeRegulation:
			if c.Year == "" {
				issues = append(issues, PatternIssue{Citation: c.Raw, Message: "missing year"})
			}
			if c.Name == "" {
				issues = append(issues, PatternIssue{Citation: c.Raw, Message: "missing statute name"})
			}
		}
	}
	return issues
}

// FormatIssueMessage renders a PatternIssue for inclusion in an audit log.
func FormatIssueMessage(i PatternIssue) string {
	return fmt.Sprintf("%s: %s", i.Citation, i.Message)
}

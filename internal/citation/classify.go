package citation

import "fmt"

// ClassifyWithoutVerification applies the no-network classification rules
// of spec.md §4.2: legislation, international/foreign, and hardcoded FOIA
// citations are resolved without consulting any database. It returns the
// updated Citation and whether classification fully resolved it (no further
// online verification needed).
func ClassifyWithoutVerification(c Citation) (Citation, bool) {
	// Hardcoded FOIA short-circuit takes precedence: a canonical FOIA Act
	// name maps directly to a local file path.
	if c.Subtype == SubtypeLegislation {
		canonical := fmt.Sprintf("%s %s", c.Name, c.Year)
		if c.Jurisdiction != "" {
			canonical = fmt.Sprintf("%s %s (%s)", c.Name, c.Year, c.Jurisdiction)
		}
		if path, ok := FOIAHardcodedPath(canonical); ok {
			c.Exists = true
			c.URL = path
			c.Reason = "Hardcoded FOIA citation"
			return c, true
		}
	}

	switch c.Subtype {
	case SubtypeLegislation, SubtypeRegulation:
		c.Exists = true
		c.Reason = "Legislation reference — verification skipped"
		return c, true
	case SubtypeInternational, SubtypeForeign:
		name := internationalReasonName(c)
		c.Exists = true
		c.Reason = fmt.Sprintf("UK/International citation (%s) - not in Australian databases", name)
		return c, true
	case SubtypeMediumNeutral, SubtypeTraditional:
		if name, ok := UKInternationalCourtName(c.Court); ok {
			c.Subtype = SubtypeInternational
			c.Exists = true
			c.Reason = fmt.Sprintf("UK/International citation (%s) - not in Australian databases", name)
			return c, true
		}
	}
	return c, false
}

func internationalReasonName(c Citation) string {
	if name, ok := UKInternationalCourtName(c.Court); ok {
		return name
	}
	switch c.Court {
	case "U.S.":
		return "United States Reports"
	case "F.2d":
		return "Federal Reporter, Second Series"
	case "F.3d":
		return "Federal Reporter, Third Series"
	case "S.Ct.":
		return "Supreme Court Reporter"
	case "Lloyd's Rep":
		return "Lloyd's Law Reports"
	case "Cr App R":
		return "Criminal Appeal Reports"
	default:
		return c.Court
	}
}

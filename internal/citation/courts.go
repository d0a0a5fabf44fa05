package citation

import "strings"

// courtMapping maps an Australian court abbreviation to its jurisdiction
// path segment for direct-URL construction, per spec.md §3's CourtMapping.
var courtMapping = map[string]string{
	"HCA":    "cth/HCA",
	"FCA":    "cth/FCA",
	"FCAFC":  "cth/FCAFC",
	"FamCA":  "cth/FamCA",
	"FamCAFC": "cth/FamCAFC",
	"NSWSC":  "nsw/NSWSC",
	"NSWCA":  "nsw/NSWCA",
	"NSWCCA": "nsw/NSWCCA",
	"VSC":    "vic/VSC",
	"VSCA":   "vic/VSCA",
	"QSC":    "qld/QSC",
	"QCA":    "qld/QCA",
	"WASC":   "wa/WASC",
	"WASCA":  "wa/WASCA",
	"SASC":   "sa/SASC",
	"SASCFC": "sa/SASCFC",
	"TASSC":  "tas/TASSC",
	"TASFC":  "tas/TASFC",
	"ACTSC":  "act/ACTSC",
	"ACTCA":  "act/ACTCA",
	"NTSC":   "nt/NTSC",
	"NTCA":   "nt/NTCA",
}

// CourtPath returns the jurisdiction-prefixed path for an Australian court
// abbreviation and whether it is known.
func CourtPath(court string) (string, bool) {
	p, ok := courtMapping[strings.ToUpper(strings.TrimSpace(court))]
	return p, ok
}

// ukInternationalCourts maps foreign abbreviations to human names, signalling
// "valid but not Australian" per spec.md §3.
var ukInternationalCourts = map[string]string{
	"AC":     "Appeal Cases (House of Lords/Privy Council)",
	"UKHL":   "House of Lords",
	"UKSC":   "Supreme Court of the United Kingdom",
	"UKPC":   "Privy Council",
	"EWCA":   "Court of Appeal of England and Wales",
	"EWHC":   "High Court of England and Wales",
	"NZCA":   "Court of Appeal of New Zealand",
	"NZSC":   "Supreme Court of New Zealand",
	"NZHC":   "High Court of New Zealand",
	"SCC":    "Supreme Court of Canada",
	"HKCFA":  "Hong Kong Court of Final Appeal",
	"HKCA":   "Hong Kong Court of Appeal",
	"SGCA":   "Singapore Court of Appeal",
	"SGHC":   "Singapore High Court",
}

// UKInternationalCourtName returns the human name for a foreign court
// abbreviation and whether it is known.
func UKInternationalCourtName(abbrev string) (string, bool) {
	n, ok := ukInternationalCourts[strings.ToUpper(strings.TrimSpace(abbrev))]
	return n, ok
}

// foiaHardcodedPaths maps canonical FOIA citation names to a local file
// path, short-circuiting verification per spec.md §4.2.
var foiaHardcodedPaths = map[string]string{
	"Freedom of Information Act 1982 (Cth)": "file://local/foia/act-1982-cth.txt",
	"Freedom of Information Act 1989 (NSW)": "file://local/foia/act-1989-nsw.txt",
	"Right to Information Act 2009 (Qld)":   "file://local/foia/rti-2009-qld.txt",
}

// FOIAHardcodedPath returns the local path for a hardcoded FOIA citation
// name and whether one is known.
func FOIAHardcodedPath(name string) (string, bool) {
	p, ok := foiaHardcodedPaths[name]
	return p, ok
}

package fetch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxPDFPages bounds how many pages of text are extracted, per spec.md §4.3.
const maxPDFPages = 50

// minDensityRatio rejects image-heavy PDFs whose extracted-text-to-bytes
// ratio falls below this threshold, per spec.md §4.3.
const minDensityRatio = 0.0041

// foiMarkers are phrases that, when present in the opening of a document,
// indicate a routine FOI disclosure bundle rather than primary legal
// material, per spec.md §4.3.
var foiMarkers = []string{
	"documents released",
	"s. 47f",
	"s 47f",
	"released under the foi act",
	"released under the freedom of information act",
}

// foiWhitelistPattern matches URLs that are themselves about the Freedom of
// Information Act (not a disclosure bundle produced under it), which are
// exempt from the FOI-marker rejection.
var foiWhitelistPattern = regexp.MustCompile(`(?i)freedom[_-]?of[_-]?information[_-]?act`)

// No third-party PDF-parsing library appears anywhere in the retrieved
// example corpus (gofpdf, the teacher's PDF dependency, only writes PDFs).
// extractPDFText therefore implements a minimal reader directly against the
// stdlib: it scans uncompressed content-stream text-showing operators
// (Tj / TJ) and decodes their string literals. It does not handle
// FlateDecode-compressed streams, which covers many but not all
// AustLII/gov.au PDFs encountered in practice.
func extractPDFText(raw []byte, sourceURL string) (string, error) {
	pages := splitPages(raw)
	total := len(pages)
	if total == 0 {
		return "", fmt.Errorf("pdf contains no extractable pages")
	}
	processed := pages
	if len(processed) > maxPDFPages {
		processed = processed[:maxPDFPages]
	}

	var body strings.Builder
	for _, page := range processed {
		body.WriteString(extractPageText(page))
		body.WriteString("\n\n")
	}
	text := strings.TrimSpace(body.String())

	ratio := float64(len(text)) / float64(len(raw)+1)
	if ratio < minDensityRatio {
		return "", fmt.Errorf("pdf rejected: extracted-text ratio %.5f below threshold", ratio)
	}

	if containsFOIMarker(text) && !foiWhitelistPattern.MatchString(sourceURL) {
		return "", fmt.Errorf("pdf rejected: looks like an FOI disclosure bundle")
	}

	header := fmt.Sprintf("[PDF: %d of %d pages processed, source: %s]\n\n", len(processed), total, sourceURL)
	return header + text, nil
}

func containsFOIMarker(text string) bool {
	head := text
	if len(head) > 1000 {
		head = head[:1000]
	}
	lower := strings.ToLower(head)
	for _, marker := range foiMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// splitPages does a coarse split on the PDF's "/Type /Page" object markers,
// which is sufficient to bound the 50-page cap without a full object parser.
// Each page runs from its marker to the next one; bytes before the first
// marker belong to the first page.
func splitPages(raw []byte) [][]byte {
	locs := pageMarker.FindAllIndex(raw, -1)
	if len(locs) == 0 {
		// Fall back to treating the whole document as a single page so
		// that simple single-page PDFs still extract.
		return [][]byte{raw}
	}
	pages := make([][]byte, 0, len(locs))
	for i := range locs {
		start, end := 0, len(raw)
		if i > 0 {
			start = locs[i][0]
		}
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pages = append(pages, raw[start:end])
	}
	return pages
}

var pageMarker = regexp.MustCompile(`/Type ?/Page\b`)

var tjOperator = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*Tj`)
var tjArrayOperator = regexp.MustCompile(`\[((?:[^\[\]]|\\.)*)\]\s*TJ`)
var tjArrayString = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// extractPageText pulls text from Tj/TJ content-stream operators. Streams
// using FlateDecode compression are not decoded, so this best-effort
// against whatever uncompressed text operators appear in the raw bytes.
func extractPageText(page []byte) string {
	var out strings.Builder
	for _, m := range tjOperator.FindAllSubmatch(page, -1) {
		out.WriteString(decodePDFString(m[1]))
		out.WriteString(" ")
	}
	for _, m := range tjArrayOperator.FindAllSubmatch(page, -1) {
		for _, s := range tjArrayString.FindAllSubmatch(m[1], -1) {
			out.WriteString(decodePDFString(s[1]))
		}
		out.WriteString(" ")
	}
	return out.String()
}

func decodePDFString(b []byte) string {
	var out strings.Builder
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) {
			next := b[i+1]
			switch next {
			case 'n':
				out.WriteByte('\n')
				i++
				continue
			case 'r':
				out.WriteByte('\r')
				i++
				continue
			case 't':
				out.WriteByte('\t')
				i++
				continue
			case '(', ')', '\\':
				out.WriteByte(next)
				i++
				continue
			default:
				if next >= '0' && next <= '7' && i+3 < len(b) {
					if code, err := strconv.ParseInt(string(b[i+1:i+4]), 8, 32); err == nil {
						out.WriteByte(byte(code))
						i += 3
						continue
					}
				}
			}
		}
		out.WriteByte(b[i])
	}
	return out.String()
}

package audit

import (
	"github.com/jung-kurt/gofpdf"
)

// renderOutputPDF renders a command output to PDF for filing, the
// supplemented feature described in SPEC_FULL.md: LitAssist's draft/
// barbrief/caseplan outputs are often filed and benefit from a PDF
// alongside the plain-text log. Grounded on the teacher's
// internal/app/pdf.go use of gofpdf for final-report rendering.
func renderOutputPDF(path, title, content string, critique []CritiqueSection) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 10, title, "", "L", false)
	pdf.SetFont("Arial", "", 11)
	pdf.Ln(4)
	writePDFBody(pdf, content)

	for _, c := range critique {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 13)
		pdf.MultiCell(0, 8, c.Heading, "", "L", false)
		pdf.SetFont("Arial", "", 11)
		writePDFBody(pdf, c.Body)
	}

	return pdf.OutputFileAndClose(path)
}

func writePDFBody(pdf *gofpdf.Fpdf, text string) {
	const lineHeight = 6
	for _, line := range splitLines(text) {
		pdf.MultiCell(0, lineHeight, line, "", "L", false)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

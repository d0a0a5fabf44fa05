package fetch

import (
	"bytes"
	"strings"
	"testing"
)

func buildFakePDF(texts ...string) []byte {
	var body bytes.Buffer
	body.WriteString("%PDF-1.4\n")
	for range texts {
		body.WriteString("1 0 obj << /Type /Page >> endobj\n")
	}
	body.WriteString("BT\n")
	for _, t := range texts {
		body.WriteString("(" + t + ") Tj\n")
	}
	body.WriteString("ET\n")
	return body.Bytes()
}

func TestExtractPDFTextHappyPath(t *testing.T) {
	raw := buildFakePDF(strings.Repeat("legal text content goes here ", 50))
	text, err := extractPDFText(raw, "https://example.com/doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "legal text content") {
		t.Fatalf("expected extracted text to contain source phrase: %q", text)
	}
	if !strings.Contains(text, "pages processed") {
		t.Fatalf("expected header block: %q", text)
	}
}

func TestExtractPDFTextRejectsImageHeavy(t *testing.T) {
	// Mostly binary padding with a tiny sliver of actual text yields a
	// density ratio below the threshold.
	raw := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x00}, 200000)...)
	raw = append(raw, []byte("BT\n(a) Tj\nET\n")...)
	_, err := extractPDFText(raw, "https://example.com/scan.pdf")
	if err == nil {
		t.Fatalf("expected rejection for image-heavy pdf")
	}
}

func TestExtractPDFTextRejectsFOIDisclosure(t *testing.T) {
	raw := buildFakePDF("Documents released under the FOI Act pursuant to s. 47F " + strings.Repeat("padding text ", 50))
	_, err := extractPDFText(raw, "https://example.gov.au/foi/bundle.pdf")
	if err == nil {
		t.Fatalf("expected rejection for FOI disclosure bundle")
	}
}

func TestExtractPDFTextFOIWhitelistException(t *testing.T) {
	raw := buildFakePDF("Documents released under the FOI Act pursuant to s. 47F " + strings.Repeat("padding text ", 50))
	_, err := extractPDFText(raw, "https://www.legislation.gov.au/Details/Freedom_of_Information_Act_1982")
	if err != nil {
		t.Fatalf("expected whitelist exception to allow this document, got %v", err)
	}
}

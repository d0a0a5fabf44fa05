package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CritiqueSection is one appended "AI CRITIQUE & VERIFICATION" heading/body
// pair, per spec.md §4.6.
type CritiqueSection struct {
	Heading string
	Body    string
}

// OutputWriter saves human-readable command outputs to an outputs/
// directory, optionally archiving a PDF rendition (the supplemented
// feature documented in SPEC_FULL.md, grounded on the teacher's
// internal/app/pdf.go rendering path).
type OutputWriter struct {
	Dir        string
	EnablePDF  bool
	now        func() time.Time
}

// NewOutputWriter constructs an OutputWriter rooted at dir.
func NewOutputWriter(dir string, enablePDF bool) *OutputWriter {
	return &OutputWriter{Dir: dir, EnablePDF: enablePDF, now: time.Now}
}

func (w *OutputWriter) nowFn() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

// SaveCommandOutput writes outputs/<command>_<slug>_<timestamp>.txt with a
// header block, the content body, and an optional appended critique
// section, per spec.md §4.6.
func (w *OutputWriter) SaveCommandOutput(command, content, slug string, metadata map[string]string, critique []CritiqueSection) (string, error) {
	if w == nil {
		return "", fmt.Errorf("nil output writer")
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	ts := w.nowFn().UTC().Format("20060102T150405")
	base := fmt.Sprintf("%s_%s_%s", command, sanitizeSlug(slug), ts)
	path := filepath.Join(w.Dir, base+".txt")

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", titleFor(command, slug))
	for _, k := range sortedMetaKeys(metadata) {
		fmt.Fprintf(&b, "%s: %s\n", k, metadata[k])
	}
	fmt.Fprintf(&b, "Timestamp: %s\n", w.nowFn().UTC().Format(time.RFC3339))
	b.WriteString("\n")
	b.WriteString(content)

	if len(critique) > 0 {
		b.WriteString("\n\n== AI CRITIQUE & VERIFICATION ==\n")
		for _, c := range critique {
			fmt.Fprintf(&b, "\n-- %s --\n%s\n", c.Heading, c.Body)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write command output: %w", err)
	}

	if w.EnablePDF {
		if err := renderOutputPDF(filepath.Join(w.Dir, base+".pdf"), titleFor(command, slug), content, critique); err != nil {
			return path, fmt.Errorf("write command output: saved txt but PDF archive failed: %w", err)
		}
	}
	return path, nil
}

func titleFor(command, slug string) string {
	if slug == "" {
		return command
	}
	return command + ": " + slug
}

func sanitizeSlug(s string) string {
	if s == "" {
		return "output"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func sortedMetaKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Stable, deterministic order for reproducible headers.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

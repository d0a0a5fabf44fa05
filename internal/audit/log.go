package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Logger writes audit payloads to an on-disk logs/ directory, selecting JSON
// or Markdown per Format, matching spec.md §4.6's dual-format contract. The
// zero value is not usable; construct with NewLogger.
//
// Logger is safe for concurrent use: each SaveLog call computes its own
// timestamped filename, and writes never overlap by filename because the
// timestamp includes a monotonically increasing sequence suffix (spec.md §5
// notes callers should not issue parallel writes at sub-second granularity;
// the sequence counter makes that safe regardless).
type Logger struct {
	Dir    string
	Format string // "json" | "markdown"

	seq atomic.Uint64

	// now is overridable in tests.
	now func() time.Time
}

// NewLogger constructs a Logger rooted at dir with the given default format.
func NewLogger(dir string, format string) *Logger {
	if format == "" {
		format = "json"
	}
	return &Logger{Dir: dir, Format: format, now: time.Now}
}

func (l *Logger) nowFn() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// SaveLog persists tag/payload, returning the path written. formatOverride,
// when its first value is non-empty, overrides l.Format for this single call (per-invocation
// override described in spec.md §4.6).
func (l *Logger) SaveLog(tag string, payload LogPayload, formatOverride ...string) (string, error) {
	if l == nil {
		return "", fmt.Errorf("nil audit logger")
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	format := l.Format
	if len(formatOverride) > 0 && formatOverride[0] != "" {
		format = formatOverride[0]
	}
	ts := l.nowFn().UTC().Format("20060102T150405")
	seq := l.seq.Add(1)
	ext := "json"
	if strings.EqualFold(format, "markdown") || strings.EqualFold(format, "md") {
		ext = "md"
	}
	name := fmt.Sprintf("%s_%s_%04d.%s", sanitizeTag(tag), ts, seq, ext)
	path := filepath.Join(l.Dir, name)

	var body []byte
	var err error
	if ext == "md" {
		body = []byte(renderMarkdown(tag, payload))
	} else {
		body, err = json.MarshalIndent(sanitizeForJSON(payload), "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal log payload: %w", err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write log file: %w", err)
	}
	return path, nil
}

func sanitizeTag(tag string) string {
	if tag == "" {
		return "log"
	}
	var b strings.Builder
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// sanitizeForJSON applies the one JSON-mode transformation spec.md §4.6
// requires: if a dict contains combined_content alongside
// total_tokens/total_words/file_count, drop combined_content to avoid
// logging gigantic research blobs.
func sanitizeForJSON(payload LogPayload) LogPayload {
	out := make(LogPayload, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	if _, hasCombined := out["combined_content"]; hasCombined {
		_, hasTokens := out["total_tokens"]
		_, hasWords := out["total_words"]
		_, hasFiles := out["file_count"]
		if hasTokens && hasWords && hasFiles {
			delete(out, "combined_content")
		}
	}
	return out
}

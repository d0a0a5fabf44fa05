package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/cache"
	"github.com/hyperifyio/litassist-core/internal/extract"
	"github.com/hyperifyio/litassist-core/internal/ratelimit"
)

// JinaClient fetches the rendered-markdown view of a URL via Jina Reader.
// Kept as an interface so tests can substitute a fake without hitting the
// network, matching the teacher's DI style for external collaborators.
type JinaClient interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// Fetcher is the domain-aware web fetcher of spec.md §4.3. It implements
// the citation.Fetcher interface so the citation subsystem can reuse it for
// context fetching without importing this package's concrete type.
type Fetcher struct {
	HTTP   *httpClient
	Jina   JinaClient
	Pacer  *ratelimit.AustLIIPacer
	Logger *audit.Logger
}

// Config bundles the knobs needed to build a Fetcher, per spec.md §6.
type Config struct {
	UserAgent      string
	CacheDir       string
	BypassCache    bool
	JinaAPIKey     string
	MaxRedirects   int
	MaxConcurrent  int
	AustLIIMinGap  time.Duration
	AustLIIMaxGap  time.Duration
	GenericTimeout time.Duration
}

// NewFetcher constructs a Fetcher wired to an on-disk HTTP cache and the
// shared AustLII pacer, per spec.md §4.3 and §5.
func NewFetcher(cfg Config, logger *audit.Logger) *Fetcher {
	min, max := cfg.AustLIIMinGap, cfg.AustLIIMaxGap
	if min <= 0 {
		min = 2000 * time.Millisecond
	}
	if max <= min {
		max = 3000 * time.Millisecond
	}
	var httpCache *cache.HTTPCache
	if cfg.CacheDir != "" {
		httpCache = &cache.HTTPCache{Dir: cfg.CacheDir}
	}
	timeout := cfg.GenericTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &httpClient{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       3,
		PerRequestTimeout: timeout,
		Cache:             httpCache,
		BypassCache:       cfg.BypassCache,
		RedirectMaxHops:   cfg.MaxRedirects,
		MaxConcurrent:     cfg.MaxConcurrent,
	}
	return &Fetcher{
		HTTP:   client,
		Jina:   newJinaClient(cfg.JinaAPIKey),
		Pacer:  ratelimit.NewAustLIIPacer(min, max),
		Logger: logger,
	}
}

// Fetch routes rawURL per spec.md §4.3's ordered rules and returns
// extracted text content, emitting a fetch_attempt audit record
// regardless of outcome.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	start := time.Now()
	text, method, status, err := f.route(ctx, rawURL, timeout)
	f.emitAttempt(rawURL, method, status, text, err, time.Since(start))
	return text, err
}

// CheckURL issues a GET against rawURL and returns only its HTTP status,
// implementing citation.URLChecker for the AustLII direct-URL verification
// path of spec.md §4.2/§6. HEAD is deliberately never used: AustLII blocks
// it for this path, so the response body is read but not returned (a 200
// body is still stored in the HTTP cache when one is configured).
func (f *Fetcher) CheckURL(ctx context.Context, rawURL string) (int, error) {
	resp, err := f.HTTP.Get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	return resp.Status, nil
}

func (f *Fetcher) route(ctx context.Context, rawURL string, timeout time.Duration) (content, method string, status int, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil || u.Scheme == "" || !isHTTPScheme(u) {
		return f.fetchLocal(rawURL)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case strings.HasSuffix(host, "jade.io"):
		return f.fetchJade(ctx, u, timeout)
	case strings.HasSuffix(host, "austlii.edu.au"):
		return f.fetchAustLII(ctx, rawURL, timeout)
	case strings.HasSuffix(host, "gov.au") || strings.Contains(host, "legislation."):
		return f.fetchGov(ctx, rawURL, timeout)
	default:
		return f.fetchGeneric(ctx, rawURL, timeout)
	}
}

func (f *Fetcher) fetchLocal(path string) (string, string, int, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		return "", "local", 0, fmt.Errorf("local file not found: %w", statErr)
	}
	if info.IsDir() {
		return "", "local", 0, fmt.Errorf("local path is a directory: %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "local", 0, fmt.Errorf("read local file: %w", err)
	}
	if looksLikePDF(raw) {
		extracted, err := extractPDFText(raw, path)
		if err != nil {
			return "", "local", 0, err
		}
		return extracted, "local", 200, nil
	}
	return string(raw), "local", 200, nil
}

func (f *Fetcher) fetchJade(ctx context.Context, u *url.URL, timeout time.Duration) (string, string, int, error) {
	host := strings.ToLower(u.Hostname())
	if host != "ndfv.jade.io" {
		return "", "jade_blocked", 0, fmt.Errorf("jade.io subdomain %q is blocked", host)
	}
	target := strings.TrimRight(u.String(), "/") + "/download"
	text, err := f.Jina.Fetch(ctx, target, timeout)
	if err != nil {
		return "", "jina", 0, err
	}
	return text, "jina", 200, nil
}

func (f *Fetcher) fetchAustLII(ctx context.Context, rawURL string, timeout time.Duration) (string, string, int, error) {
	if err := f.Pacer.Wait(ctx); err != nil {
		return "", "austlii", 0, err
	}
	resp, err := f.HTTP.Get(ctx, rawURL)
	f.Pacer.MarkDone()
	if err != nil {
		text, jinaErr := f.Jina.Fetch(ctx, rawURL, timeout)
		if jinaErr != nil {
			return "", "austlii", 0, err
		}
		return text, "austlii_jina_fallback", 200, nil
	}
	if looksLikePDF(resp.Body) {
		extracted, extractErr := extractPDFText(resp.Body, rawURL)
		if extractErr != nil {
			text, jinaErr := f.Jina.Fetch(ctx, rawURL, timeout)
			if jinaErr != nil {
				return "", "austlii", resp.Status, extractErr
			}
			return text, "austlii_jina_fallback", 200, nil
		}
		return extracted, "austlii", resp.Status, nil
	}
	doc := extract.FromHTML(resp.Body)
	return doc.Text, "austlii", resp.Status, nil
}

func (f *Fetcher) fetchGov(ctx context.Context, rawURL string, timeout time.Duration) (string, string, int, error) {
	resp, err := f.HTTP.Get(ctx, rawURL)
	if err != nil {
		text, jinaErr := f.Jina.Fetch(ctx, rawURL, timeout)
		if jinaErr != nil {
			return "", "gov", 0, err
		}
		return text, "gov_jina_fallback", 200, nil
	}
	body := resp.Body
	if strings.Contains(rawURL, "legislation.gov.au") && strings.Contains(rawURL, "/latest/text") {
		if link := findDocument1Link(body); link != "" {
			resolved := resolveRelative(rawURL, link)
			if resp2, err2 := f.HTTP.Get(ctx, resolved); err2 == nil {
				body = resp2.Body
			}
		}
	}
	if looksLikePDF(body) {
		extracted, extractErr := extractPDFText(body, rawURL)
		if extractErr != nil {
			text, jinaErr := f.Jina.Fetch(ctx, rawURL, timeout)
			if jinaErr != nil {
				return "", "gov", resp.Status, extractErr
			}
			return text, "gov_jina_fallback", 200, nil
		}
		return extracted, "gov", resp.Status, nil
	}
	doc := extract.FromHTML(body)
	if isGibberish(doc.Text) {
		text, jinaErr := f.Jina.Fetch(ctx, rawURL, timeout)
		if jinaErr != nil {
			return "", "gov", resp.Status, fmt.Errorf("extracted text looks like gibberish and jina fallback failed: %w", jinaErr)
		}
		return text, "gov_jina_fallback", 200, nil
	}
	return doc.Text, "gov", resp.Status, nil
}

func (f *Fetcher) fetchGeneric(ctx context.Context, rawURL string, timeout time.Duration) (string, string, int, error) {
	contentType, status, headErr := f.HTTP.Head(ctx, rawURL)
	if headErr == nil && isPDFContentType(contentType) {
		if resp, err := f.HTTP.Get(ctx, rawURL); err == nil {
			if extracted, err := extractPDFText(resp.Body, rawURL); err == nil {
				return extracted, "generic_pdf", resp.Status, nil
			}
		}
	}
	text, err := f.Jina.Fetch(ctx, rawURL, timeout)
	if err != nil {
		return "", "jina", status, err
	}
	return text, "jina", 200, nil
}

func isPDFContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "application/pdf")
}

func looksLikePDF(body []byte) bool {
	return len(body) >= 4 && string(body[:4]) == "%PDF"
}

func isGibberish(text string) bool {
	if len(text) < 100 {
		return true
	}
	return strings.Count(text, "\n") < 5
}

func findDocument1Link(body []byte) string {
	html := string(body)
	idx := strings.Index(html, "document_1.html")
	if idx < 0 {
		return ""
	}
	start := strings.LastIndex(html[:idx], "\"")
	if start < 0 {
		start = strings.LastIndex(html[:idx], "'")
	}
	if start < 0 {
		return "document_1.html"
	}
	return html[start+1 : idx+len("document_1.html")]
}

func resolveRelative(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func (f *Fetcher) emitAttempt(url, method string, status int, content string, err error, elapsed time.Duration) {
	if f.Logger == nil {
		return
	}
	payload := audit.LogPayload{
		"url":          url,
		"method":       method,
		"success":      err == nil,
		"status":       status,
		"content_size": len(content),
		"elapsed_ms":   elapsed.Milliseconds(),
	}
	if err != nil {
		payload["error"] = err.Error()
	} else {
		payload["content"] = content
	}
	_, _ = f.Logger.SaveLog("fetch_attempt", payload)
}

// Package fetch implements the domain-aware web fetcher of spec.md §4.3:
// routing by URL (local file, jade.io, AustLII, gov.au/legislation,
// generic), PDF extraction, and Jina Reader fallback, all paced and
// rate-limited per spec.md §5.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hyperifyio/litassist-core/internal/cache"
)

// httpClient wraps http.Client with timeouts, bounded retry on transient
// errors, a redirect cap, and a per-instance concurrency gate. Adapted from
// the teacher's internal/fetch/fetch.go Client, generalized to accept any
// content type (the domain router above it decides how to interpret the
// body) rather than rejecting non-HTML responses outright.
type httpClient struct {
	HTTPClient  *http.Client
	UserAgent   string
	MaxAttempts int
	PerRequestTimeout time.Duration
	Cache       *cache.HTTPCache
	BypassCache bool

	RedirectMaxHops int
	MaxConcurrent   int

	limiter     chan struct{}
	limiterOnce sync.Once
}

// rawResponse is the minimal shape the router needs from a GET.
type rawResponse struct {
	Body        []byte
	ContentType string
	Status      int
}

func (c *httpClient) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context, user-agent, and bounded retry for
// transient (5xx / deadline) errors.
func (c *httpClient) Get(ctx context.Context, target string) (rawResponse, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, target); err == nil && meta != nil {
			etag, lastMod = meta.ETag, meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, newEtag, newLastMod, err := c.tryOnce(ctx, target, etag, lastMod)
		if err == nil {
			if c.Cache != nil && resp.Status == 200 {
				_ = c.Cache.Save(ctx, target, resp.ContentType, newEtag, newLastMod, resp.Body)
			}
			if resp.Status == 304 && c.Cache != nil {
				if cached, err := c.Cache.LoadBody(ctx, target); err == nil {
					resp.Body = cached
				}
			}
			return resp, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return rawResponse{}, err
		}
		lastErr = err
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return rawResponse{}, lastErr
}

func (c *httpClient) tryOnce(ctx context.Context, target, etag, lastMod string) (rawResponse, string, string, error) {
	c.acquire()
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return rawResponse{}, "", "", fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return rawResponse{}, "", "", fmt.Errorf("unsupported URL scheme: %q", target)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	httpClient := c.getHTTPClient()
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return rawResponse{}, "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return rawResponse{}, "", "", fmt.Errorf("server error: %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotModified {
		return rawResponse{Status: 304, ContentType: resp.Header.Get("Content-Type")}, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rawResponse{}, "", "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, "", "", fmt.Errorf("read body: %w", err)
	}
	return rawResponse{Body: b, ContentType: resp.Header.Get("Content-Type"), Status: resp.StatusCode},
		resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), nil
}

// Head issues a HEAD request, returning only the content type and status.
func (c *httpClient) Head(ctx context.Context, target string) (contentType string, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return "", 0, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return "", 0, fmt.Errorf("unsupported URL scheme: %q", target)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	httpClient := c.getHTTPClient()
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	return resp.Header.Get("Content-Type"), resp.StatusCode, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "server error:")
}

func (c *httpClient) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (c *httpClient) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *httpClient) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}

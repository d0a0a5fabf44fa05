package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// jinaClient requests the markdown rendering of a page via the Jina Reader
// proxy (r.jina.ai), per spec.md §4.3. An API key, when configured, is sent
// as a bearer token for a higher rate limit.
type jinaClient struct {
	APIKey     string
	HTTPClient *http.Client
}

func newJinaClient(apiKey string) *jinaClient {
	return &jinaClient{APIKey: apiKey, HTTPClient: &http.Client{}}
}

func (j *jinaClient) Fetch(ctx context.Context, targetURL string, timeout time.Duration) (string, error) {
	readerURL := "https://r.jina.ai/" + targetURL
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return "", fmt.Errorf("jina: new request: %w", err)
	}
	req.Header.Set("X-Return-Format", "markdown")
	if j.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.APIKey)
	}

	resp, err := j.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("jina: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("jina: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("jina: read body: %w", err)
	}
	return string(body), nil
}

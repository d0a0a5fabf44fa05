package citation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// GoogleCSE implements CSEClient against Google's Custom Search v1 REST
// endpoint, per spec.md §6's CSE protocol: q=<query>, cx=<cse_id>,
// num=<n>, success meaning an "items" list is present. Grounded on the
// teacher's internal/search/searxng.go (HTTP GET with query params, JSON
// decode into a trimmed result struct), generalized from SearxNG's shape
// to Google CSE's.
type GoogleCSE struct {
	APIKey     string
	BaseURL    string // defaults to https://www.googleapis.com/customsearch/v1
	HTTPClient *http.Client
	Timeout    time.Duration
}

type googleCSEResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Search issues one Google CSE v1 query, per spec.md §6.
func (g *GoogleCSE) Search(ctx context.Context, cseID, query string, num int) ([]SearchResult, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("google cse: missing api key")
	}
	if cseID == "" {
		return nil, fmt.Errorf("google cse: missing cx id")
	}
	if num <= 0 || num > 10 {
		num = 10
	}

	base := g.BaseURL
	if base == "" {
		base = "https://www.googleapis.com/customsearch/v1"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("google cse: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("key", g.APIKey)
	q.Set("cx", cseID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	u.RawQuery = q.Encode()

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google cse: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("google cse: status %d", resp.StatusCode)
	}

	var parsed googleCSEResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("google cse: decode response: %w", err)
	}
	out := make([]SearchResult, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		out = append(out, SearchResult{Title: it.Title, Snippet: it.Snippet, Link: it.Link})
	}
	return out, nil
}

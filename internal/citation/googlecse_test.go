package citation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestGoogleCSESearchParsesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Mabo v Queensland" {
			t.Fatalf("unexpected q param: %q", q.Get("q"))
		}
		if q.Get("cx") != "cse123" {
			t.Fatalf("unexpected cx param: %q", q.Get("cx"))
		}
		if q.Get("key") != "apikey" {
			t.Fatalf("unexpected key param: %q", q.Get("key"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"title": "Mabo v Queensland (No 2)", "snippet": "...", "link": "http://austlii.edu.au/mabo"},
			},
		})
	}))
	defer srv.Close()

	g := &GoogleCSE{APIKey: "apikey", BaseURL: srv.URL}
	results, err := g.Search(context.Background(), "cse123", "Mabo v Queensland", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Link != "http://austlii.edu.au/mabo" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestGoogleCSESearchNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	g := &GoogleCSE{APIKey: "apikey", BaseURL: srv.URL}
	results, err := g.Search(context.Background(), "cse123", "nonexistent citation", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}

func TestGoogleCSESearchMissingAPIKey(t *testing.T) {
	g := &GoogleCSE{}
	if _, err := g.Search(context.Background(), "cse123", "query", 5); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestGoogleCSESearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	g := &GoogleCSE{APIKey: "apikey", BaseURL: srv.URL}
	if _, err := g.Search(context.Background(), "cse123", "query", 5); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestGoogleCSEDefaultBaseURL(t *testing.T) {
	g := &GoogleCSE{APIKey: "apikey"}
	if g.BaseURL != "" {
		t.Fatalf("expected BaseURL to default lazily, not eagerly")
	}
	u, err := url.Parse("https://www.googleapis.com/customsearch/v1")
	if err != nil || u.Host != "www.googleapis.com" {
		t.Fatalf("sanity check on default host failed: %v", err)
	}
}

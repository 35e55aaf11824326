package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestAvailable(t *testing.T) {
	if New(Config{}).Available() {
		t.Fatal("client without api key should not be available")
	}
	if !New(Config{APIKey: "k"}).Available() {
		t.Fatal("client with api key should be available")
	}
}

func TestSearchTemplates(t *testing.T) {
	var gotPath, gotKey string
	var gotBody searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://example.com/nda", "title": "NDA Template", "text": strings.Repeat("x", 400), "score": 0.91},
				{"url": "https://example.com/msa", "title": "MSA Template", "text": "short", "score": 0.72},
			},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "secret", BaseURL: server.URL, NumResults: 3, Timeout: 5 * time.Second})
	results, err := client.SearchTemplates(context.Background(), "mutual nda", "nda")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotPath != "/search" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if gotBody.NumResults != 3 {
		t.Fatalf("unexpected numResults: %d", gotBody.NumResults)
	}
	if !strings.Contains(gotBody.Query, "mutual nda") || !strings.Contains(gotBody.Query, "nda") {
		t.Fatalf("unexpected search query: %q", gotBody.Query)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(results[0].Snippet) != snippetLimit {
		t.Fatalf("snippet should truncate to %d chars, got %d", snippetLimit, len(results[0].Snippet))
	}
	if results[1].Title != "MSA Template" || results[1].Score != 0.72 {
		t.Fatalf("unexpected result: %+v", results[1])
	}
}

func TestSearchTemplatesSnippetRuneSafe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://example.com", "title": "Vertrag", "text": strings.Repeat("ü", snippetLimit+50), "score": 0.5},
			},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "secret", BaseURL: server.URL})
	results, err := client.SearchTemplates(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	snippet := results[0].Snippet
	if !utf8.ValidString(snippet) {
		t.Fatalf("snippet splits a rune: %q", snippet)
	}
	if got := utf8.RuneCountInString(snippet); got != snippetLimit {
		t.Fatalf("expected %d-rune snippet, got %d", snippetLimit, got)
	}
}

func TestSearchTemplatesServerErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(Config{APIKey: "secret", BaseURL: server.URL})
	results, err := client.SearchTemplates(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("server errors should degrade to empty results, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestSearchTemplatesBadJSONDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := New(Config{APIKey: "secret", BaseURL: server.URL})
	results, err := client.SearchTemplates(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("decode failures should degrade to empty results, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestSearchTemplatesUnconfigured(t *testing.T) {
	if _, err := New(Config{}).SearchTemplates(context.Background(), "q", ""); err == nil {
		t.Fatal("unconfigured client should return an error")
	}
}

func TestBuildSearchQuery(t *testing.T) {
	got := buildSearchQuery("rental agreement", "lease")
	if !strings.Contains(got, "rental agreement") || !strings.Contains(got, "lease") {
		t.Fatalf("unexpected query: %q", got)
	}
	if !strings.Contains(got, "fillable OR variable OR customizable") {
		t.Fatalf("missing hint terms: %q", got)
	}

	got = buildSearchQuery("rental agreement", "unknown")
	if strings.Contains(got, "unknown") {
		t.Fatalf("unknown doc type should be dropped: %q", got)
	}
}

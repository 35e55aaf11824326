package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/match"
)

const snippetLimit = 300

// Client searches the Exa API for fillable document templates. Search
// failures are recovered locally: the caller always gets a (possibly empty)
// result list and a nil error unless the client is entirely unconfigured.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func New(cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// NewFromEnv builds a client from EXA_* environment variables.
func NewFromEnv() *Client {
	return New(LoadConfig())
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c != nil && c.cfg.APIKey != ""
}

type searchRequest struct {
	Query      string         `json:"query"`
	NumResults int            `json:"numResults"`
	Contents   searchContents `json:"contents"`
}

type searchContents struct {
	Text       searchText `json:"text"`
	Highlights bool       `json:"highlights"`
}

type searchText struct {
	MaxCharacters int `json:"maxCharacters"`
}

type searchResponse struct {
	Results []struct {
		URL   string  `json:"url"`
		Title string  `json:"title"`
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// SearchTemplates queries Exa for candidate document templates matching the
// user query and optional document type hint.
func (c *Client) SearchTemplates(ctx context.Context, query, docType string) ([]match.WebResult, error) {
	logger := common.Logger()
	if !c.Available() {
		return nil, fmt.Errorf("web search not configured")
	}
	searchQuery := buildSearchQuery(query, docType)
	logger.Info("websearch: querying exa", "query", searchQuery)

	payload, err := json.Marshal(searchRequest{
		Query:      searchQuery,
		NumResults: c.cfg.NumResults,
		Contents:   searchContents{Text: searchText{MaxCharacters: 1000}, Highlights: true},
	})
	if err != nil {
		return []match.WebResult{}, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/search", bytes.NewReader(payload))
	if err != nil {
		logger.Error("websearch: build request failed", "error", err)
		return []match.WebResult{}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("websearch: exa request failed", "error", err)
		return []match.WebResult{}, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error("websearch: exa returned error", "status", resp.StatusCode, "body", string(body))
		return []match.WebResult{}, nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.Error("websearch: failed to decode exa response", "error", err)
		return []match.WebResult{}, nil
	}
	results := make([]match.WebResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		snippet := r.Text
		if runes := []rune(snippet); len(runes) > snippetLimit {
			snippet = string(runes[:snippetLimit])
		}
		results = append(results, match.WebResult{URL: r.URL, Title: r.Title, Snippet: snippet, Score: r.Score})
	}
	logger.Info("websearch: exa results", "count", len(results))
	return results, nil
}

func buildSearchQuery(query, docType string) string {
	parts := []string{query, "legal template", "document template"}
	if trimmed := strings.TrimSpace(docType); trimmed != "" && !strings.EqualFold(trimmed, "unknown") {
		parts = append(parts, trimmed)
	}
	parts = append(parts, "fillable OR variable OR customizable")
	return strings.Join(parts, " ")
}

package match

import (
	"context"
	"fmt"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/template"
)

// DefaultConfidenceThreshold gates escalation to external web search.
const DefaultConfidenceThreshold = 0.7

// CandidateSummary is the reduced candidate view sent to the judgment
// oracle. Template bodies are never included.
type CandidateSummary struct {
	Title       string  `json:"title"`
	DocType     string  `json:"doc_type"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
}

// Judgment is the oracle's pick. BestIndex and Confidence are pointers so a
// missing field can fall back to its documented default.
type Judgment struct {
	BestIndex  *int
	Confidence *float64
	Reasoning  string
}

// Judge selects the best candidate for a query.
type Judge interface {
	MatchTemplates(ctx context.Context, query string, candidates []CandidateSummary) (Judgment, error)
}

// WebResult is one external search hit.
type WebResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Searcher looks up document templates on the open web. Available reports
// whether the collaborator is configured at all.
type Searcher interface {
	Available() bool
	SearchTemplates(ctx context.Context, query, docType string) ([]WebResult, error)
}

// Embedder generates the query vector used for ranking.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// Library lists the stored templates considered for matching.
type Library interface {
	ListTemplates(ctx context.Context) ([]template.Template, error)
}

// Alternative is a similarity-ranked runner-up.
type Alternative struct {
	Template   template.Template `json:"template"`
	Similarity float64           `json:"similarity_score"`
}

// Result is the full outcome of a match request.
type Result struct {
	BestMatch    *template.Template `json:"best_match"`
	Confidence   float64            `json:"confidence"`
	Reasoning    string             `json:"reasoning"`
	Alternatives []Alternative      `json:"alternatives"`
	WebResults   []WebResult        `json:"web_results"`
	Message      string             `json:"message"`
}

// Config carries the arbiter tunables.
type Config struct {
	TopK                int
	ConfidenceThreshold float64
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = TopK
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = DefaultConfidenceThreshold
	}
}

// Service ranks stored templates against a query and arbitrates the final
// pick through the judgment oracle, escalating to web search on low
// confidence.
type Service struct {
	embedder Embedder
	judge    Judge
	search   Searcher
	library  Library
	cfg      Config
}

func NewService(embedder Embedder, judge Judge, search Searcher, library Library, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{embedder: embedder, judge: judge, search: search, library: library, cfg: cfg}
}

// Match resolves a free-text query to the best-fitting stored template.
// Escalation to web search happens only when it was requested, the oracle's
// confidence falls below the threshold, and a search collaborator is
// configured; a missing search configuration degrades silently.
func (s *Service) Match(ctx context.Context, query string, escalate bool) (Result, error) {
	logger := common.Logger()
	templates, err := s.library.ListTemplates(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list templates: %w", err)
	}

	result := Result{Alternatives: []Alternative{}, WebResults: []WebResult{}}
	if len(templates) == 0 {
		result.Message = "No templates available in library"
		if escalate && s.searchConfigured() {
			logger.Info("match: no local templates, searching web")
			hits, searchErr := s.search.SearchTemplates(ctx, query, "")
			if searchErr != nil {
				logger.Warn("match: web search failed", "error", searchErr)
			} else if len(hits) > 0 {
				result.WebResults = hits
				result.Message = "No local templates found. Showing web search results."
			}
		}
		return result, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return Result{}, fmt.Errorf("embed query: empty response")
	}

	candidates := Rank(vectors[0], templates, s.cfg.TopK)
	if len(candidates) == 0 {
		result.Message = "No templates with embeddings available for ranking"
		return result, nil
	}

	summaries := make([]CandidateSummary, 0, len(candidates))
	for _, c := range candidates {
		summaries = append(summaries, CandidateSummary{
			Title:       c.Template.Title,
			DocType:     c.Template.DocType,
			Description: c.Template.Description,
			Similarity:  c.Similarity,
		})
	}

	judgment, err := s.judge.MatchTemplates(ctx, query, summaries)
	if err != nil {
		logger.Warn("match: judgment oracle failed, defaulting to top similarity", "error", err)
		judgment = Judgment{Reasoning: "Default selection"}
	}

	bestIndex := 0
	if judgment.BestIndex != nil && *judgment.BestIndex >= 0 && *judgment.BestIndex < len(candidates) {
		bestIndex = *judgment.BestIndex
	}
	confidence := 0.5
	if judgment.Confidence != nil {
		confidence = *judgment.Confidence
	}

	best := candidates[bestIndex].Template
	result.BestMatch = &best
	result.Confidence = confidence
	result.Reasoning = judgment.Reasoning
	for i, c := range candidates {
		if i == bestIndex || i < 1 || i > 3 {
			continue
		}
		result.Alternatives = append(result.Alternatives, Alternative{Template: c.Template, Similarity: c.Similarity})
	}

	if escalate && confidence < s.cfg.ConfidenceThreshold {
		if s.searchConfigured() {
			logger.Info("match: low confidence, escalating to web search", "confidence", confidence)
			hits, searchErr := s.search.SearchTemplates(ctx, query, best.DocType)
			if searchErr != nil {
				logger.Warn("match: web search failed", "error", searchErr)
			} else if len(hits) > 0 {
				result.WebResults = hits
				result.Message = fmt.Sprintf("Low confidence match (%.0f%%). Also showing web search results.", confidence*100)
			}
		} else {
			logger.Warn("match: low confidence but web search not configured", "confidence", confidence)
		}
	}
	return result, nil
}

func (s *Service) searchConfigured() bool {
	return s.search != nil && s.search.Available()
}

package template

import (
	"context"
	"strings"

	"github.com/lexdraft/lexdraft/internal/common"
)

// ExtractionOracle proposes variables for one window of document text. The
// known set carries everything discovered in earlier windows so the oracle
// can avoid re-proposing keys.
type ExtractionOracle interface {
	ExtractVariables(ctx context.Context, chunk string, known []Variable) (Extraction, error)
}

// ExtractorConfig controls the windowing applied before oracle calls.
type ExtractorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

func (c *ExtractorConfig) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = DefaultChunkOverlap
		if c.ChunkOverlap >= c.ChunkSize {
			c.ChunkOverlap = 0
		}
	}
}

// Extractor folds the extraction oracle over a document's windows,
// accumulating a deduplicated variable set.
type Extractor struct {
	oracle ExtractionOracle
	cfg    ExtractorConfig
}

func NewExtractor(oracle ExtractionOracle, cfg ExtractorConfig) *Extractor {
	cfg.applyDefaults()
	return &Extractor{oracle: oracle, cfg: cfg}
}

// Extract runs the per-window oracle calls sequentially. Variable keys are
// normalised to snake_case before dedup; the first occurrence of a key wins.
// Document metadata is taken from the first window only. A window whose
// oracle call fails contributes nothing but never discards variables
// accumulated from earlier windows.
func (e *Extractor) Extract(ctx context.Context, text string) (Extraction, error) {
	logger := common.Logger()
	chunks := Chunk(text, e.cfg.ChunkSize, e.cfg.ChunkOverlap)
	logger.Info("template: extracting variables", "chars", len(text), "windows", len(chunks))

	accumulated := Extraction{Metadata: Metadata{DocType: "unknown"}}
	seen := make(map[string]struct{})
	for i, chunk := range chunks {
		var known []Variable
		if i > 0 {
			known = accumulated.Variables
		}
		result, err := e.oracle.ExtractVariables(ctx, chunk, known)
		if err != nil {
			logger.Warn("template: window extraction failed", "window", i+1, "error", err)
			continue
		}
		for _, proposed := range result.Variables {
			key := ToSnakeCase(proposed.Key)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			proposed.Key = key
			accumulated.Variables = append(accumulated.Variables, normalizeVariable(proposed))
		}
		if i == 0 {
			accumulated.Metadata = result.Metadata
			if strings.TrimSpace(accumulated.Metadata.DocType) == "" {
				accumulated.Metadata.DocType = "unknown"
			}
		}
		logger.Debug("template: window processed", "window", i+1, "total_variables", len(accumulated.Variables))
	}
	return accumulated, nil
}

func normalizeVariable(v Variable) Variable {
	if strings.TrimSpace(v.Label) == "" {
		v.Label = KeyToLabel(v.Key)
	}
	if strings.TrimSpace(v.DataType) == "" {
		v.DataType = "text"
	}
	return v
}

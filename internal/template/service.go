package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lexdraft/lexdraft/internal/common"
)

// embeddingSample bounds how much of the document feeds the embedding call.
const embeddingSample = 1000

// Embedder generates fixed-length vectors for text.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	ExtractText(path, filename string) (string, error)
}

// Store persists templates together with their variable sets.
type Store interface {
	SaveTemplate(ctx context.Context, tpl Template) error
	TemplateByID(ctx context.Context, id string) (Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
}

// Ingestor drives a document upload through text extraction, chunked
// variable discovery, markdown template creation, and embedding.
type Ingestor struct {
	extractor    *Extractor
	embedder     Embedder
	docs         TextExtractor
	store        Store
	templatesDir string
}

func NewIngestor(extractor *Extractor, embedder Embedder, docs TextExtractor, store Store, templatesDir string) *Ingestor {
	return &Ingestor{
		extractor:    extractor,
		embedder:     embedder,
		docs:         docs,
		store:        store,
		templatesDir: templatesDir,
	}
}

// IngestResult summarises a newly ingested template.
type IngestResult struct {
	TemplateID    string     `json:"template_id"`
	Title         string     `json:"title"`
	DocType       string     `json:"doc_type"`
	Jurisdiction  string     `json:"jurisdiction"`
	Variables     []Variable `json:"variables"`
	VariableCount int        `json:"variable_count"`
}

// Ingest processes an uploaded document into a persisted template. The
// resulting markdown template file is written under the templates directory
// and the stored record carries the embedding of the document's opening
// text.
func (s *Ingestor) Ingest(ctx context.Context, filePath, filename string) (IngestResult, error) {
	logger := common.Logger()
	logger.Info("template: processing document", "filename", filename)

	text, err := s.docs.ExtractText(filePath, filename)
	if err != nil {
		return IngestResult{}, err
	}
	logger.Info("template: text extracted", "chars", len(text))

	extraction, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return IngestResult{}, fmt.Errorf("extract variables: %w", err)
	}

	templateID := uuid.NewString()
	title := titleFromFilename(filename)
	tpl := Template{
		ID:           templateID,
		Title:        title,
		Description:  fmt.Sprintf("Template generated from %s", filename),
		DocType:      extraction.Metadata.DocType,
		Jurisdiction: extraction.Metadata.Jurisdiction,
		Tags:         extraction.Metadata.Tags,
		Variables:    extraction.Variables,
		Body:         RewritePlaceholders(text, extraction.Variables),
	}

	markdown, err := RenderMarkdown(tpl)
	if err != nil {
		return IngestResult{}, err
	}
	if err := os.MkdirAll(s.templatesDir, 0o755); err != nil {
		return IngestResult{}, fmt.Errorf("prepare templates dir: %w", err)
	}
	tpl.FilePath = filepath.Join(s.templatesDir, templateID+".md")
	if err := os.WriteFile(tpl.FilePath, []byte(markdown), 0o644); err != nil {
		return IngestResult{}, fmt.Errorf("write template file: %w", err)
	}

	logger.Info("template: generating embedding", "template_id", templateID)
	vectors, err := s.embedder.Embed(ctx, []string{truncate(text, embeddingSample)})
	if err != nil {
		return IngestResult{}, fmt.Errorf("generate embedding: %w", err)
	}
	if len(vectors) > 0 {
		tpl.Embedding = vectors[0]
	}

	if err := s.store.SaveTemplate(ctx, tpl); err != nil {
		return IngestResult{}, fmt.Errorf("persist template: %w", err)
	}
	logger.Info("template: ingestion complete", "template_id", templateID, "variables", len(tpl.Variables))
	return IngestResult{
		TemplateID:    templateID,
		Title:         title,
		DocType:       tpl.DocType,
		Jurisdiction:  tpl.Jurisdiction,
		Variables:     tpl.Variables,
		VariableCount: len(tpl.Variables),
	}, nil
}

func titleFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return titleCaser.String(strings.ReplaceAll(base, "_", " "))
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

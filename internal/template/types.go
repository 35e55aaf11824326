package template

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a template identifier is unknown to the store.
var ErrNotFound = errors.New("template not found")

// Variable is a single fillable slot within a template. Keys are snake_case
// and unique within their template.
type Variable struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Example     string `json:"example"`
	DataType    string `json:"data_type"`
	Required    bool   `json:"is_required"`
	Default     string `json:"default_value,omitempty"`
}

// Question is the user-facing rendering of a variable produced by the
// question oracle or the deterministic fallback.
type Question struct {
	VariableKey string `json:"variable_key"`
	Question    string `json:"question"`
	Placeholder string `json:"placeholder"`
	HelpText    string `json:"help_text"`
}

// Template is a reusable document skeleton with named fill-in points. The
// embedding and variable set are fixed at ingestion.
type Template struct {
	ID           string     `json:"template_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DocType      string     `json:"doc_type"`
	Jurisdiction string     `json:"jurisdiction"`
	FilePath     string     `json:"file_path,omitempty"`
	Tags         []string   `json:"similarity_tags,omitempty"`
	Embedding    []float32  `json:"-"`
	Variables    []Variable `json:"variables,omitempty"`
	Body         string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// Metadata captures the document-level fields reported by the extraction
// oracle for the first window of a document.
type Metadata struct {
	DocType      string   `json:"doc_type"`
	Jurisdiction string   `json:"jurisdiction"`
	Tags         []string `json:"tags"`
}

// Extraction bundles the variables and metadata proposed for one window, or
// the accumulated result of a full document pass.
type Extraction struct {
	Variables []Variable `json:"variables"`
	Metadata  Metadata   `json:"metadata"`
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexdraft/lexdraft/internal/draft"
	"github.com/lexdraft/lexdraft/internal/template"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenAppliesWALJournalMode(t *testing.T) {
	store := openTestStore(t)

	var mode string
	if err := store.db.Get(&mode, `PRAGMA journal_mode`); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tpl := template.Template{
		ID:           "tpl-1",
		Title:        "Mutual NDA",
		Description:  "Two-way confidentiality",
		DocType:      "nda",
		Jurisdiction: "California",
		FilePath:     "/templates/tpl-1.md",
		Tags:         []string{"nda", "confidentiality"},
		Embedding:    []float32{0.25, -0.5, 1},
		Variables: []template.Variable{
			{Key: "party_a", Label: "Party A", Description: "First party", Example: "Acme", DataType: "text", Required: true},
			{Key: "term_months", Label: "Term", DataType: "number", Default: "12"},
		},
		Body: "Between {{party_a}}.",
	}
	if err := store.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.TemplateByID(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Title != tpl.Title || loaded.DocType != tpl.DocType || loaded.Jurisdiction != tpl.Jurisdiction {
		t.Fatalf("metadata mismatch: %+v", loaded)
	}
	if loaded.Body != tpl.Body || loaded.FilePath != tpl.FilePath {
		t.Fatalf("body mismatch: %+v", loaded)
	}
	if len(loaded.Tags) != 2 || loaded.Tags[1] != "confidentiality" {
		t.Fatalf("tags mismatch: %v", loaded.Tags)
	}
	if len(loaded.Embedding) != 3 || loaded.Embedding[1] != -0.5 {
		t.Fatalf("embedding mismatch: %v", loaded.Embedding)
	}
	if len(loaded.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(loaded.Variables))
	}
	if loaded.Variables[0].Key != "party_a" || !loaded.Variables[0].Required {
		t.Fatalf("variable order or flags lost: %+v", loaded.Variables[0])
	}
	if loaded.Variables[1].Default != "12" || loaded.Variables[1].Required {
		t.Fatalf("variable mismatch: %+v", loaded.Variables[1])
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be set")
	}
}

func TestTemplateByIDNotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.TemplateByID(context.Background(), "missing"); !errors.Is(err, template.ErrNotFound) {
		t.Fatalf("expected template.ErrNotFound, got %v", err)
	}
}

func TestListTemplatesOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if err := store.SaveTemplate(ctx, template.Template{ID: id, Title: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	templates, err := store.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(templates) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(templates))
	}
	if templates[0].ID != "first" || templates[2].ID != "third" {
		t.Fatalf("unexpected order: %s, %s, %s", templates[0].ID, templates[1].ID, templates[2].ID)
	}
}

func TestInstanceRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inst := draft.Instance{
		ID:         "inst-1",
		TemplateID: "tpl-1",
		Query:      "nda with acme",
		Answers:    map[string]string{"party_a": "Acme"},
		Status:     draft.StatusPending,
	}
	if err := store.InsertInstance(ctx, inst); err != nil {
		t.Fatalf("insert: %v", err)
	}

	loaded, err := store.InstanceByID(ctx, "inst-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.TemplateID != "tpl-1" || loaded.Query != "nda with acme" {
		t.Fatalf("fields mismatch: %+v", loaded)
	}
	if loaded.Status != draft.StatusPending {
		t.Fatalf("unexpected status: %q", loaded.Status)
	}
	if loaded.Answers["party_a"] != "Acme" {
		t.Fatalf("answers mismatch: %v", loaded.Answers)
	}

	loaded.Answers["party_b"] = "Globex"
	loaded.Status = draft.StatusCompleted
	loaded.DraftMarkdown = "Between Acme and Globex."
	loaded.ArtifactPath = "/exports/inst-1.docx"
	if err := store.SaveInstance(ctx, loaded); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := store.InstanceByID(ctx, "inst-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != draft.StatusCompleted || reloaded.DraftMarkdown == "" || reloaded.ArtifactPath == "" {
		t.Fatalf("updates lost: %+v", reloaded)
	}
	if len(reloaded.Answers) != 2 {
		t.Fatalf("answers lost: %v", reloaded.Answers)
	}
}

func TestInstanceNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.InstanceByID(ctx, "missing"); !errors.Is(err, draft.ErrNotFound) {
		t.Fatalf("expected draft.ErrNotFound, got %v", err)
	}
	if err := store.SaveInstance(ctx, draft.Instance{ID: "missing"}); !errors.Is(err, draft.ErrNotFound) {
		t.Fatalf("save of unknown instance should report draft.ErrNotFound, got %v", err)
	}
}

func TestInsertInstanceNilAnswers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InsertInstance(ctx, draft.Instance{ID: "inst-nil", TemplateID: "tpl", Status: draft.StatusPending}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	loaded, err := store.InstanceByID(ctx, "inst-nil")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Answers == nil || len(loaded.Answers) != 0 {
		t.Fatalf("expected empty answers map, got %v", loaded.Answers)
	}
}

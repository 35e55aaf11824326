package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexdraft/lexdraft/internal/draft"
	"github.com/lexdraft/lexdraft/internal/template"
)

type templateRow struct {
	ID           int64  `db:"id"`
	TemplateID   string `db:"template_id"`
	Title        string `db:"title"`
	Description  string `db:"description"`
	DocType      string `db:"doc_type"`
	Jurisdiction string `db:"jurisdiction"`
	FilePath     string `db:"file_path"`
	Tags         string `db:"tags"`
	Embedding    string `db:"embedding"`
	BodyMD       string `db:"body_md"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

type variableRow struct {
	ID           int64  `db:"id"`
	TemplateID   int64  `db:"template_id"`
	Key          string `db:"key"`
	Label        string `db:"label"`
	Description  string `db:"description"`
	Example      string `db:"example"`
	DataType     string `db:"data_type"`
	IsRequired   int    `db:"is_required"`
	DefaultValue string `db:"default_value"`
	Position     int    `db:"position"`
}

type instanceRow struct {
	ID           int64  `db:"id"`
	InstanceID   string `db:"instance_id"`
	TemplateID   string `db:"template_id"`
	Query        string `db:"query"`
	Answers      string `db:"answers"`
	DraftMD      string `db:"draft_md"`
	ArtifactPath string `db:"artifact_path"`
	Status       string `db:"status"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

// SaveTemplate persists a template and its variable set inside one
// transaction. JSON serialisation of the embedding and tags happens only at
// this boundary.
func (s *Store) SaveTemplate(ctx context.Context, tpl template.Template) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not initialised")
	}
	embedding, err := marshalEmbedding(tpl.Embedding)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(append([]string{}, tpl.Tags...))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO templates(template_id, title, description, doc_type, jurisdiction, file_path, tags, embedding, body_md, created_at, updated_at)
                        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tpl.ID, tpl.Title, tpl.Description, tpl.DocType, tpl.Jurisdiction, tpl.FilePath, string(tags), embedding, tpl.Body, now, now)
		if err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("template row id: %w", err)
		}
		for position, v := range tpl.Variables {
			required := 0
			if v.Required {
				required = 1
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO template_variables(template_id, key, label, description, example, data_type, is_required, default_value, position)
                                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rowID, v.Key, v.Label, v.Description, v.Example, v.DataType, required, v.Default, position); err != nil {
				return fmt.Errorf("insert variable %q: %w", v.Key, err)
			}
		}
		return nil
	})
}

// TemplateByID loads a template with its variables by opaque identifier.
func (s *Store) TemplateByID(ctx context.Context, id string) (template.Template, error) {
	if s == nil || s.db == nil {
		return template.Template{}, errors.New("sqlite store not initialised")
	}
	var row templateRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM templates WHERE template_id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return template.Template{}, template.ErrNotFound
		}
		return template.Template{}, fmt.Errorf("select template: %w", err)
	}
	return s.hydrateTemplate(ctx, row)
}

// ListTemplates returns every stored template, oldest first.
func (s *Store) ListTemplates(ctx context.Context) ([]template.Template, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite store not initialised")
	}
	rows := []templateRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM templates ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select templates: %w", err)
	}
	templates := make([]template.Template, 0, len(rows))
	for _, row := range rows {
		tpl, err := s.hydrateTemplate(ctx, row)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

func (s *Store) hydrateTemplate(ctx context.Context, row templateRow) (template.Template, error) {
	tpl := template.Template{
		ID:           row.TemplateID,
		Title:        row.Title,
		Description:  row.Description,
		DocType:      row.DocType,
		Jurisdiction: row.Jurisdiction,
		FilePath:     row.FilePath,
		Body:         row.BodyMD,
		CreatedAt:    parseTime(row.CreatedAt),
		UpdatedAt:    parseTime(row.UpdatedAt),
	}
	if row.Tags != "" {
		if err := json.Unmarshal([]byte(row.Tags), &tpl.Tags); err != nil {
			return template.Template{}, fmt.Errorf("parse tags: %w", err)
		}
	}
	if row.Embedding != "" {
		if err := json.Unmarshal([]byte(row.Embedding), &tpl.Embedding); err != nil {
			return template.Template{}, fmt.Errorf("parse embedding: %w", err)
		}
	}
	varRows := []variableRow{}
	if err := s.db.SelectContext(ctx, &varRows, `SELECT * FROM template_variables WHERE template_id = ? ORDER BY position, id`, row.ID); err != nil {
		return template.Template{}, fmt.Errorf("select variables: %w", err)
	}
	for _, v := range varRows {
		tpl.Variables = append(tpl.Variables, template.Variable{
			Key:         v.Key,
			Label:       v.Label,
			Description: v.Description,
			Example:     v.Example,
			DataType:    v.DataType,
			Required:    v.IsRequired != 0,
			Default:     v.DefaultValue,
		})
	}
	return tpl, nil
}

// InsertInstance persists a newly created draft instance.
func (s *Store) InsertInstance(ctx context.Context, inst draft.Instance) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not initialised")
	}
	answers, err := marshalAnswers(inst.Answers)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO draft_instances(instance_id, template_id, query, answers, draft_md, artifact_path, status, created_at, updated_at)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID, inst.TemplateID, inst.Query, answers, inst.DraftMarkdown, inst.ArtifactPath, string(inst.Status), now, now); err != nil {
		return fmt.Errorf("insert instance: %w", err)
	}
	return nil
}

// InstanceByID loads a draft instance by opaque identifier.
func (s *Store) InstanceByID(ctx context.Context, id string) (draft.Instance, error) {
	if s == nil || s.db == nil {
		return draft.Instance{}, errors.New("sqlite store not initialised")
	}
	var row instanceRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM draft_instances WHERE instance_id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return draft.Instance{}, draft.ErrNotFound
		}
		return draft.Instance{}, fmt.Errorf("select instance: %w", err)
	}
	inst := draft.Instance{
		ID:            row.InstanceID,
		TemplateID:    row.TemplateID,
		Query:         row.Query,
		Answers:       map[string]string{},
		Status:        draft.Status(row.Status),
		DraftMarkdown: row.DraftMD,
		ArtifactPath:  row.ArtifactPath,
		CreatedAt:     parseTime(row.CreatedAt),
		UpdatedAt:     parseTime(row.UpdatedAt),
	}
	if row.Answers != "" {
		if err := json.Unmarshal([]byte(row.Answers), &inst.Answers); err != nil {
			return draft.Instance{}, fmt.Errorf("parse answers: %w", err)
		}
	}
	return inst, nil
}

// SaveInstance writes back the mutable fields of a draft instance.
func (s *Store) SaveInstance(ctx context.Context, inst draft.Instance) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not initialised")
	}
	answers, err := marshalAnswers(inst.Answers)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `UPDATE draft_instances SET answers = ?, status = ?, draft_md = ?, artifact_path = ?, updated_at = ? WHERE instance_id = ?`,
		answers, string(inst.Status), inst.DraftMarkdown, inst.ArtifactPath, now, inst.ID)
	if err != nil {
		return fmt.Errorf("update instance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update instance result: %w", err)
	}
	if affected == 0 {
		return draft.ErrNotFound
	}
	return nil
}

func marshalEmbedding(embedding []float32) (string, error) {
	if len(embedding) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(embedding)
	if err != nil {
		return "", fmt.Errorf("marshal embedding: %w", err)
	}
	return string(encoded), nil
}

func marshalAnswers(answers map[string]string) (string, error) {
	if answers == nil {
		answers = map[string]string{}
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	return string(encoded), nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

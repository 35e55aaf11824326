package draft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/template"
)

// ErrNotFound is returned when an instance identifier is unknown.
var ErrNotFound = errors.New("draft instance not found")

// Status is the lifecycle state of a draft instance.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Instance is one user's fill-in session against a template. The answer map
// need not cover every template variable at any point in time.
type Instance struct {
	ID            string            `json:"instance_id"`
	TemplateID    string            `json:"template_id"`
	Query         string            `json:"query"`
	Answers       map[string]string `json:"answers"`
	Status        Status            `json:"status"`
	DraftMarkdown string            `json:"draft_md,omitempty"`
	ArtifactPath  string            `json:"draft_artifact_path,omitempty"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty"`
}

// Prefiller extracts variable values already implied by the user's query.
type Prefiller interface {
	PrefillVariables(ctx context.Context, query string, variables []template.Variable) (map[string]string, error)
}

// QuestionOracle renders variables into user-facing questions.
type QuestionOracle interface {
	GenerateQuestions(ctx context.Context, variables []template.Variable) ([]template.Question, error)
}

// Renderer turns a finished markdown draft into a binary artifact and
// reports the artifact path.
type Renderer interface {
	RenderArtifact(ctx context.Context, markdown, instanceID string) (string, error)
}

// Store persists draft instances and resolves their templates.
type Store interface {
	TemplateByID(ctx context.Context, id string) (template.Template, error)
	InsertInstance(ctx context.Context, inst Instance) error
	InstanceByID(ctx context.Context, id string) (Instance, error)
	SaveInstance(ctx context.Context, inst Instance) error
}

// Service owns the draft-instance state machine: creation with prefilled
// answers, answer merging, and final rendering.
type Service struct {
	store     Store
	prefiller Prefiller
	questions QuestionOracle
	renderer  Renderer
}

func NewService(store Store, prefiller Prefiller, questions QuestionOracle, renderer Renderer) *Service {
	return &Service{store: store, prefiller: prefiller, questions: questions, renderer: renderer}
}

// Creation is the outcome of starting a new draft session.
type Creation struct {
	InstanceID string              `json:"instance_id"`
	Template   template.Template   `json:"template"`
	Questions  []template.Question `json:"questions"`
	Prefilled  map[string]string   `json:"prefilled_answers"`
}

// Create validates the template, prefills answers implied by the query, and
// persists a new pending instance. Oracle failures degrade: prefill to an
// empty map, question generation to the deterministic fallback.
func (s *Service) Create(ctx context.Context, templateID, query string) (Creation, error) {
	logger := common.Logger()
	tpl, err := s.store.TemplateByID(ctx, templateID)
	if err != nil {
		return Creation{}, err
	}

	prefilled, err := s.prefiller.PrefillVariables(ctx, query, tpl.Variables)
	if err != nil {
		logger.Warn("draft: prefill failed, starting with empty answers", "error", err)
		prefilled = map[string]string{}
	}
	if prefilled == nil {
		prefilled = map[string]string{}
	}

	inst := Instance{
		ID:         uuid.NewString(),
		TemplateID: tpl.ID,
		Query:      query,
		Answers:    prefilled,
		Status:     StatusPending,
	}
	if err := s.store.InsertInstance(ctx, inst); err != nil {
		return Creation{}, fmt.Errorf("persist instance: %w", err)
	}

	questions, err := s.questions.GenerateQuestions(ctx, tpl.Variables)
	if err != nil {
		logger.Warn("draft: question generation failed, using fallback", "error", err)
		questions = template.FallbackQuestions(tpl.Variables)
	}
	logger.Info("draft: instance created", "instance_id", inst.ID, "template_id", tpl.ID, "prefilled", len(prefilled))
	return Creation{InstanceID: inst.ID, Template: tpl, Questions: questions, Prefilled: prefilled}, nil
}

// UpdateAnswers shallow-merges the partial answer map into the instance:
// keys present overwrite, keys absent are preserved. The instance always
// transitions to in_progress, including from completed; re-editing a
// finished draft reopens it.
func (s *Service) UpdateAnswers(ctx context.Context, instanceID string, partial map[string]string) (Instance, error) {
	inst, err := s.store.InstanceByID(ctx, instanceID)
	if err != nil {
		return Instance{}, err
	}
	if inst.Answers == nil {
		inst.Answers = make(map[string]string, len(partial))
	}
	for key, value := range partial {
		inst.Answers[key] = value
	}
	inst.Status = StatusInProgress
	if err := s.store.SaveInstance(ctx, inst); err != nil {
		return Instance{}, fmt.Errorf("persist answers: %w", err)
	}
	return inst, nil
}

// Rendered is the outcome of generating a draft.
type Rendered struct {
	InstanceID    string `json:"instance_id"`
	DraftMarkdown string `json:"draft_md"`
	ArtifactPath  string `json:"draft_artifact_path"`
	Status        Status `json:"status"`
}

// Generate substitutes the current answers into the template body, marks the
// instance completed, and requests the binary artifact. Unanswered {{key}}
// tokens are left intact. Regenerating a completed instance overwrites the
// stored draft.
func (s *Service) Generate(ctx context.Context, instanceID string) (Rendered, error) {
	logger := common.Logger()
	inst, err := s.store.InstanceByID(ctx, instanceID)
	if err != nil {
		return Rendered{}, err
	}
	tpl, err := s.store.TemplateByID(ctx, inst.TemplateID)
	if err != nil {
		return Rendered{}, err
	}

	body := tpl.Body
	if strings.TrimSpace(tpl.FilePath) != "" {
		content, readErr := os.ReadFile(tpl.FilePath)
		if readErr != nil {
			return Rendered{}, fmt.Errorf("read template file: %w", readErr)
		}
		body = string(content)
	}

	inst.DraftMarkdown = Render(body, inst.Answers)
	inst.Status = StatusCompleted

	artifactPath, err := s.renderer.RenderArtifact(ctx, inst.DraftMarkdown, inst.ID)
	if err != nil {
		return Rendered{}, fmt.Errorf("render artifact: %w", err)
	}
	inst.ArtifactPath = artifactPath

	if err := s.store.SaveInstance(ctx, inst); err != nil {
		return Rendered{}, fmt.Errorf("persist draft: %w", err)
	}
	logger.Info("draft: generated", "instance_id", inst.ID, "artifact", artifactPath)
	return Rendered{InstanceID: inst.ID, DraftMarkdown: inst.DraftMarkdown, ArtifactPath: artifactPath, Status: inst.Status}, nil
}

// Get is a pure lookup.
func (s *Service) Get(ctx context.Context, instanceID string) (Instance, error) {
	return s.store.InstanceByID(ctx, instanceID)
}

// Render substitutes answer values for {{key}} tokens. Keys missing from the
// answer map leave their tokens unrendered rather than blank-filled.
func Render(body string, answers map[string]string) string {
	for key, value := range answers {
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	return body
}

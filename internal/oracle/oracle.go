package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/llm"
	"github.com/lexdraft/lexdraft/internal/match"
	"github.com/lexdraft/lexdraft/internal/template"
)

// Oracle adapts the chat provider into the structured extraction, matching,
// question, and prefill collaborators the pipeline consumes. Responses that
// fail to parse recover to documented defaults instead of failing the call.
type Oracle struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Oracle {
	return &Oracle{provider: provider}
}

type extractionResponse struct {
	Variables []struct {
		Key         string `json:"key"`
		Label       string `json:"label"`
		Description string `json:"description"`
		Example     string `json:"example"`
		DataType    string `json:"data_type"`
		Required    *bool  `json:"is_required"`
		Default     string `json:"default_value"`
	} `json:"variables"`
	DocType      string   `json:"doc_type"`
	Jurisdiction string   `json:"jurisdiction"`
	Tags         []string `json:"tags"`
}

// ExtractVariables proposes fillable variables for one window of document
// text. Known variables from earlier windows are included in the prompt so
// the model avoids re-proposing keys. A transport failure is returned to the
// caller; an unparseable response degrades to an empty window result.
func (o *Oracle) ExtractVariables(ctx context.Context, chunk string, known []template.Variable) (template.Extraction, error) {
	logger := common.Logger()
	var knownContext string
	if len(known) > 0 {
		encoded, err := json.MarshalIndent(known, "", "  ")
		if err == nil {
			knownContext = "\n\nExisting variables to reuse:\n" + string(encoded)
		}
		logger.Debug("oracle: reusing known variables", "count", len(known))
	}

	prompt := fmt.Sprintf(`You are a legal document templating assistant. Extract variables from the following legal document text.

Extract:
1. Variables that should be filled in (names, dates, amounts, addresses, etc.)
2. Metadata (document type, jurisdiction if mentioned)
3. Tags for categorization

Do NOT variable-ize:
- Statutory text or legal citations
- Standard legal language
- Section headings
%s

Document text:
%s

Return a JSON object with this structure:
{
    "variables": [
        {
            "key": "snake_case_key",
            "label": "Human-friendly label",
            "description": "What this variable represents",
            "example": "Sample value for guidance",
            "data_type": "text|number|date|email",
            "is_required": true
        }
    ],
    "doc_type": "type of document",
    "jurisdiction": "jurisdiction if mentioned",
    "tags": ["tag1", "tag2"]
}

IMPORTANT: Variable keys MUST be snake_case (lowercase with underscores).

Return ONLY valid JSON, no other text.`, knownContext, chunk)

	raw, err := o.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return template.Extraction{}, fmt.Errorf("extraction chat: %w", err)
	}
	var parsed extractionResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		logger.Error("oracle: failed to parse extraction response", "error", err)
		return template.Extraction{Metadata: template.Metadata{DocType: "unknown"}}, nil
	}
	result := template.Extraction{
		Metadata: template.Metadata{DocType: parsed.DocType, Jurisdiction: parsed.Jurisdiction, Tags: parsed.Tags},
	}
	for _, v := range parsed.Variables {
		required := true
		if v.Required != nil {
			required = *v.Required
		}
		result.Variables = append(result.Variables, template.Variable{
			Key:         v.Key,
			Label:       v.Label,
			Description: v.Description,
			Example:     v.Example,
			DataType:    v.DataType,
			Required:    required,
			Default:     v.Default,
		})
	}
	logger.Debug("oracle: extracted variables", "count", len(result.Variables))
	return result, nil
}

type matchResponse struct {
	BestMatchIndex *int     `json:"best_match_index"`
	Confidence     *float64 `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
}

// MatchTemplates asks the model to pick the best candidate. Any failure,
// transport or parse, degrades to the default selection of the top
// similarity candidate at confidence 0.5.
func (o *Oracle) MatchTemplates(ctx context.Context, query string, candidates []match.CandidateSummary) (match.Judgment, error) {
	logger := common.Logger()
	var sb strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&sb, "Template %d:\n  Title: %s\n  Type: %s\n  Description: %s\n\n", i+1, c.Title, c.DocType, c.Description)
	}
	prompt := fmt.Sprintf(`Given a user query and template candidates, identify the best matching template.

User query: %q

Candidates:
%s
Return JSON:
{
    "best_match_index": 0,
    "confidence": 0.95,
    "reasoning": "Why this template matches"
}

Return ONLY valid JSON.`, query, sb.String())

	raw, err := o.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.Error("oracle: template matching failed", "error", err)
		return defaultJudgment(), nil
	}
	var parsed matchResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		logger.Error("oracle: failed to parse matching response", "error", err)
		return defaultJudgment(), nil
	}
	return match.Judgment{BestIndex: parsed.BestMatchIndex, Confidence: parsed.Confidence, Reasoning: parsed.Reasoning}, nil
}

func defaultJudgment() match.Judgment {
	index := 0
	confidence := 0.5
	return match.Judgment{BestIndex: &index, Confidence: &confidence, Reasoning: "Default selection"}
}

// GenerateQuestions turns variable descriptors into user-facing questions.
// Any failure degrades to the deterministic fallback rendering.
func (o *Oracle) GenerateQuestions(ctx context.Context, variables []template.Variable) ([]template.Question, error) {
	logger := common.Logger()
	encoded, err := json.MarshalIndent(variables, "", "  ")
	if err != nil {
		return template.FallbackQuestions(variables), nil
	}
	prompt := fmt.Sprintf(`Convert these technical variables into user-friendly questions.

Variables:
%s

Rules:
- NO technical jargon like "what is policy_number?"
- YES human-readable like "What is the insurance policy number on the schedule?"
- Use the description and example to create clear questions

Return JSON array of questions:
[
    {
        "variable_key": "key",
        "question": "Clear, human-readable question?",
        "placeholder": "Example value from variable.example",
        "help_text": "Additional guidance from variable.description"
    }
]

Return ONLY valid JSON array.`, string(encoded))

	raw, err := o.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.Error("oracle: question generation failed", "error", err)
		return template.FallbackQuestions(variables), nil
	}
	var questions []template.Question
	if err := json.Unmarshal([]byte(stripFences(raw)), &questions); err != nil {
		logger.Error("oracle: failed to parse question response", "error", err)
		return template.FallbackQuestions(variables), nil
	}
	return questions, nil
}

// PrefillVariables extracts any variable values already present in the
// user's query. Any failure degrades to an empty map.
func (o *Oracle) PrefillVariables(ctx context.Context, query string, variables []template.Variable) (map[string]string, error) {
	logger := common.Logger()
	encoded, err := json.MarshalIndent(variables, "", "  ")
	if err != nil {
		return map[string]string{}, nil
	}
	prompt := fmt.Sprintf(`Extract any variable values mentioned in the user query.

Query: %q

Variables:
%s

Return JSON with any values you can extract:
{
    "variable_key": "extracted value"
}

If no values can be extracted, return empty object {}.
Return ONLY valid JSON.`, query, string(encoded))

	raw, err := o.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		logger.Error("oracle: prefill failed", "error", err)
		return map[string]string{}, nil
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		logger.Error("oracle: failed to parse prefill response", "error", err)
		return map[string]string{}, nil
	}
	prefilled := make(map[string]string, len(parsed))
	for key, value := range parsed {
		switch typed := value.(type) {
		case string:
			prefilled[key] = typed
		case nil:
			// Skip explicit nulls.
		default:
			prefilled[key] = fmt.Sprint(typed)
		}
	}
	return prefilled, nil
}

// stripFences removes markdown code fences models often wrap around JSON.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```json") {
		trimmed = trimmed[len("```json"):]
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = trimmed[len("```"):]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

package template

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	TemplateID   string           `yaml:"template_id"`
	Title        string           `yaml:"title"`
	Description  string           `yaml:"description"`
	Jurisdiction string           `yaml:"jurisdiction"`
	DocType      string           `yaml:"doc_type"`
	Variables    []frontMatterVar `yaml:"variables"`
	Tags         []string         `yaml:"similarity_tags"`
}

type frontMatterVar struct {
	Key         string `yaml:"key"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Example     string `yaml:"example"`
	DataType    string `yaml:"data_type"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default_value,omitempty"`
}

// RenderMarkdown serialises a template to its on-disk markdown form: YAML
// front matter describing the variables followed by the body with {{key}}
// placeholders.
func RenderMarkdown(tpl Template) (string, error) {
	fm := frontMatter{
		TemplateID:   tpl.ID,
		Title:        tpl.Title,
		Description:  tpl.Description,
		Jurisdiction: tpl.Jurisdiction,
		DocType:      tpl.DocType,
		Tags:         tpl.Tags,
	}
	for _, v := range tpl.Variables {
		fm.Variables = append(fm.Variables, frontMatterVar{
			Key:         v.Key,
			Label:       v.Label,
			Description: v.Description,
			Example:     v.Example,
			DataType:    v.DataType,
			Required:    v.Required,
			Default:     v.Default,
		})
	}
	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}
	return "---\n" + string(encoded) + "---\n\n" + tpl.Body, nil
}

// ParseMarkdown splits a stored template file back into its front matter
// fields and body.
func ParseMarkdown(content string) (Template, error) {
	if !strings.HasPrefix(content, "---\n") {
		return Template{Body: content}, nil
	}
	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return Template{}, fmt.Errorf("unterminated front matter")
	}
	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:idx+1]), &fm); err != nil {
		return Template{}, fmt.Errorf("parse front matter: %w", err)
	}
	body := rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")
	tpl := Template{
		ID:           fm.TemplateID,
		Title:        fm.Title,
		Description:  fm.Description,
		Jurisdiction: fm.Jurisdiction,
		DocType:      fm.DocType,
		Tags:         fm.Tags,
		Body:         body,
	}
	for _, v := range fm.Variables {
		tpl.Variables = append(tpl.Variables, Variable{
			Key:         v.Key,
			Label:       v.Label,
			Description: v.Description,
			Example:     v.Example,
			DataType:    v.DataType,
			Required:    v.Required,
			Default:     v.Default,
		})
	}
	return tpl, nil
}

// RewritePlaceholders converts the bracket styles found in source documents
// ([key], _key_, <key>) into the canonical {{key}} form for each known
// variable.
func RewritePlaceholders(text string, variables []Variable) string {
	for _, v := range variables {
		target := "{{" + v.Key + "}}"
		text = strings.ReplaceAll(text, "["+v.Key+"]", target)
		text = strings.ReplaceAll(text, "_"+v.Key+"_", target)
		text = strings.ReplaceAll(text, "<"+v.Key+">", target)
	}
	return text
}

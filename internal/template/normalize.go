package template

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// ToSnakeCase canonicalises a proposed variable key: lowercase ASCII, words
// separated by single underscores, no leading or trailing underscores,
// non-alphanumeric characters stripped. CamelCase boundaries become
// underscores before lowering.
func ToSnakeCase(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 4)
	var prev rune
	for _, r := range text {
		switch {
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			// Strip anything outside the snake_case alphabet.
		}
		prev = r
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// KeyToLabel produces a human-readable label from a snake_case key, used
// when the oracle omits a label.
func KeyToLabel(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// FallbackQuestions renders a deterministic question list from variable
// descriptors when the question oracle is unavailable or unparseable.
func FallbackQuestions(variables []Variable) []Question {
	questions := make([]Question, 0, len(variables))
	for _, v := range variables {
		label := v.Label
		if strings.TrimSpace(label) == "" {
			label = KeyToLabel(v.Key)
		}
		questions = append(questions, Question{
			VariableKey: v.Key,
			Question:    titleCaser.String(strings.ReplaceAll(label, "_", " ")) + "?",
			Placeholder: v.Example,
			HelpText:    v.Description,
		})
	}
	return questions
}

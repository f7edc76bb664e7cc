package epublate

import (
	"fmt"
	"os"
	"strings"
)

// Prompt placeholder markers. Rendering is literal substitution only; there
// is no template logic.
const (
	PlaceholderGenre    = "{{genre}}"
	PlaceholderLanguage = "{{language}}"
	PlaceholderText     = "{{text}}"
)

// DefaultPromptTemplate is the fixed prompt contract: genre, target language,
// the source text, and an output instruction restricting the response to the
// translated text only.
const DefaultPromptTemplate = `You are a professional literary translator working on a {{genre}} book.
Translate the text below into {{language}}.

Respond with the translated text only. Do not add commentary, do not drop or
add content, preserve the original line breaks, and render legal notices,
addresses, and URLs literally.

{{text}}`

// PromptTemplate renders translation prompts from a fixed template.
type PromptTemplate struct {
	text string
}

// NewPromptTemplate validates that the template contains every placeholder.
func NewPromptTemplate(text string) (PromptTemplate, error) {
	for _, ph := range []string{PlaceholderGenre, PlaceholderLanguage, PlaceholderText} {
		if !strings.Contains(text, ph) {
			return PromptTemplate{}, fmt.Errorf("prompt template missing placeholder %s", ph)
		}
	}
	return PromptTemplate{text: text}, nil
}

// MustPromptTemplate panics on an invalid template. Intended for the
// built-in default and tests.
func MustPromptTemplate(text string) PromptTemplate {
	t, err := NewPromptTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadPromptTemplate reads a template from a file, so users can replace the
// built-in prompt without rebuilding.
func LoadPromptTemplate(path string) (PromptTemplate, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("reading prompt template: %w", err)
	}
	return NewPromptTemplate(string(data))
}

// Render substitutes the genre, language, and source text into the template.
func (t PromptTemplate) Render(text, language, genre string) string {
	r := strings.NewReplacer(
		PlaceholderGenre, genre,
		PlaceholderLanguage, language,
		PlaceholderText, text,
	)
	return r.Replace(t.text)
}

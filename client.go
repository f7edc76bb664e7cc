package epublate

import (
	"context"
	"strings"
)

// Backend is the translation capability boundary: one synchronous
// request/response call. Implementations live in the backend package; a
// deterministic mock is provided for tests.
type Backend interface {
	// Name identifies the backend for logs and reports.
	Name() string
	// Generate sends a rendered prompt and returns the raw model output.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client renders the fixed prompt template for each chunk and dispatches it
// to the configured backend. One call per chunk.
type Client struct {
	backend  Backend
	template PromptTemplate
	language string
	genre    string
}

// NewClient builds a translation client. The language code is expanded to a
// human-readable name in the prompt; the genre defaults to "General".
func NewClient(b Backend, template PromptTemplate, targetLang, genre string) *Client {
	if genre == "" {
		genre = "General"
	}
	return &Client{
		backend:  b,
		template: template,
		language: GetLanguageName(targetLang),
		genre:    genre,
	}
}

// Translate sends one chunk's text and returns the translated text. Backend
// failures and empty output surface as *TranslationError; the caller decides
// whether original text is kept, never this client.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	prompt := c.template.Render(text, c.language, c.genre)

	out, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		if _, ok := err.(*TranslationError); ok {
			return "", err
		}
		return "", &TranslationError{
			Message:   c.backend.Name() + " request failed",
			Cause:     err,
			Retryable: true,
		}
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", &TranslationError{
			Message:   c.backend.Name() + " returned empty output",
			Retryable: true,
		}
	}

	return out, nil
}

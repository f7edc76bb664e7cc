package backend

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/epublate/epublate"
)

// GeminiBackend executes prompts against Google's Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini backend.
type GeminiConfig struct {
	APIKey string // Google AI API key
	Model  string // Model to use (default: "gemini-2.5-flash-lite")
}

// NewGeminiBackend creates a new Gemini backend. The caller owns the backend
// and must Close it when done.
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &epublate.TranslationError{
			Message: "failed to create Gemini client",
			Cause:   err,
		}
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Model returns the configured model identifier.
func (b *GeminiBackend) Model() string {
	return b.model
}

// Close releases the underlying API client.
func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

// Generate sends the prompt and returns the concatenated text parts of the
// first candidate.
func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	model := b.client.GenerativeModel(b.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &epublate.TranslationError{
			Message:   "Gemini API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &epublate.TranslationError{
			Message:   "no response from Gemini",
			Retryable: true,
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", &epublate.TranslationError{
			Message:   "no text parts in Gemini response",
			Retryable: true,
		}
	}

	return sb.String(), nil
}

// Verify GeminiBackend implements Backend
var _ Backend = (*GeminiBackend)(nil)

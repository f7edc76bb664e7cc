package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/epublate/epublate"
)

// OllamaBackend executes prompts against a local Ollama server.
type OllamaBackend struct {
	model   string
	baseURL string
	client  *http.Client
}

// OllamaConfig holds configuration for the Ollama backend.
type OllamaConfig struct {
	Model   string        // Model to use (default: "llama3")
	BaseURL string        // Server URL (default: "http://localhost:11434")
	Timeout time.Duration // HTTP client timeout (default: 120s)
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaBackend creates a new Ollama backend.
func NewOllamaBackend(cfg OllamaConfig) *OllamaBackend {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &OllamaBackend{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Model returns the configured model identifier.
func (b *OllamaBackend) Model() string {
	return b.model
}

// Generate sends the prompt to /api/generate with streaming disabled and
// returns the response text.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &epublate.TranslationError{
			Message: "failed to marshal Ollama request",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", b.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &epublate.TranslationError{
			Message: "failed to create Ollama request",
			Cause:   err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", epublate.UserAgent())

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &epublate.TranslationError{
			Message:   "Ollama request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &epublate.TranslationError{
			Message:   fmt.Sprintf("Ollama returned status %d", resp.StatusCode),
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", &epublate.TranslationError{
			Message: "failed to decode Ollama response",
			Cause:   err,
		}
	}

	return ollamaResp.Response, nil
}

// Verify OllamaBackend implements Backend
var _ Backend = (*OllamaBackend)(nil)

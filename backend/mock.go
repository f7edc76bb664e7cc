package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/epublate/epublate"
)

// MockBackend is a mock model backend for testing.
type MockBackend struct {
	mu sync.Mutex

	Responses  map[string]string // Map of prompt substring to reply
	CallCount  int               // Number of times Generate was called
	LastPrompt string            // Last prompt received

	// FailuresBeforeSuccess makes the first N calls fail with a retryable
	// error, for exercising retry paths.
	FailuresBeforeSuccess int
	failures              int
}

// NewMockBackend creates a new mock backend with default responses.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Responses: map[string]string{
			"Hello world.": "Bonjour le monde.",
			"Hello":        "Bonjour",
			"World":        "Monde",
		},
	}
}

// Name returns the backend identifier.
func (m *MockBackend) Name() string {
	return "mock"
}

// Generate returns the reply whose key is a substring of the prompt,
// preferring the longest match, or the prompt wrapped in brackets when no key
// matches.
func (m *MockBackend) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastPrompt = prompt

	if m.failures < m.FailuresBeforeSuccess {
		m.failures++
		return "", &epublate.TranslationError{
			Message:   "mock failure",
			Retryable: true,
		}
	}

	var best, bestKey string
	found := false
	for key, reply := range m.Responses {
		if key == "" || !strings.Contains(prompt, key) {
			continue
		}
		if !found || len(key) > len(bestKey) {
			best, bestKey = reply, key
			found = true
		}
	}
	if found {
		return best, nil
	}
	return fmt.Sprintf("[%s]", prompt), nil
}

// Reset resets the call count and failure state.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastPrompt = ""
	m.failures = 0
}

// Verify MockBackend implements Backend
var _ Backend = (*MockBackend)(nil)

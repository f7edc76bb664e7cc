// Package backend implements the model backends that execute translation
// prompts: OpenAI, Ollama, Gemini, and a mock for testing.
package backend

import "github.com/epublate/epublate"

// Backend is the interface for model backends.
// This is an alias to the main package interface for convenience.
type Backend = epublate.Backend

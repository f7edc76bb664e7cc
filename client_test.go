package epublate

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestClient_Translate(t *testing.T) {
	var gotPrompt string
	b := backendFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "Bonjour le monde.", nil
	})

	c := NewClient(b, MustPromptTemplate(DefaultPromptTemplate), "fr_FR", "Mystery")
	out, err := c.Translate(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Bonjour le monde." {
		t.Errorf("Translate() = %q", out)
	}

	if !strings.Contains(gotPrompt, "French (France)") {
		t.Error("prompt should contain the expanded language name")
	}
	if !strings.Contains(gotPrompt, "Mystery") {
		t.Error("prompt should contain the genre")
	}
	if !strings.Contains(gotPrompt, "Hello world.") {
		t.Error("prompt should contain the source text")
	}
}

func TestClient_Translate_DefaultGenre(t *testing.T) {
	var gotPrompt string
	b := backendFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "ok", nil
	})

	c := NewClient(b, MustPromptTemplate(DefaultPromptTemplate), "fr_FR", "")
	if _, err := c.Translate(context.Background(), "Hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPrompt, "General") {
		t.Error("empty genre should default to General")
	}
}

func TestClient_Translate_EmptyOutput(t *testing.T) {
	b := backendFunc(func(ctx context.Context, prompt string) (string, error) {
		return "   \n", nil
	})

	c := NewClient(b, MustPromptTemplate(DefaultPromptTemplate), "fr_FR", "")
	_, err := c.Translate(context.Background(), "Hello")

	var terr *TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TranslationError, got %v", err)
	}
	if !terr.Retryable {
		t.Error("empty output should be retryable")
	}
}

func TestClient_Translate_WrapsBackendError(t *testing.T) {
	cause := errors.New("connection refused")
	b := backendFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", cause
	})

	c := NewClient(b, MustPromptTemplate(DefaultPromptTemplate), "fr_FR", "")
	_, err := c.Translate(context.Background(), "Hello")

	var terr *TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TranslationError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should preserve the cause")
	}
}

func TestClient_Translate_PassesThroughTranslationError(t *testing.T) {
	orig := &TranslationError{Message: "quota exceeded", Retryable: false}
	b := backendFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", orig
	})

	c := NewClient(b, MustPromptTemplate(DefaultPromptTemplate), "fr_FR", "")
	_, err := c.Translate(context.Background(), "Hello")

	if err != orig {
		t.Errorf("translation errors should pass through unchanged, got %v", err)
	}
}

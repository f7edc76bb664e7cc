package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epublate/epublate"
	"github.com/epublate/epublate/backend"
	"github.com/epublate/epublate/cache"
	"github.com/epublate/epublate/pipeline"
)

var translateCmd = &cobra.Command{
	Use:   "translate <input.epub> <output.epub>",
	Short: "Translate a book",
	Long: `Translate every chapter of an EPUB book into the target language.

The backend API key is read from the environment:
  openai  EPUBLATE_OPENAI_API_KEY (or OPENAI_API_KEY)
  gemini  EPUBLATE_GEMINI_API_KEY (or GEMINI_API_KEY)
  ollama  no key, talks to a local server`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]
		if input == output {
			return fmt.Errorf("input and output cannot be the same file")
		}

		cfg := epublate.Config{
			TargetLanguage:         viper.GetString("lang"),
			Genre:                  viper.GetString("genre"),
			Model:                  viper.GetString("model"),
			Bilingual:              viper.GetBool("bilingual"),
			MaxChunkChars:          viper.GetInt("max-chunk-chars"),
			SourceLocale:           viper.GetString("source-locale"),
			MaxRetries:             viper.GetInt("max-retries"),
			RequestTimeout:         viper.GetDuration("request-timeout"),
			Concurrency:            viper.GetInt("concurrency"),
			UpdateLanguageMetadata: viper.GetBool("update-metadata"),
			TitleOverride:          viper.GetString("set-title"),
			CreatorOverride:        viper.GetString("set-creator"),
		}
		if cfg.TargetLanguage == "" {
			return fmt.Errorf("--lang is required")
		}

		if promptFile := viper.GetString("prompt-file"); promptFile != "" {
			data, err := os.ReadFile(promptFile) // #nosec G304 - path is intentionally user-provided
			if err != nil {
				return err
			}
			if _, err := epublate.NewPromptTemplate(string(data)); err != nil {
				return err
			}
			cfg.PromptTemplate = string(data)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, closeBackend, err := buildBackend(ctx, cfg.Model)
		if err != nil {
			return err
		}
		defer closeBackend()

		if rpm := viper.GetInt("rate-limit"); rpm > 0 {
			b = epublate.NewRateLimitedBackend(b, epublate.RateLimitConfig{RequestsPerMinute: rpm})
		}

		opts := []pipeline.Option{pipeline.WithLogger(log)}
		if redisURL := viper.GetString("redis-url"); redisURL != "" {
			rc, err := cache.NewRedisCache(cache.RedisConfig{
				URL: redisURL,
				TTL: viper.GetInt("cache-ttl"),
			})
			if err != nil {
				return fmt.Errorf("connecting to redis: %w", err)
			}
			defer rc.Close()
			opts = append(opts, pipeline.WithCache(rc))
		} else {
			opts = append(opts, pipeline.WithCache(cache.NewInMemoryCache(0)))
		}
		if runID := viper.GetString("run-id"); runID != "" {
			opts = append(opts, pipeline.WithRunID(runID))
		}

		runner, err := pipeline.NewRunner(cfg, b, opts...)
		if err != nil {
			return err
		}

		go func() {
			for p := range runner.Events() {
				if p.Stage == pipeline.StageProcessing {
					fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.ChapterIndex, p.TotalChapters, p.Path)
				}
			}
		}()

		report, err := runner.Run(ctx, input, output)
		if err != nil {
			return err
		}

		fmt.Print(report.Summary())
		return nil
	},
}

// buildBackend constructs the configured model backend. The returned func
// releases backend resources and is always safe to call.
func buildBackend(ctx context.Context, model string) (epublate.Backend, func(), error) {
	noop := func() {}

	switch name := viper.GetString("backend"); name {
	case "openai", "":
		apiKey := viper.GetString("openai-api-key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, noop, fmt.Errorf("OpenAI API key required (set OPENAI_API_KEY)")
		}
		return backend.NewOpenAIBackend(backend.OpenAIConfig{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: viper.GetString("openai-base-url"),
		}), noop, nil

	case "ollama":
		return backend.NewOllamaBackend(backend.OllamaConfig{
			Model:   model,
			BaseURL: viper.GetString("ollama-url"),
		}), noop, nil

	case "gemini":
		apiKey := viper.GetString("gemini-api-key")
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, noop, fmt.Errorf("Gemini API key required (set GEMINI_API_KEY)")
		}
		b, err := backend.NewGeminiBackend(ctx, backend.GeminiConfig{
			APIKey: apiKey,
			Model:  model,
		})
		if err != nil {
			return nil, noop, err
		}
		return b, func() { b.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown backend %q", name)
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	f := translateCmd.Flags()
	f.StringP("lang", "l", "", "target language code (e.g. fr_FR, ko)")
	f.StringP("genre", "g", "", "book genre for the prompt (default: General)")
	f.StringP("backend", "b", "openai", "model backend: openai, ollama, gemini")
	f.StringP("model", "m", "", "model identifier (backend default if empty)")
	f.Bool("bilingual", false, "keep original text alongside the translation")
	f.Int("max-chunk-chars", 2000, "chunk size budget in characters (0 = unlimited)")
	f.String("source-locale", "en", "source locale for sentence detection")
	f.Int("max-retries", 3, "retry attempts per chunk")
	f.Duration("request-timeout", 2*time.Minute, "per-request backend timeout")
	f.Int("concurrency", 1, "concurrent requests within a chapter")
	f.Int("rate-limit", 0, "max backend requests per minute (0 = unlimited)")
	f.Bool("update-metadata", false, "rewrite dc:language in the package metadata")
	f.String("set-title", "", "override dc:title in the output metadata")
	f.String("set-creator", "", "override dc:creator in the output metadata")
	f.String("prompt-file", "", "custom prompt template file")
	f.String("run-id", "", "run identifier, reuse to resume an interrupted run")
	f.String("redis-url", "", "Redis URL for the chunk cache (in-memory if empty)")
	f.Int("cache-ttl", 0, "Redis cache TTL in seconds (0 = no expiration)")
	f.String("openai-api-key", "", "OpenAI API key")
	f.String("openai-base-url", "", "custom OpenAI-compatible base URL")
	f.String("ollama-url", "", "Ollama server URL (default: http://localhost:11434)")
	f.String("gemini-api-key", "", "Gemini API key")

	viper.BindPFlags(f)
}

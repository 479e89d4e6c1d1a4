package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/JustJay7/courtdle-api/internal/config"
)

var (
	ErrMissingAPIKey = errors.New("completion api key not configured")
	ErrEmptyResponse = errors.New("completion returned no text")
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New builds the completer selected by COMPLETION_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.CompletionProvider {
	case "openai":
		c, err := NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.CompletionTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		c, err := NewGemini(ctx, GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.CompletionProvider)
	}
}

// Package llm wraps chat-completion providers behind a single narrow
// interface so the classifier gateway can be tested with a deterministic
// stub.
package llm

import (
	"context"
	"fmt"

	"github.com/opsdesk/triage/internal/config"
)

// Provider defines the interface for chat completion
type Provider interface {
	// Complete generates a completion for the given system and user prompts.
	Complete(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

// NewProvider creates a chat provider based on config
func NewProvider(cfg *config.ClassifierConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

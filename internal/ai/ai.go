// Package ai holds the text-service clients used to interpret free-text
// commands. Both vendors are consumed over their plain HTTP APIs; only one
// is required and either can be absent.
package ai

import (
	"context"
	"time"

	"github.com/jmehdipour/dialer/internal/config"
)

// Client produces a completion for a system+user prompt pair.
type Client interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// FromConfig selects a client: an explicit ai.provider wins, otherwise
// Gemini is preferred when its key is set, then OpenAI. Returns nil when
// no provider is usable; the caller falls back to deterministic parsing.
func FromConfig(cfg config.AIConfig) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey != "" {
			return NewGeminiClient(cfg.Gemini, timeout)
		}
		return nil
	case "openai":
		if cfg.OpenAI.APIKey != "" {
			return NewOpenAIClient(cfg.OpenAI, timeout)
		}
		return nil
	}

	if cfg.Gemini.APIKey != "" {
		return NewGeminiClient(cfg.Gemini, timeout)
	}
	if cfg.OpenAI.APIKey != "" {
		return NewOpenAIClient(cfg.OpenAI, timeout)
	}
	return nil
}

// Package llm talks to the remote completion services.
package llm

import (
	"context"
	"fmt"

	"github.com/joescharf/recode/internal/config"
	"github.com/joescharf/recode/internal/prompt"
)

// Client fetches a completion for a prompt.
type Client interface {
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
	// Model returns the model identifier requests are sent with.
	Model() string
}

// NewClient returns the client for cfg.Provider.
func NewClient(cfg config.Completion) (Client, error) {
	switch cfg.Provider {
	case config.ProviderMistral, config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

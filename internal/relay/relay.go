// Package relay forwards chat conversations to an upstream completions API
// while the API key stays on the server.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/schemeseva/internal/models"
)

// Provider names accepted by New.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

const (
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel = "openai/gpt-4o-mini"
	defaultGeminiModel     = "gemini-2.0-flash"
	defaultTimeout         = 60 * time.Second
)

var (
	// ErrEmptyConversation is returned when there is nothing to send upstream.
	ErrEmptyConversation = errors.New("messages must not be empty")
	// ErrNoChoices is returned when the upstream answered without any content.
	ErrNoChoices = errors.New("upstream returned no choices")
)

// Completer answers a conversation with the assistant's next message.
type Completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// Config selects and configures the upstream provider.
type Config struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// New returns the Completer for cfg.Provider. An empty provider means openrouter.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	switch cfg.Provider {
	case "", ProviderOpenRouter:
		return NewOpenRouter(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// Validate checks that a conversation can be relayed.
func Validate(messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return ErrEmptyConversation
	}
	for i, m := range messages {
		if m.Content == "" {
			return fmt.Errorf("message %d has empty content", i)
		}
	}
	return nil
}

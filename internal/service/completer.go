package service

import (
	"context"
	"fmt"

	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
)

// Roles used in upstream chat turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Turn struct {
	Role string
	Text string
}

type CompletionRequest struct {
	SystemPrompt string
	History      []Turn
	UserInput    string
}

// Completion is the raw model output, usually Markdown.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalCost        float64 // reported by the provider, 0 if unknown
}

// Completer sends one request to a language-model provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// NewCompleter builds the upstream client selected in cfg.
func NewCompleter(cfg *config.Config) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter, "":
		return NewOpenRouterService(cfg.OpenRouterKey, cfg.OpenRouterURL, cfg.Model, cfg.Temperature), nil
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicKey, cfg.Model, cfg.MaxTokens), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, cfg.Provider)
}

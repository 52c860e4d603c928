package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
)

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

type AnthropicService struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicService(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *AnthropicService {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, option.WithRequestTimeout(config.RequestTimeout))
	c := anthropic.NewClient(opts...)

	m := anthropic.Model(model)
	if model == "" || strings.Contains(model, "/") {
		// OpenRouter-style ids are meaningless to Anthropic.
		m = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicService{client: &c, model: m, maxTokens: maxTokens}
}

func (s *AnthropicService) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, t := range req.History {
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserInput)))

	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  msgs,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusTooManyRequests:
				return nil, fmt.Errorf("anthropic: %w", domain.ErrRateLimited)
			case http.StatusServiceUnavailable, 529:
				return nil, fmt.Errorf("anthropic: %w", domain.ErrUpstreamUnavailable)
			}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, domain.ErrEmptyCompletion
	}

	return &Completion{
		Text:             sb.String(),
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}, nil
}

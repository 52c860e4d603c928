package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
)

// OpenRouterService talks to any OpenAI-compatible chat completions API.
type OpenRouterService struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewOpenRouterService(apiKey, baseURL, model string, temperature float64) *OpenRouterService {
	return &OpenRouterService{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: config.RequestTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalCost        float64 `json:"total_cost"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *OpenRouterService) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	messages := make([]ChatMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, t := range req.History {
		messages = append(messages, ChatMessage{Role: t.Role, Content: t.Text})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: req.UserInput})

	resp, err := s.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, domain.ErrEmptyCompletion
	}
	return &Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalCost:        resp.Usage.TotalCost,
	}, nil
}

func (s *OpenRouterService) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	temperature := &s.temperature
	// Gemini models reject custom temperature on some routes
	if strings.Contains(strings.ToLower(s.model), "gemini") {
		temperature = nil
	}

	chatReq := ChatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: temperature,
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("openrouter: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("openrouter: %w", domain.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := resp.Status
		if chatResp.Error != nil && chatResp.Error.Message != "" {
			msg = chatResp.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
	}

	return &chatResp, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/render"
)

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	UserInput           string        `json:"userInput"`
	SystemPrompt        string        `json:"systemPrompt"`
	ConversationHistory []HistoryItem `json:"conversationHistory"`
}

type SummarizeResponse struct {
	AIResponse string `json:"aiResponse"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// ProxyFetcher obtains replies from the backend proxy over HTTP. Fetch never
// fails: transport and remote errors come back as error-sender messages.
type ProxyFetcher struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

func NewProxyFetcher(url string, httpClient *http.Client) *ProxyFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.RequestTimeout}
	}
	return &ProxyFetcher{url: url, httpClient: httpClient, now: time.Now}
}

func (f *ProxyFetcher) Fetch(ctx context.Context, userInput string, conv domain.Conversation) domain.Message {
	text, err := f.post(ctx, SummarizeRequest{
		UserInput:           userInput,
		SystemPrompt:        conv.SystemPrompt,
		ConversationHistory: HistoryFromMessages(conv.Messages),
	})
	if err != nil {
		slog.Error("fetch reply from proxy", "error", err, "conversation_id", conv.ID)
		return errorMessage(f.now(), err)
	}
	return replyMessage(f.now(), text)
}

func (f *ProxyFetcher) post(ctx context.Context, body SummarizeRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("proxy request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxRequestBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", domain.ErrRateLimited
		case http.StatusServiceUnavailable:
			return "", domain.ErrUpstreamUnavailable
		}
		var errResp ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			return "", fmt.Errorf("%w: %s", domain.ErrUpstream, errResp.Message)
		}
		return "", fmt.Errorf("%w: %s", domain.ErrUpstream, resp.Status)
	}

	var out SummarizeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if out.AIResponse == "" {
		return "", domain.ErrEmptyCompletion
	}
	return out.AIResponse, nil
}

// DirectFetcher calls the upstream model in-process, for deployments where
// the proxy and the session layer share a binary.
type DirectFetcher struct {
	completer Completer
	billing   *BillingService
	maxTurns  int
	now       func() time.Time
}

func NewDirectFetcher(completer Completer, billing *BillingService) *DirectFetcher {
	return &DirectFetcher{
		completer: completer,
		billing:   billing,
		maxTurns:  config.MaxHistoryTurns,
		now:       time.Now,
	}
}

func (f *DirectFetcher) Fetch(ctx context.Context, userInput string, conv domain.Conversation) domain.Message {
	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	completion, err := Summarize(reqCtx, f.completer, f.billing, SummarizeRequest{
		UserInput:           userInput,
		SystemPrompt:        conv.SystemPrompt,
		ConversationHistory: HistoryFromMessages(conv.Messages),
	}, f.maxTurns)
	if err != nil {
		slog.Error("fetch reply", "error", err, "conversation_id", conv.ID)
		return errorMessage(f.now(), err)
	}
	return replyMessage(f.now(), completion.Text)
}

// Summarize runs one proxy request against the upstream model and records
// its cost.
func Summarize(ctx context.Context, completer Completer, billing *BillingService, req SummarizeRequest, maxTurns int) (*Completion, error) {
	start := time.Now()
	completion, err := completer.Complete(ctx, CompletionRequest{
		SystemPrompt: req.SystemPrompt,
		History:      TurnsFromHistory(req.ConversationHistory, maxTurns),
		UserInput:    req.UserInput,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("completion: %w", ctx.Err())
		}
		return nil, fmt.Errorf("completion: %w", err)
	}

	attrs := []any{
		"prompt_tokens", completion.PromptTokens,
		"completion_tokens", completion.CompletionTokens,
		"duration", time.Since(start),
	}
	if billing != nil {
		attrs = append(attrs, "cost", billing.Record(completion).StringFixed(6))
	}
	slog.Info("completion received", attrs...)
	return completion, nil
}

func replyMessage(now time.Time, markdown string) domain.Message {
	body, err := render.MarkdownToHTML(markdown)
	if err != nil {
		slog.Warn("render reply as markdown failed, escaping", "error", err)
		body = render.EscapeText(markdown)
	}
	return domain.Message{
		Sender:    domain.SenderAI,
		Text:      body,
		IsHTML:    true,
		Timestamp: now.UnixMilli(),
	}
}

func errorMessage(now time.Time, err error) domain.Message {
	return domain.Message{
		Sender:    domain.SenderError,
		Text:      fmt.Sprintf("<p>Hubo un problema al contactar a la IA: %s. Intenta de nuevo.</p>", html.EscapeString(describe(err))),
		IsHTML:    true,
		Timestamp: now.UnixMilli(),
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "demasiadas solicitudes, espera un momento"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "el servicio de IA no está disponible temporalmente"
	case errors.Is(err, context.DeadlineExceeded):
		return "se agotó el tiempo de espera"
	case errors.Is(err, domain.ErrEmptyCompletion):
		return "la IA no devolvió respuesta"
	}
	return err.Error()
}

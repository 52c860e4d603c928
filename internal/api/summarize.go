package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/service"
)

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)

	var req service.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return
	}
	req.UserInput = strings.TrimSpace(req.UserInput)
	if req.UserInput == "" {
		writeError(w, http.StatusBadRequest, "userInput es obligatorio")
		return
	}
	if req.SystemPrompt == "" {
		req.SystemPrompt = config.SystemPrompt
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.RequestTimeout)
	defer cancel()

	completion, err := service.Summarize(ctx, s.completer, s.billing, req, config.MaxHistoryTurns)
	if err != nil {
		status, message := upstreamStatus(err)
		slog.Error("summarize", "error", err, "status", status)
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, service.SummarizeResponse{AIResponse: completion.Text})
}

func upstreamStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "demasiadas solicitudes a la IA, espera un momento"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "el servicio de IA no está disponible temporalmente"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "se agotó el tiempo de espera de la IA"
	case errors.Is(err, domain.ErrEmptyCompletion):
		return http.StatusBadGateway, "la IA no devolvió respuesta"
	}
	return http.StatusInternalServerError, "Error procesando la solicitud de IA"
}

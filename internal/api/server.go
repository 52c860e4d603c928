// Package api exposes the summarization proxy and the conversation store
// over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/middleware"
	"github.com/set-night/resumidor/internal/service"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	app       *app.App
	completer service.Completer
	billing   *service.BillingService
	limiter   *middleware.Limiter
	model     string
}

// Deps contains the dependencies required to construct a Server. A nil
// Completer disables /api/summarize; a nil App disables /api/conversations.
type Deps struct {
	App       *app.App
	Completer service.Completer
	Billing   *service.BillingService
	Limiter   *middleware.Limiter
	Model     string
}

func New(deps Deps) *Server {
	return &Server{
		app:       deps.App,
		completer: deps.Completer,
		billing:   deps.Billing,
		limiter:   deps.Limiter,
		model:     deps.Model,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.LogRequests, middleware.RecoverHTTP)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(middleware.RateLimitHTTP(s.limiter))
		}
		if s.completer != nil {
			r.Post("/summarize", s.handleSummarize)
		}
		if s.app != nil {
			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", s.handleListConversations)
				r.Post("/", s.handleCreateConversation)
				r.Put("/active", s.handleSwitchConversation)
				r.Post("/active/messages", s.handleSendMessage)
				r.Get("/{id}", s.handleGetConversation)
				r.Delete("/{id}", s.handleDeleteConversation)
			})
		}
	})

	return r
}

type healthResponse struct {
	Status        string `json:"status"`
	Model         string `json:"model,omitempty"`
	Requests      int64  `json:"requests"`
	TotalCostUSD  string `json:"totalCostUsd"`
	Conversations int    `json:"conversations"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Model: s.model, TotalCostUSD: "0"}
	if s.billing != nil {
		total, requests := s.billing.Totals()
		resp.Requests = requests
		resp.TotalCostUSD = total.StringFixed(6)
	}
	if s.app != nil {
		resp.Conversations = len(s.app.Sessions().State().Conversations)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, service.ErrorResponse{Message: message})
}

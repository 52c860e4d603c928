package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/session"
)

type conversationSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"createdAt"`
	MessageCount int    `json:"messageCount"`
	Active       bool   `json:"active"`
}

type conversationList struct {
	ActiveID      string                `json:"activeId"`
	Conversations []conversationSummary `json:"conversations"`
}

type switchRequest struct {
	ID string `json:"id"`
}

type sendRequest struct {
	Text string `json:"text"`
}

type sendResponse struct {
	ConversationID string         `json:"conversationId"`
	User           domain.Message `json:"user"`
	Reply          domain.Message `json:"reply"`
	Stored         bool           `json:"stored"`
	Visible        bool           `json:"visible"`
}

func (s *Server) handleListConversations(w http.ResponseWriter, _ *http.Request) {
	state := s.app.Sessions().State()
	out := conversationList{
		ActiveID:      state.ActiveID,
		Conversations: make([]conversationSummary, 0, len(state.Conversations)),
	}
	for _, c := range state.Conversations {
		out.Conversations = append(out.Conversations, conversationSummary{
			ID:           c.ID,
			Name:         c.Name,
			CreatedAt:    c.CreatedAt,
			MessageCount: len(c.Messages),
			Active:       c.ID == state.ActiveID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.app.Sessions().Conversation(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversación no encontrada")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conv := s.app.NewConversation(r.Context())
	writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleSwitchConversation(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !decode(w, r, &req) {
		return
	}

	if s.app.Switch(r.Context(), req.ID) == session.SwitchNotFound {
		writeError(w, http.StatusNotFound, "conversación no encontrada")
		return
	}

	conv, _ := s.app.Sessions().ActiveConversation()
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if !s.app.Delete(r.Context(), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "conversación no encontrada")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := s.app.Send(r.Context(), req.Text)
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "el mensaje está vacío")
		return
	case errors.Is(err, domain.ErrNoActiveConversation):
		writeError(w, http.StatusConflict, "no hay una conversación activa")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "no se pudo guardar el mensaje")
		return
	}

	writeJSON(w, http.StatusOK, sendResponse{
		ConversationID: reply.ConversationID,
		User:           reply.User,
		Reply:          reply.Message,
		Stored:         reply.Stored,
		Visible:        reply.Visible,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return false
	}
	return true
}

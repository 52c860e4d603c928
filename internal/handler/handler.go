package handler

import (
	"sync"

	"github.com/go-telegram/bot"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot *bot.Bot

	// chats with a request in flight
	pending sync.Map
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot *bot.Bot
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{bot: deps.Bot}
}

func (h *Handler) tryBegin(chatID int64) bool {
	_, busy := h.pending.LoadOrStore(chatID, struct{}{})
	return !busy
}

func (h *Handler) end(chatID int64) {
	h.pending.Delete(chatID)
}

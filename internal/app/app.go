// Package app is the orchestration layer between a front-end and the
// session manager: it decides when conversations are created, guards sends,
// and binds each reply to the conversation that asked for it.
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/session"
)

// Fetcher produces the reply to a user message. Implementations convert
// every failure into an error-sender message instead of returning an error.
type Fetcher interface {
	Fetch(ctx context.Context, userInput string, conv domain.Conversation) domain.Message
}

// Reply is the outcome of Send.
type Reply struct {
	ConversationID string
	User           domain.Message
	Message        domain.Message
	// Stored is false for error replies and for replies whose conversation
	// was deleted while the request was in flight.
	Stored bool
	// Visible reports whether the target conversation is still the active one.
	Visible bool
}

type App struct {
	sessions *session.Manager
	fetcher  Fetcher
}

func New(sessions *session.Manager, fetcher Fetcher) *App {
	return &App{sessions: sessions, fetcher: fetcher}
}

func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Init loads stored conversations and creates the first one when none exist.
func (a *App) Init(ctx context.Context) {
	if a.sessions.Load(ctx) {
		return
	}
	conv := a.sessions.CreateNewConversation(ctx, true)
	slog.Info("no stored conversations, created first", "conversation_id", conv.ID)
}

func (a *App) NewConversation(ctx context.Context) domain.Conversation {
	return a.sessions.CreateNewConversation(ctx, true)
}

func (a *App) Switch(ctx context.Context, id string) session.SwitchResult {
	return a.sessions.SwitchConversation(ctx, id)
}

// Delete removes a conversation. Whenever no conversation is active
// afterwards, the most recent remaining one becomes active, or a fresh one
// is created.
func (a *App) Delete(ctx context.Context, id string) bool {
	if !a.sessions.DeleteConversation(ctx, id) {
		return false
	}
	a.ensureActive(ctx)
	return true
}

func (a *App) ensureActive(ctx context.Context) {
	state := a.sessions.State()
	if state.ActiveID != "" {
		return
	}
	if len(state.Conversations) > 0 {
		a.sessions.SwitchConversation(ctx, state.Conversations[0].ID)
		return
	}
	a.sessions.CreateNewConversation(ctx, true)
}

// Send appends the user's text to the active conversation, fetches a reply
// and stores it on the conversation that was active when the request was
// issued. Error replies are returned for display but never stored.
func (a *App) Send(ctx context.Context, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	conv, ok := a.sessions.ActiveConversation()
	if !ok {
		return nil, domain.ErrNoActiveConversation
	}

	userMsg, err := a.sessions.AppendMessageTo(ctx, conv.ID, domain.SenderUser, text, false)
	if err != nil {
		return nil, err
	}

	reply := a.fetcher.Fetch(ctx, text, conv)
	out := &Reply{ConversationID: conv.ID, User: userMsg, Message: reply}

	current, _ := a.sessions.ActiveConversation()
	out.Visible = current.ID == conv.ID

	if reply.Sender == domain.SenderError {
		return out, nil
	}

	stored, err := a.sessions.AppendMessageTo(ctx, conv.ID, reply.Sender, reply.Text, reply.IsHTML)
	if err != nil {
		slog.Warn("discard reply for deleted conversation", "conversation_id", conv.ID, "error", err)
		out.Visible = false
		return out, nil
	}
	out.Message = stored
	out.Stored = true
	if !out.Visible {
		slog.Info("reply stored on inactive conversation", "conversation_id", conv.ID, "active_id", current.ID)
	}
	return out, nil
}

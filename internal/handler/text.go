package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/middleware"
	tg "github.com/set-night/resumidor/internal/telegram"
)

// HandleText sends a text message to the chat's active conversation and
// posts the reply.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	msg := update.Message
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}

	chatID := msg.Chat.ID

	// One request per chat at a time
	if !h.tryBegin(chatID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Espera la respuesta a tu mensaje anterior.",
		})
		return
	}
	defer h.end(chatID)

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	stopTyping := tg.StartTyping(ctx, b, chatID)
	reply, err := a.Send(ctx, text)
	stopTyping()

	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	if err := tg.SendLongMessage(ctx, b, chatID, replyText(a, reply), &msg.ID); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID, "conversation_id", reply.ConversationID)
	}
}

func (h *Handler) sendError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	text := "❌ No se pudo procesar el mensaje."
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		text = "✏️ Envía un texto para resumir."
	case errors.Is(err, domain.ErrNoActiveConversation):
		text = "No hay una conversación activa. Usa /new para empezar una."
	default:
		slog.Error("send message", "error", err, "chat_id", chatID)
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

// replyText flattens the reply and notes when it landed in a conversation
// that is no longer on screen.
func replyText(a *app.App, reply *app.Reply) string {
	text := tg.MessageText(reply.Message)
	if reply.Visible {
		return text
	}
	if conv, ok := a.Sessions().Conversation(reply.ConversationID); ok {
		return fmt.Sprintf("📌 Respuesta guardada en «%s»:\n\n%s", conv.Name, text)
	}
	return "📌 La conversación se eliminó antes de recibir la respuesta:\n\n" + text
}

package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/resumidor/internal/middleware"
	tg "github.com/set-night/resumidor/internal/telegram"
)

const helpText = "\n\n📋 Comandos:\n" +
	"/new — Nueva conversación\n" +
	"/sessions — Ver y cambiar de conversación\n\n" +
	"Envía una oferta de trabajo, un artículo o cualquier texto y lo resumo."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}

	chatID := update.Message.Chat.ID
	greeting := "👋 ¡Hola!"
	if conv, ok := a.Sessions().ActiveConversation(); ok {
		if first, ok := firstMessage(conv.Messages); ok {
			greeting = tg.MessageText(first)
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   greeting + helpText,
	})
}

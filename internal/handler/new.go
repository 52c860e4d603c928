package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/resumidor/internal/middleware"
	tg "github.com/set-night/resumidor/internal/telegram"
)

func (h *Handler) handleNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}

	conv := a.NewConversation(ctx)
	text := fmt.Sprintf("🔄 %s creada.", conv.Name)
	if first, ok := firstMessage(conv.Messages); ok {
		text += "\n\n" + tg.MessageText(first)
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

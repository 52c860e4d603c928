package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/resumidor/internal/app"
)

type ctxKey string

const AppKey ctxKey = "app"

// ChatApps hands out the conversation app that belongs to a chat.
type ChatApps interface {
	ForChat(ctx context.Context, chatID int64) *app.App
}

// GetApp extracts the chat's app from context.
func GetApp(ctx context.Context) *app.App {
	a, ok := ctx.Value(AppKey).(*app.App)
	if !ok {
		return nil
	}
	return a
}

// ChatLoader returns middleware that loads the chat's conversations into context.
func ChatLoader(apps ChatApps) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			chatID := chatIDOf(update)
			if chatID == 0 {
				next(ctx, b, update)
				return
			}

			ctx = context.WithValue(ctx, AppKey, apps.ForChat(ctx, chatID))
			next(ctx, b, update)
		}
	}
}

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/middleware"
	"github.com/set-night/resumidor/internal/session"
	tg "github.com/set-night/resumidor/internal/telegram"
)

const snippetLen = 30

func (h *Handler) handleSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}
	h.sendSessionsPage(ctx, b, a, update.Message.Chat.ID, 0, 0)
}

// sendSessionsPage shows the conversation list, editing messageID in place when it is set.
func (h *Handler) sendSessionsPage(ctx context.Context, b *bot.Bot, a *app.App, chatID int64, messageID, page int) {
	text, keyboard := sessionsView(a.Sessions().State(), page)
	if err := tg.ShowText(ctx, b, chatID, messageID, text, keyboard); err != nil {
		slog.Warn("show sessions", "error", err, "chat_id", chatID)
	}
}

// sessionsView renders one page of the conversation list with a switch and
// a delete button per conversation.
func sessionsView(state session.State, page int) (string, *models.InlineKeyboardMarkup) {
	total := len(state.Conversations)
	totalPages := (total + config.SessionsPerPage - 1) / config.SessionsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	page = max(0, min(page, totalPages-1))

	var sb strings.Builder
	fmt.Fprintf(&sb, "📂 Conversaciones (%d)", total)

	var rows [][]models.InlineKeyboardButton
	start := page * config.SessionsPerPage
	end := min(start+config.SessionsPerPage, total)
	for _, c := range state.Conversations[start:end] {
		label := c.Name
		if s := firstUserText(c.Messages); s != "" {
			label = tg.Snippet(s, snippetLen)
		}
		if c.ID == state.ActiveID {
			label = "✅ " + label
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label, cbSwitch+c.ID),
			tg.InlineButton("🗑", cbDelete+c.ID),
		))
	}

	rows = append(rows, tg.ButtonRow(tg.InlineButton("➕ Nueva", cbNewSession)))
	if row := tg.PaginationRow(page, totalPages, cbSessionsPage); row != nil {
		rows = append(rows, row)
	}

	return sb.String(), tg.InlineKeyboard(rows...)
}

func (h *Handler) handleNewSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}
	a.NewConversation(ctx)

	chatID, messageID := callbackTarget(update)
	h.sendSessionsPage(ctx, b, a, chatID, messageID, 0)
}

func (h *Handler) handleSwitchSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}

	id := strings.TrimPrefix(update.CallbackQuery.Data, cbSwitch)
	result := a.Switch(ctx, id)

	answer := ""
	if result == session.SwitchNotFound {
		answer = "La conversación ya no existe."
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            answer,
	})
	if result == session.SwitchUnchanged {
		return
	}

	chatID, messageID := callbackTarget(update)
	h.sendSessionsPage(ctx, b, a, chatID, messageID, 0)

	if conv, ok := a.Sessions().ActiveConversation(); ok && result == session.SwitchChanged {
		text := "➡️ " + conv.Name
		if last, ok := conv.LastMessage(); ok {
			text += "\n\n" + tg.MessageText(last)
		}
		tg.SendLongMessage(ctx, b, chatID, text, nil)
	}
}

func (h *Handler) handleDeleteSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}

	id := strings.TrimPrefix(update.CallbackQuery.Data, cbDelete)
	if !a.Delete(ctx, id) {
		slog.Debug("delete missing conversation", "conversation_id", id)
	}

	chatID, messageID := callbackTarget(update)
	h.sendSessionsPage(ctx, b, a, chatID, messageID, 0)
}

func (h *Handler) handleSessionsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	a := middleware.GetApp(ctx)
	if a == nil {
		return
	}

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, cbSessionsPage))
	chatID, messageID := callbackTarget(update)
	h.sendSessionsPage(ctx, b, a, chatID, messageID, page)
}

func firstMessage(msgs []domain.Message) (domain.Message, bool) {
	if len(msgs) == 0 {
		return domain.Message{}, false
	}
	return msgs[0], true
}

func firstUserText(msgs []domain.Message) string {
	for _, m := range msgs {
		if m.Sender == domain.SenderUser {
			return m.Text
		}
	}
	return ""
}

package service

import (
	"strings"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/render"
)

// HistoryItem is the wire shape of one conversationHistory entry.
type HistoryItem struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	IsHTML bool   `json:"isHtml"`
}

func HistoryFromMessages(msgs []domain.Message) []HistoryItem {
	items := make([]HistoryItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, HistoryItem{Sender: string(m.Sender), Text: m.Text, IsHTML: m.IsHTML})
	}
	return items
}

// TurnsFromHistory converts client history into model turns. Error entries
// are dropped, HTML is flattened to plain text and only the newest maxTurns
// survive.
func TurnsFromHistory(items []HistoryItem, maxTurns int) []Turn {
	turns := make([]Turn, 0, len(items))
	for _, it := range items {
		var role string
		switch domain.Sender(it.Sender) {
		case domain.SenderUser:
			role = RoleUser
		case domain.SenderAI:
			role = RoleAssistant
		default:
			continue
		}
		text := it.Text
		if it.IsHTML {
			text = render.PlainText(text)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		turns = append(turns, Turn{Role: role, Text: text})
	}

	// Upstream APIs expect the first turn to come from the user.
	for len(turns) > 0 && turns[0].Role != RoleUser {
		turns = turns[1:]
	}
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
		for len(turns) > 0 && turns[0].Role != RoleUser {
			turns = turns[1:]
		}
	}
	return turns
}

package session

import (
	"log/slog"

	"github.com/set-night/resumidor/internal/domain"
)

// CurrentSchemaVersion is written with every stored conversation. Records
// without a version predate createdAt, systemPrompt and per-message
// timestamps and are back-filled once on load.
const CurrentSchemaVersion = 1

type storedMessage struct {
	Sender    domain.Sender `json:"sender"`
	Text      string        `json:"text"`
	IsHTML    bool          `json:"isHtml"`
	Timestamp int64         `json:"timestamp,omitempty"`
}

type storedConversation struct {
	Version      int              `json:"version,omitempty"`
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Messages     *[]storedMessage `json:"messages,omitempty"`
	CreatedAt    int64            `json:"createdAt,omitempty"`
	SystemPrompt string           `json:"systemPrompt,omitempty"`
}

type defaults struct {
	now          int64
	systemPrompt string
	greeting     string
}

// upgrade converts a stored record into a conversation, filling whatever
// an older schema left out.
func upgrade(rec *storedConversation, d defaults) *domain.Conversation {
	if rec.Version < 1 {
		if rec.CreatedAt == 0 {
			rec.CreatedAt = d.now
		}
		if rec.SystemPrompt == "" {
			rec.SystemPrompt = d.systemPrompt
		}
		if rec.Messages == nil {
			rec.Messages = &[]storedMessage{{
				Sender:    domain.SenderAI,
				Text:      d.greeting,
				IsHTML:    true,
				Timestamp: rec.CreatedAt,
			}}
		}
		for i := range *rec.Messages {
			if (*rec.Messages)[i].Timestamp == 0 {
				(*rec.Messages)[i].Timestamp = rec.CreatedAt
			}
		}
		rec.Version = 1
	}

	conv := &domain.Conversation{
		ID:           rec.ID,
		Name:         rec.Name,
		CreatedAt:    rec.CreatedAt,
		SystemPrompt: rec.SystemPrompt,
	}
	if rec.Messages != nil {
		conv.Messages = make([]domain.Message, 0, len(*rec.Messages))
		for _, m := range *rec.Messages {
			if !m.Sender.Valid() {
				slog.Warn("drop stored message with unknown sender",
					"conversation_id", rec.ID, "sender", m.Sender)
				continue
			}
			conv.Messages = append(conv.Messages, domain.Message{
				Sender:    m.Sender,
				Text:      m.Text,
				IsHTML:    m.IsHTML,
				Timestamp: m.Timestamp,
			})
		}
	} else {
		conv.Messages = []domain.Message{}
	}
	return conv
}

func toStored(c *domain.Conversation) storedConversation {
	msgs := make([]storedMessage, len(c.Messages))
	for i, m := range c.Messages {
		msgs[i] = storedMessage{
			Sender:    m.Sender,
			Text:      m.Text,
			IsHTML:    m.IsHTML,
			Timestamp: m.Timestamp,
		}
	}
	return storedConversation{
		Version:      CurrentSchemaVersion,
		ID:           c.ID,
		Name:         c.Name,
		Messages:     &msgs,
		CreatedAt:    c.CreatedAt,
		SystemPrompt: c.SystemPrompt,
	}
}

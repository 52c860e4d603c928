package domain

import "time"

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAI    Sender = "ai"
	SenderError Sender = "error"
)

func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderAI, SenderError:
		return true
	}
	return false
}

// Message is one chat entry. Text is HTML when IsHTML is set, plain text otherwise.
type Message struct {
	Sender    Sender `json:"sender" yaml:"sender"`
	Text      string `json:"text" yaml:"text"`
	IsHTML    bool   `json:"isHtml" yaml:"isHtml"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // epoch ms
}

func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

type Conversation struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Messages     []Message `json:"messages" yaml:"messages"`
	CreatedAt    int64     `json:"createdAt" yaml:"createdAt"` // epoch ms
	SystemPrompt string    `json:"systemPrompt" yaml:"systemPrompt"`
}

func (c *Conversation) CreatedTime() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// Clone returns a copy that shares no message storage with c.
func (c Conversation) Clone() Conversation {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	c.Messages = msgs
	return c
}

// LastMessage returns the newest message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/session"
	"github.com/set-night/resumidor/internal/store"
)

// Chats keeps one conversation app per Telegram chat. Every chat gets its
// own key namespace in the shared store. Past maxChats, chats idle for
// longer than idleAfter are dropped; their state lives in the store and is
// reloaded on the next update.
type Chats struct {
	store   store.Store
	fetcher app.Fetcher
	cfg     session.Config

	maxChats  int
	idleAfter time.Duration
	now       func() time.Time

	mu    sync.Mutex
	chats map[int64]*chatEntry
}

type chatEntry struct {
	once     sync.Once
	app      *app.App
	lastUsed time.Time
}

type ChatsOption func(*Chats)

// WithChatLimit overrides how many chats stay loaded and how long a chat
// must be idle before it can be dropped.
func WithChatLimit(maxChats int, idleAfter time.Duration) ChatsOption {
	return func(c *Chats) {
		c.maxChats = maxChats
		c.idleAfter = idleAfter
	}
}

func WithChatClock(now func() time.Time) ChatsOption {
	return func(c *Chats) { c.now = now }
}

func NewChats(st store.Store, fetcher app.Fetcher, cfg session.Config, opts ...ChatsOption) *Chats {
	c := &Chats{
		store:     st,
		fetcher:   fetcher,
		cfg:       cfg,
		maxChats:  config.MaxTelegramChats,
		idleAfter: config.ChatIdleTimeout,
		now:       time.Now,
		chats:     make(map[int64]*chatEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForChat returns the chat's app, loading its conversations on first use.
// The load runs outside the registry lock, so a slow store only delays
// updates for that chat.
func (c *Chats) ForChat(ctx context.Context, chatID int64) *app.App {
	c.mu.Lock()
	e, ok := c.chats[chatID]
	if !ok {
		e = &chatEntry{}
		c.chats[chatID] = e
	}
	e.lastUsed = c.now()
	c.evictIdle(chatID)
	c.mu.Unlock()

	e.once.Do(func() {
		st := store.Namespace(c.store, ChatNamespace(chatID))
		a := app.New(session.New(st, c.cfg), c.fetcher)
		a.Init(ctx)
		e.app = a
	})
	return e.app
}

// evictIdle drops least recently used chats until the registry fits
// maxChats, stopping at the first chat that is not idle yet. Callers hold mu.
func (c *Chats) evictIdle(keep int64) {
	for c.maxChats > 0 && len(c.chats) > c.maxChats {
		var (
			oldestID int64
			oldest   *chatEntry
		)
		for id, e := range c.chats {
			if id == keep {
				continue
			}
			if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
				oldestID, oldest = id, e
			}
		}
		if oldest == nil || c.now().Sub(oldest.lastUsed) < c.idleAfter {
			return
		}
		delete(c.chats, oldestID)
		slog.Debug("idle chat unloaded", "chat_id", oldestID, "last_used", oldest.lastUsed)
	}
}

func ChatNamespace(chatID int64) string {
	return fmt.Sprintf("chat:%d:", chatID)
}

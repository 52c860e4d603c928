package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sweepThreshold = 4096

// Limiter counts events per key in fixed windows.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	start time.Time
	count int
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*windowCounter),
	}
}

// Allow records one event for key and reports whether it is within the limit.
// A non-positive limit disables limiting.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.counters) > sweepThreshold {
		for k, c := range l.counters {
			if now.Sub(c.start) >= l.window {
				delete(l.counters, k)
			}
		}
	}

	c, ok := l.counters[key]
	if !ok || now.Sub(c.start) >= l.window {
		c = &windowCounter{start: now}
		l.counters[key] = c
	}
	c.count++
	return c.count <= l.limit
}

// RateLimit returns bot middleware that enforces the limiter per chat.
// Only messages are limited; button presses pass through.
func RateLimit(l *Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !l.Allow("chat:" + strconv.FormatInt(chatID, 10)) {
				slog.Debug("rate limited", "chat_id", chatID)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Demasiadas solicitudes. Espera un momento.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}

// RateLimitHTTP enforces the limiter per client address.
func RateLimitHTTP(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)
			if !l.Allow(client) {
				slog.Debug("rate limited", "client", client, "path", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "demasiadas solicitudes, espera un momento")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

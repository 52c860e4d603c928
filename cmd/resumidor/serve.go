package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/cobra"

	"github.com/set-night/resumidor/internal/api"
	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/handler"
	"github.com/set-night/resumidor/internal/middleware"
	"github.com/set-night/resumidor/internal/session"
	"github.com/set-night/resumidor/internal/store"
	"github.com/set-night/resumidor/internal/telegram"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram bot",
		Long: `Run the summarization proxy (POST /api/summarize), the conversation API
(/api/conversations) and, when BOT_TOKEN is set, the Telegram bot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts.cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	setupLogging(os.Stdout, cfg.SlogLevel())

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	slog.Info("store opened", "driver", cfg.StoreDriver)

	up, err := newUpstream(cfg)
	if err != nil {
		return err
	}
	fetcher := newFetcher(cfg, up)

	web := newApp(st, fetcher)
	web.Init(ctx)

	srv := api.New(api.Deps{
		App:       web,
		Completer: up.completer,
		Billing:   up.billing,
		Limiter:   middleware.NewLimiter(config.RateLimitPerMinute, time.Minute),
		Model:     cfg.Model,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "addr", cfg.Addr(), "provider", cfg.Provider, "model", cfg.Model)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.TelegramEnabled() {
		b, err := newBot(ctx, cfg, st, fetcher)
		if err != nil {
			stop()
			shutdown(httpServer)
			return err
		}
		go b.Start(ctx)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		return err
	}

	shutdown(httpServer)
	slog.Info("stopped gracefully")
	return nil
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}
}

// newBot wires the Telegram front-end. Each chat keeps its conversations
// under its own prefix in st.
func newBot(ctx context.Context, cfg *config.Config, st store.Store, fetcher app.Fetcher) (*bot.Bot, error) {
	chats := telegram.NewChats(st, fetcher, session.DefaultConfig())

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(middleware.NewLimiter(config.RateLimitPerMinute, time.Minute)),
			middleware.ChatLoader(chats),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			h.HandleText(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, err
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("drop pending updates", "error", err)
		}
	}

	h = handler.New(handler.Deps{Bot: b})
	h.Register()

	slog.Info("starting bot", "username", me.Username)
	return b, nil
}

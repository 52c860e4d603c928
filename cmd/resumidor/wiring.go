package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	resumidor "github.com/set-night/resumidor"
	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/repository"
	"github.com/set-night/resumidor/internal/service"
	"github.com/set-night/resumidor/internal/session"
	"github.com/set-night/resumidor/internal/store"
)

// openStore builds the configured store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return store.NewMemoryStore(), func() {}, nil

	case config.StoreFile:
		return store.NewFileStore(cfg.StorePath), func() {}, nil

	case config.StoreSQLite:
		st, err := repository.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			if err := st.Close(); err != nil {
				slog.Warn("close sqlite store", "error", err)
			}
		}, nil

	case config.StorePostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		migrationsFS, err := fs.Sub(resumidor.MigrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("load embedded migrations: %w", err)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownStoreDriver, cfg.StoreDriver)
}

// upstream is the in-process model client with its cost accounting.
type upstream struct {
	completer service.Completer
	billing   *service.BillingService
}

func newUpstream(cfg *config.Config) (*upstream, error) {
	completer, err := service.NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	model := domain.AIModel{
		ID:              cfg.Model,
		Provider:        cfg.Provider,
		PromptPrice:     cfg.PromptPrice,
		CompletionPrice: cfg.CompletionPrice,
	}
	return &upstream{
		completer: completer,
		billing:   service.NewBillingService(model, cfg.MarkupPercent),
	}, nil
}

// newFetcher uses the remote proxy when PROXY_URL is set and the upstream
// client directly otherwise.
func newFetcher(cfg *config.Config, up *upstream) app.Fetcher {
	if cfg.ProxyURL != "" {
		slog.Info("replies fetched through proxy", "url", cfg.ProxyURL)
		return service.NewProxyFetcher(cfg.ProxyURL, nil)
	}
	return service.NewDirectFetcher(up.completer, up.billing)
}

func newApp(st store.Store, fetcher app.Fetcher) *app.App {
	return app.New(session.New(st, session.DefaultConfig()), fetcher)
}

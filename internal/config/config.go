package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Upstream model
	Provider      string  `env:"LLM_PROVIDER" envDefault:"openrouter"`
	Model         string  `env:"MODEL" envDefault:"google/gemini-2.0-flash-001"`
	OpenRouterKey string  `env:"OPENROUTER_API_KEY"`
	OpenRouterURL string  `env:"OPENROUTER_API_URL" envDefault:"https://openrouter.ai/api/v1"`
	AnthropicKey  string  `env:"ANTHROPIC_API_KEY"`
	MaxTokens     int64   `env:"MAX_TOKENS" envDefault:"2048"`
	Temperature   float64 `env:"TEMPERATURE" envDefault:"0.7"`

	// Pricing per 1M tokens, used for cost logging only
	PromptPrice     float64 `env:"PROMPT_PRICE" envDefault:"0"`
	CompletionPrice float64 `env:"COMPLETION_PRICE" envDefault:"0"`
	MarkupPercent   float64 `env:"MARKUP_PERCENT" envDefault:"0"`

	// Response fetcher; empty means the in-process upstream client is used
	ProxyURL string `env:"PROXY_URL"`

	// Persistent store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	StorePath   string `env:"STORE_PATH" envDefault:"resumidor.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Telegram front-end, disabled when empty
	BotToken           string `env:"BOT_TOKEN"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Provider = strings.ToLower(cfg.Provider)
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) TelegramEnabled() bool {
	return c.BotToken != ""
}

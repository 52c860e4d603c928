package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/set-night/resumidor/internal/config"
)

type rootOptions struct {
	storeDriver string
	storePath   string
	verbose     bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "resumidor",
		Short: "Conversational summarizer for job offers and articles",
		Long: `resumidor keeps a short list of summarization conversations and relays
each message to a language model.

Quick Start:
  resumidor serve                          # HTTP API and, with BOT_TOKEN, the Telegram bot
  resumidor conversations list             # Show stored conversations
  resumidor conversations send "texto..."  # Summarize from the terminal
  resumidor conversations export --format md`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.storeDriver != "" {
				cfg.StoreDriver = opts.storeDriver
			}
			if opts.storePath != "" {
				cfg.StorePath = opts.storePath
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.storeDriver, "store", "", "Store driver: memory, file, sqlite or postgres (overrides STORE_DRIVER)")
	cmd.PersistentFlags().StringVar(&opts.storePath, "store-path", "", "Path of the file or sqlite store (overrides STORE_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at LOG_LEVEL instead of warnings only in terminal commands")

	cmd.AddCommand(newServeCmd(opts), newConversationsCmd(opts))
	return cmd
}

// setupLogging installs the JSON logger as the process default.
func setupLogging(w io.Writer, level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// cliLogging keeps terminal output clean: logs go to stderr, warnings only
// unless --verbose is set.
func (o *rootOptions) cliLogging() {
	level := slog.LevelWarn
	if o.verbose {
		level = o.cfg.SlogLevel()
	}
	setupLogging(os.Stderr, level)
}

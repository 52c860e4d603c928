package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/set-night/resumidor/internal/app"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/export"
	"github.com/set-night/resumidor/internal/session"
	"github.com/set-night/resumidor/internal/telegram"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func newConversationsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage stored conversations from the terminal",
	}
	cmd.AddCommand(
		newListCmd(opts),
		newNewCmd(opts),
		newSwitchCmd(opts),
		newDeleteCmd(opts),
		newSendCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// withApp opens the store, loads the conversations and runs fn.
func (o *rootOptions) withApp(ctx context.Context, fetcher app.Fetcher, fn func(*app.App) error) error {
	o.cliLogging()

	st, closeStore, err := openStore(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	a := newApp(st, fetcher)
	a.Init(ctx)
	return fn(a)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app.App) error {
				writeList(cmd.OutOrStdout(), a.Sessions().State())
				return nil
			})
		},
	}
}

func writeList(w io.Writer, state session.State) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Conversaciones (%d)", len(state.Conversations))))
	for _, c := range state.Conversations {
		marker := "  "
		name := c.Name
		if c.ID == state.ActiveID {
			marker = activeStyle.Render("* ")
			name = activeStyle.Render(name)
		}
		fmt.Fprintf(w, "%s%s  %s  %s  %d mensajes\n",
			marker,
			name,
			idStyle.Render(c.ID),
			dateStyle.Render(c.CreatedTime().Format("2006-01-02 15:04")),
			len(c.Messages),
		)
	}
}

func newNewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new conversation and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app.App) error {
				conv := a.NewConversation(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", conv.Name, idStyle.Render(conv.ID))
				return nil
			})
		},
	}
}

func newSwitchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id>",
		Short: "Make a conversation active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app.App) error {
				if a.Switch(cmd.Context(), args[0]) == session.SwitchNotFound {
					return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, args[0])
				}
				conv, _ := a.Sessions().ActiveConversation()
				fmt.Fprintf(cmd.OutOrStdout(), "Activa: %s\n", conv.Name)
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), nil, func(a *app.App) error {
				if !a.Delete(cmd.Context(), args[0]) {
					return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Eliminada.")
				return nil
			})
		},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message to the active conversation and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := newUpstream(opts.cfg)
			if err != nil {
				return err
			}
			fetcher := newFetcher(opts.cfg, up)

			return opts.withApp(cmd.Context(), fetcher, func(a *app.App) error {
				reply, err := a.Send(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				text := telegram.MessageText(reply.Message)
				if reply.Message.Sender == domain.SenderError {
					text = errorStyle.Render(text)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
		id     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export conversations to json, yaml or md",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			return opts.withApp(cmd.Context(), nil, func(a *app.App) error {
				convs := a.Sessions().State().Conversations
				if id != "" {
					conv, ok := a.Sessions().Conversation(id)
					if !ok {
						return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
					}
					convs = []domain.Conversation{conv}
				}

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("create output file: %w", err)
					}
					defer f.Close()
					w = f
				}

				if err := exporter.Export(convs, w); err != nil {
					return fmt.Errorf("export %s: %w", exporter.Extension(), err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, yaml or md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&id, "id", "", "Export only this conversation")
	return cmd
}

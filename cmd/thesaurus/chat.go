package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MarcoMadridG27/Thesaurus/internal/chat"
	"github.com/MarcoMadridG27/Thesaurus/internal/cli"
	"github.com/MarcoMadridG27/Thesaurus/internal/tui"
	"github.com/MarcoMadridG27/Thesaurus/internal/tui/themes"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the dashboard and chat with the assistant",
		Long: `Open the interactive dashboard. The header shows your spending figures and
the latest insight; below it you can ask the assistant about your invoices.`,
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()

			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			st, err := a.openStore(ctx, true)
			if err != nil {
				return err
			}

			session := chat.New(client, chat.NewWebsocketDialer(a.cfg.Chat.OpenTimeout), st,
				chat.WithOpenTimeout(a.cfg.Chat.OpenTimeout),
				chat.WithTypingInterval(a.cfg.Chat.TypingInterval),
			)

			return tui.Run(ctx, session, st,
				tui.WithTheme(themes.ByName(viper.GetString("tui.theme"))),
				tui.WithAutoConnect(!viper.GetBool("tui.manual_connect")),
			)
		}),
	}

	cmd.Flags().String("theme", "default", "color theme (default, catppuccin)")
	cmd.Flags().Bool("manual-connect", false, "wait for ctrl+o before opening the chat")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))
	_ = viper.BindPFlag("tui.manual_connect", cmd.Flags().Lookup("manual-connect"))

	cmd.AddCommand(chatSessionsCmd())
	cmd.AddCommand(chatHistoryCmd())
	cmd.AddCommand(chatDeleteCmd())
	cmd.AddCommand(chatSyncContextCmd())

	return cmd
}

func chatSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List chat sessions known to the service",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			sessions, err := client.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No hay sesiones de chat."))
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "%s  %s\n", s.SessionID, cli.SubtleStyle.Render(s.Status))
			}
			return nil
		}),
	}
}

func chatHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-id>",
		Short: "Print the messages of a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			history, err := client.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range history.Messages {
				fmt.Fprintf(out, "%s %s\n", cli.BoldStyle.Render(m.Role.DisplayName()+":"), m.Content)
			}
			return nil
		}),
	}
}

func chatDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a chat session on the service",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			if err := client.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Sesión "+args[0]+" eliminada"))
			return nil
		}),
	}
}

func chatSyncContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-context <session-id>",
		Short: "Send the current spending figures to a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := client.UpdateContext(cmd.Context(), args[0], st.ChatContext()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Contexto actualizado"))
			return nil
		}),
	}
}

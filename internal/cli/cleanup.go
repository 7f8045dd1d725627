package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voicebrowser/internal/infrastructure/browserbase"
	"voicebrowser/internal/observability"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Release stale remote browser sessions",
	Long: `Releases the locally persisted session, then lists the provider's
sessions and deletes any that are still live. Useful after a crash left
sessions running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := browserbase.NewClient(browserbase.Config{
			BaseURL: settings.BrowserbaseBaseURL,
			APIKey:  settings.BrowserbaseAPIKey,
			Logger:  observability.NewLogger(settings.Logger),
		})

		// Persisted session first, in case listing is unavailable.
		state := browserbase.NewStateFile(settings.SessionStateFile)
		if info, ok, _ := state.Load(); ok {
			if err := client.DeleteSession(ctx, info.ID); err != nil {
				color.Yellow("could not release persisted session %s: %v", info.ID, err)
			} else {
				color.Green("released persisted session %s", info.ID)
			}
			_ = state.Clear()
		}

		sessions, err := client.ListSessions(ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			color.Cyan("no sessions to clean up")
			return nil
		}

		for _, sess := range sessions {
			color.White("- %s (status: %s)", sess.ID, sess.Status)
			if err := client.DeleteSession(ctx, sess.ID); err != nil {
				color.Yellow("  could not delete %s: %v", sess.ID, err)
				continue
			}
			color.Green("  deleted %s", sess.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

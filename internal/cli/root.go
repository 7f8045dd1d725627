// Package cli holds the cobra command tree for the voice browser agent.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voicebrowser/internal/config"
)

var settings *config.Settings

var rootCmd = &cobra.Command{
	Use:   "voicebrowser",
	Short: "Voice-driven browser automation agent",
	Long: `voicebrowser turns natural-language commands into browser actions
executed against a remotely hosted browser session.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		settings = config.Load()
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

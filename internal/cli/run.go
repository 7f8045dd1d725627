package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voicebrowser/internal/di"
)

var runCmd = &cobra.Command{
	Use:   "run [transcript]",
	Short: "Execute voice commands against the browser",
	Long: `Run a single transcript given as an argument, or start an
interactive loop reading commands from stdin when no argument is given.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := di.NewContainer(settings)
		if err != nil {
			return err
		}
		defer container.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		defer func() {
			if err := container.Agent.Shutdown(context.Background()); err != nil {
				color.Yellow("shutdown: %v", err)
			}
		}()

		if len(args) > 0 {
			return runOnce(ctx, container, strings.Join(args, " "))
		}
		return runInteractive(ctx, container)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(ctx context.Context, container *di.Container, transcript string) error {
	response, err := container.Agent.ProcessTranscript(ctx, transcript)
	if err != nil {
		return err
	}
	color.Green("%s", response)
	return nil
}

func runInteractive(ctx context.Context, container *di.Container) error {
	color.Cyan("Voice browser agent ready. Type a command, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgHiWhite, color.Bold)

	for {
		prompt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		response, err := container.Agent.ProcessTranscript(ctx, line)
		if err != nil {
			color.Red("error: %v", err)
			continue
		}
		color.Green("%s", response)
	}

	fmt.Println()
	color.Cyan("Goodbye.")
	return scanner.Err()
}

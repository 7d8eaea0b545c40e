package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/adapters/driving/tui"
	"github.com/wevysya/voiceos/internal/logger"
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive voice console",
	Long: `Launch the interactive voice console.

Type what you would say and press Enter; the console runs the turn, shows the
response and the knowledge sources behind it, and plays it back. Background
maintenance runs while the console is open.

Controls:
  Enter   - Speak
  Esc     - Cancel the turn
  Ctrl+R  - Reset after an error
  Tab     - Action catalog
  F1      - Toggle help
  Ctrl+C  - Quit`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in console: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	caller, err := currentCaller()
	if err != nil {
		return err
	}

	ports := tui.NewPorts(voiceService, knowledgeService, actionDispatcher)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create console: %w", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// The console is long-running, so maintenance runs alongside it.
	if scheduler != nil {
		go func() {
			if err := runScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
	}

	app.WithContext(ctx).WithCaller(caller)
	if err := app.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}

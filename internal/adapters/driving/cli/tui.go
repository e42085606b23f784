package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/margin/internal/adapters/driving/tui"
	"github.com/custodia-labs/margin/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive review UI",
	Long: `Launch the interactive terminal user interface for margin.

Documents are shown with their pending suggestions as cards beneath the
lines they target. The view refreshes when sidecars change on disk.

Controls:
  ↑/k, ↓/j - Move between suggestions
  a        - Accept the first alternative
  1-9      - Accept the n-th alternative
  e        - Edit the text, then ctrl+s to accept it
  r        - Reject
  A / R    - Accept or reject every pending suggestion
  p        - Prune stale suggestions
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// tuiWatch controls whether the workspace is watched while the UI runs.
var tuiWatch bool

// newTUIApp builds the app. Replaced in tests.
var newTUIApp = tui.NewApp

func init() {
	tuiCmd.Flags().BoolVar(&tuiWatch, "watch", true, "Reload when files change while the UI is open")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp(tui.NewPorts(suggestionService, actionService, settingsService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The UI is long-running, so keep the cache in step with the disk.
	if tuiWatch && watchService != nil {
		go func() {
			if err := watchService.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher stopped: %v", err)
			}
		}()
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Package cli implements the margin command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
	"github.com/custodia-labs/margin/internal/logger"
)

// version is set at build time.
var version = "dev"

// Persistent flags.
var (
	workspaceFlag string
	verboseFlag   bool
)

// Services used by commands. Set by the bootstrap or directly in tests.
var (
	suggestionService driving.SuggestionService
	actionService     driving.ReviewActionService
	settingsService   driving.SettingsService
	watchService      driving.WatchService
	layout            = domain.NewLayout("")
	closeServices     func() error
)

// Options is what the bootstrap needs to wire a workspace.
type Options struct {
	Workspace string
	Verbose   bool
}

// Services is the set of wired services for one workspace.
type Services struct {
	Suggestions driving.SuggestionService
	Actions     driving.ReviewActionService
	Settings    driving.SettingsService
	Watch       driving.WatchService
	Layout      domain.Layout

	// Close releases stores and waits for background work.
	Close func() error
}

// BootstrapFunc wires services for a workspace.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var bootstrap BootstrapFunc

// SetBootstrap sets the function that wires services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// skipBootstrap marks commands that never touch the workspace.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "margin",
	Short: "Review AI suggestions anchored in markdown documents",
	Long: `margin reviews suggestions stored in sidecar files next to markdown
documents. Suggestions are anchored by heading path and text, so they keep
their place while the document is edited.

Each document dir/name.md owns dir/.margin/name/, which holds the sidecar
name.suggestions.json and the derived advice and flow views.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace root (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if err := shutdown(); err != nil {
			logger.Error("shutdown: %v", err)
		}
	}()
	return rootCmd.Execute()
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	workspace, err := resolveWorkspace(workspaceFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := bootstrap(ctx, Options{Workspace: workspace, Verbose: verboseFlag})
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}

	suggestionService = svc.Suggestions
	actionService = svc.Actions
	settingsService = svc.Settings
	watchService = svc.Watch
	layout = svc.Layout
	closeServices = svc.Close
	return nil
}

func shutdown() error {
	if closeServices == nil {
		return nil
	}
	fn := closeServices
	closeServices = nil
	return fn()
}

func resolveWorkspace(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

// resolveSidecar maps a document or sidecar argument to a cached sidecar.
func resolveSidecar(arg string) (string, error) {
	if suggestionService == nil {
		return "", errors.New("suggestion service not configured")
	}

	path := arg
	if abs, err := filepath.Abs(arg); err == nil {
		path = abs
	}
	if strings.HasSuffix(path, domain.SidecarSuffix) {
		if _, err := suggestionService.DocumentPath(path); err != nil {
			return "", err
		}
		return path, nil
	}
	ref, ok := suggestionService.SidecarForDocument(path)
	if !ok {
		return "", fmt.Errorf("%w: no sidecar for %s (run 'margin init %s')", domain.ErrSidecarNotFound, arg, arg)
	}
	return ref, nil
}

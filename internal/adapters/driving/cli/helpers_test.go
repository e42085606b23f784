package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/margin/internal/core/services/servicetest"
)

const (
	planDoc  = "/ws/plan.md"
	planText = "# Plan\n\nfoo\n\nbar\n"
)

// useWorkspace points the command globals at an in-memory workspace.
func useWorkspace(t *testing.T) *servicetest.Workspace {
	t.Helper()

	w := servicetest.NewWorkspace(t)
	prevSuggestions, prevActions, prevSettings := suggestionService, actionService, settingsService
	prevWatch, prevLayout, prevTerminal := watchService, layout, isTerminal

	suggestionService = w.Store
	actionService = w.Actions
	settingsService = w.Settings
	layout = w.Layout
	isTerminal = func() bool { return false }

	t.Cleanup(func() {
		suggestionService, actionService, settingsService = prevSuggestions, prevActions, prevSettings
		watchService, layout, isTerminal = prevWatch, prevLayout, prevTerminal
	})
	return w
}

// usePlan adds plan.md with two resolvable suggestions and a stale one.
func usePlan(t *testing.T) *servicetest.Workspace {
	t.Helper()

	w := useWorkspace(t)
	w.AddDocument(planDoc, planText,
		servicetest.WithAlternatives(servicetest.Replace("s1", "Plan", "foo", "FOO"), "Foo!"),
		servicetest.Replace("s2", "Plan", "bar", "BAR"),
		servicetest.Replace("s3", "Plan", "missing", "gone"),
	)
	w.Scan(t)
	return w
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func sidecarRef(w *servicetest.Workspace, docPath string) string {
	return w.Layout.SidecarPath(docPath)
}


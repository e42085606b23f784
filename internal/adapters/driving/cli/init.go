package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [document.md...]",
	Short: "Create empty sidecars for documents",
	Long: `Creates the output directory and an empty sidecar for each document.
An existing sidecar is kept as it is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	for _, arg := range args {
		docPath, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		info, err := os.Stat(docPath)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", arg)
		}

		ref, err := suggestionService.InitDocument(cmd.Context(), docPath)
		if err != nil {
			return fmt.Errorf("failed to initialise %s: %w", arg, err)
		}
		cmd.Printf("Initialised %s\n", arg)
		cmd.Printf("  Sidecar: %s\n", ref)
	}
	return nil
}

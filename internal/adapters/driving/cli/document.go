package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/services"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage reviewed documents",
	Long:  `List documents with sidecars, apply batch decisions, and read derived views.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents with suggestions",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentAcceptAllCmd = &cobra.Command{
	Use:   "accept-all [document]",
	Short: "Accept every pending suggestion",
	Long: `Applies every pending suggestion of a document, bottom-most first.
Suggestions whose anchor no longer resolves are skipped and stay pending.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentBatch(domain.ActionAcceptAll),
}

var documentRejectAllCmd = &cobra.Command{
	Use:   "reject-all [document]",
	Short: "Reject every pending suggestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentBatch(domain.ActionRejectAll),
}

var documentPruneCmd = &cobra.Command{
	Use:   "prune [document]",
	Short: "Remove stale suggestions",
	Long: `Removes pending suggestions whose anchor text no longer occurs in the
document. Without an argument every document is pruned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocumentPrune,
}

var documentAdviceCmd = &cobra.Command{
	Use:   "advice [document]",
	Short: "Print the advice view",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentView(domain.ArtifactAdvice),
}

var documentFlowCmd = &cobra.Command{
	Use:   "flow [document]",
	Short: "Print the flow diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentView(domain.ArtifactFlow),
}

var documentRegenerateCmd = &cobra.Command{
	Use:   "regenerate [document]",
	Short: "Regenerate derived views",
	Long:  `Rewrites the advice and flow views. Views edited by hand are left alone.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRegenerate,
}

var documentHistoryCmd = &cobra.Command{
	Use:   "history [document]",
	Short: "Show review decisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentHistory,
}

var documentAdoptCmd = &cobra.Command{
	Use:   "adopt [document] [advice|flow]",
	Short: "Hand a view back to the generator",
	Long: `Marks a view that was written by hand as generated, then regenerates it.
The current content of the view is overwritten.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentAdopt,
}

// historyLimit is a flag for the history command.
var historyLimit int

func init() {
	documentHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum decisions to show (0 = all)")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentAcceptAllCmd)
	documentCmd.AddCommand(documentRejectAllCmd)
	documentCmd.AddCommand(documentPruneCmd)
	documentCmd.AddCommand(documentAdviceCmd)
	documentCmd.AddCommand(documentFlowCmd)
	documentCmd.AddCommand(documentRegenerateCmd)
	documentCmd.AddCommand(documentHistoryCmd)
	documentCmd.AddCommand(documentAdoptCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	summaries := suggestionService.DocumentSummaries()
	if len(summaries) == 0 {
		cmd.Println("No documents with suggestions found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range summaries {
		s := &summaries[i]
		cmd.Printf("  %s\n", s.Name)
		cmd.Printf("    Path:    %s\n", s.DocumentPath)
		cmd.Printf("    Pending: %d of %d\n", s.PendingCount, s.SuggestionCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(summaries))
	return nil
}

func runDocumentBatch(kind domain.ActionKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if actionService == nil {
			return errors.New("action service not configured")
		}

		ref, err := resolveSidecar(args[0])
		if err != nil {
			return err
		}

		result, err := actionService.Dispatch(cmd.Context(), domain.ReviewRequest{Kind: kind, SidecarRef: ref})
		if err != nil {
			return fmt.Errorf("failed to %s: %w", kind, err)
		}

		cmd.Println(services.Summary(result))
		for _, id := range result.Skipped {
			cmd.Printf("  skipped %s\n", id)
		}
		return nil
	}
}

func runDocumentPrune(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return runDocumentBatch(domain.ActionPrune)(cmd, args)
	}
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	n, err := suggestionService.PruneAllStale(cmd.Context())
	cmd.Printf("Pruned %d stale\n", n)
	if err != nil {
		return fmt.Errorf("failed to prune some documents: %w", err)
	}
	return nil
}

func runDocumentView(kind domain.ArtifactKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ref, err := resolveSidecar(args[0])
		if err != nil {
			return err
		}

		view, err := suggestionService.ReadView(cmd.Context(), ref, kind)
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("No %s view for %s.\n", kind, args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s view: %w", kind, err)
		}

		cmd.Print(view.Content)
		return nil
	}
}

func runDocumentRegenerate(cmd *cobra.Command, args []string) error {
	ref, err := resolveSidecar(args[0])
	if err != nil {
		return err
	}
	if err := suggestionService.RegenerateViews(cmd.Context(), ref); err != nil {
		return fmt.Errorf("failed to regenerate views: %w", err)
	}
	cmd.Printf("Views regenerated for %s.\n", args[0])
	return nil
}

func runDocumentHistory(cmd *cobra.Command, args []string) error {
	ref, err := resolveSidecar(args[0])
	if err != nil {
		return err
	}

	decisions, err := suggestionService.History(cmd.Context(), ref, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(decisions) == 0 {
		cmd.Println("No decisions recorded.")
		return nil
	}

	for i := range decisions {
		d := &decisions[i]
		cmd.Printf("  %s  %-8s  %s\n", d.DecidedAt.Format("2006-01-02 15:04:05"), d.Action, d.SuggestionID)
	}
	return nil
}

func runDocumentAdopt(cmd *cobra.Command, args []string) error {
	kind := domain.ArtifactKind(args[1])
	if !kind.IsValid() {
		return fmt.Errorf("unknown view %q (expected advice or flow)", args[1])
	}

	ref, err := resolveSidecar(args[0])
	if err != nil {
		return err
	}
	if err := suggestionService.AdoptView(cmd.Context(), ref, kind); err != nil {
		return fmt.Errorf("failed to adopt %s view: %w", kind, err)
	}
	cmd.Printf("The %s view of %s is generated again.\n", kind, args[0])
	return nil
}

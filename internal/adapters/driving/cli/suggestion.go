package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/margin/internal/core/anchor"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/mutate"
	"github.com/custodia-labs/margin/internal/core/services"
)

var suggestionCmd = &cobra.Command{
	Use:   "suggestion",
	Short: "Review individual suggestions",
	Long:  `List, inspect, accept, or reject single suggestions.`,
}

var suggestionListCmd = &cobra.Command{
	Use:   "list [document]",
	Short: "List suggestions for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestionList,
}

var suggestionShowCmd = &cobra.Command{
	Use:   "show [suggestion-id]",
	Short: "Show a suggestion and its alternatives",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestionShow,
}

var suggestionAcceptCmd = &cobra.Command{
	Use:   "accept [suggestion-id]",
	Short: "Apply a suggestion to its document",
	Long: `Applies the first alternative of a suggestion. Use --alt to pick another
alternative or --text to apply your own edit. When run in a terminal with
several alternatives and no flag, you are asked which one to apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggestionAccept,
}

var suggestionRejectCmd = &cobra.Command{
	Use:   "reject [suggestion-id]",
	Short: "Reject a suggestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestionReject,
}

var suggestionDiffCmd = &cobra.Command{
	Use:   "diff [suggestion-id]",
	Short: "Show the change a suggestion would make",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestionDiff,
}

// Flags for suggestion commands.
var (
	listAll    bool
	acceptText string
	acceptAlt  int
	diffAlt    int
)

// isTerminal reports whether stdin is interactive. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	suggestionListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include accepted and rejected suggestions")
	suggestionAcceptCmd.Flags().StringVarP(&acceptText, "text", "t", "", "Apply this text instead of an alternative")
	suggestionAcceptCmd.Flags().IntVar(&acceptAlt, "alt", 0, "Apply the n-th alternative (1-based)")
	suggestionDiffCmd.Flags().IntVar(&diffAlt, "alt", 0, "Preview the n-th alternative (1-based)")

	suggestionCmd.AddCommand(suggestionListCmd)
	suggestionCmd.AddCommand(suggestionShowCmd)
	suggestionCmd.AddCommand(suggestionAcceptCmd)
	suggestionCmd.AddCommand(suggestionRejectCmd)
	suggestionCmd.AddCommand(suggestionDiffCmd)
	rootCmd.AddCommand(suggestionCmd)
}

func runSuggestionList(cmd *cobra.Command, args []string) error {
	ref, err := resolveSidecar(args[0])
	if err != nil {
		return err
	}

	all, err := suggestionService.Suggestions(ref)
	if err != nil {
		return fmt.Errorf("failed to list suggestions: %w", err)
	}
	text, err := suggestionService.ReadDocument(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	shown := 0
	for i := range all {
		s := &all[i]
		if !listAll && !s.IsPending() {
			continue
		}
		shown++
		cmd.Printf("  %s  %-8s  %-14s  %-12s  %s\n",
			s.ID, s.Status, s.Type, locationLabel(text, s), s.Category.Label())
	}

	if shown == 0 {
		cmd.Println("No pending suggestions.")
		return nil
	}
	cmd.Printf("\nTotal: %d suggestions\n", shown)
	return nil
}

// locationLabel renders where a suggestion currently resolves.
func locationLabel(text string, s *domain.Suggestion) string {
	pos, ok := anchor.ResolveAnchor(text, s.Anchor)
	if !ok {
		return "stale"
	}
	if pos.StartLine == pos.EndLine {
		return fmt.Sprintf("L%d", pos.StartLine)
	}
	return fmt.Sprintf("L%d-%d", pos.StartLine, pos.EndLine)
}

func runSuggestionShow(cmd *cobra.Command, args []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	found, err := suggestionService.FindSuggestionByID(args[0])
	if err != nil {
		return err
	}
	s := &found.Suggestion

	docPath, _ := suggestionService.DocumentPath(found.SidecarRef) //nolint:errcheck // Display only
	cmd.Printf("Suggestion: %s\n\n", s.ID)
	cmd.Printf("  Document: %s\n", docPath)
	cmd.Printf("  Status:   %s\n", s.Status)
	cmd.Printf("  Type:     %s\n", s.Type)
	cmd.Printf("  Category: %s\n", s.Category.Label())
	if len(s.Anchor.HeadingPath) > 0 {
		cmd.Printf("  Section:  %s\n", strings.Join(s.Anchor.HeadingPath, " > "))
	}
	if s.Reasoning != "" {
		cmd.Printf("  Reason:   %s\n", s.Reasoning)
	}

	cmd.Println("\n  Anchor:")
	printIndented(cmd, s.Anchor.TextContent)

	if len(s.Alternatives) == 0 && s.SuggestedText != "" {
		cmd.Println("\n  Suggested:")
		printIndented(cmd, s.SuggestedText)
	}
	for i, alt := range s.Alternatives {
		cmd.Printf("\n  [%d] %s\n", i+1, alt.Label)
		if alt.Reasoning != "" {
			cmd.Printf("      %s\n", alt.Reasoning)
		}
		printIndented(cmd, alt.Text)
	}
	return nil
}

func printIndented(cmd *cobra.Command, text string) {
	for _, line := range strings.Split(text, "\n") {
		cmd.Printf("    | %s\n", line)
	}
}

func runSuggestionAccept(cmd *cobra.Command, args []string) error {
	if actionService == nil || suggestionService == nil {
		return errors.New("action service not configured")
	}

	id := args[0]
	text, err := chooseText(cmd, id, cmd.Flags().Changed("text"), acceptText, acceptAlt)
	if err != nil {
		return err
	}

	result, err := actionService.Dispatch(cmd.Context(), domain.ReviewRequest{
		Kind:         domain.ActionAccept,
		SuggestionID: id,
		Text:         text,
	})
	if err != nil {
		return fmt.Errorf("failed to accept: %w", err)
	}
	cmd.Println(services.Summary(result))
	return nil
}

// chooseText decides which text an accept applies. Nil means the default.
func chooseText(cmd *cobra.Command, id string, hasText bool, text string, alt int) (*string, error) {
	if hasText && alt > 0 {
		return nil, errors.New("--text and --alt cannot be combined")
	}
	if hasText {
		return &text, nil
	}

	found, err := suggestionService.FindSuggestionByID(id)
	if err != nil {
		return nil, err
	}
	s := &found.Suggestion

	if alt > 0 {
		chosen, err := mutate.AlternativeText(s, alt)
		if err != nil {
			return nil, err
		}
		return &chosen, nil
	}

	if len(s.Alternatives) < 2 || !isTerminal() {
		return nil, nil
	}

	cmd.Println("Select an alternative")
	for i, a := range s.Alternatives {
		cmd.Printf("  %d. %s\n", i+1, a.Label)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(bufio.NewReader(cmd.InOrStdin())), len(s.Alternatives), 1)
	chosen := s.Alternatives[idx-1].Text
	return &chosen, nil
}

func runSuggestionReject(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errors.New("action service not configured")
	}

	result, err := actionService.Dispatch(cmd.Context(), domain.ReviewRequest{
		Kind:         domain.ActionReject,
		SuggestionID: args[0],
	})
	if err != nil {
		return fmt.Errorf("failed to reject: %w", err)
	}
	cmd.Println(services.Summary(result))
	return nil
}

func runSuggestionDiff(cmd *cobra.Command, args []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	id := args[0]
	var text *string
	if diffAlt > 0 {
		found, err := suggestionService.FindSuggestionByID(id)
		if err != nil {
			return err
		}
		chosen, err := mutate.AlternativeText(&found.Suggestion, diffAlt)
		if err != nil {
			return err
		}
		text = &chosen
	}

	before, after, err := suggestionService.Preview(cmd.Context(), id, text)
	if err != nil {
		return fmt.Errorf("failed to preview: %w", err)
	}

	name := id
	if found, err := suggestionService.FindSuggestionByID(id); err == nil {
		if p, err := suggestionService.DocumentPath(found.SidecarRef); err == nil {
			name = filepath.Base(p)
		}
	}

	diff, err := unifiedDiff(name, before, after)
	if err != nil {
		return fmt.Errorf("failed to render diff: %w", err)
	}
	cmd.Print(diff)
	return nil
}

func unifiedDiff(name, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
}

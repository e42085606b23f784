package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/services"
)

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one document with a sidecar.
type DocumentOutput struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Sidecar string `json:"sidecar"`
	Pending int    `json:"pending"`
	Total   int    `json:"total"`
}

// ListSuggestionsInput is the input schema for the list_suggestions tool.
type ListSuggestionsInput struct {
	Document   string `json:"document" jsonschema:"path of the markdown document or its sidecar"`
	IncludeAll bool   `json:"include_all,omitempty" jsonschema:"include accepted and rejected suggestions"`
}

// ListSuggestionsOutput is the output schema for the list_suggestions tool.
type ListSuggestionsOutput struct {
	Suggestions []SuggestionOutput `json:"suggestions"`
	Count       int                `json:"count"`
}

// SuggestionOutput is a suggestion as seen by an MCP client.
type SuggestionOutput struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	Type         string              `json:"type"`
	Category     string              `json:"category"`
	HeadingPath  []string            `json:"heading_path,omitempty"`
	Anchor       string              `json:"anchor"`
	Reasoning    string              `json:"reasoning,omitempty"`
	Alternatives []AlternativeOutput `json:"alternatives,omitempty"`
}

// AlternativeOutput is one candidate text.
type AlternativeOutput struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ReviewInput is the input schema for the review tool.
type ReviewInput struct {
	Action       string  `json:"action" jsonschema:"one of accept, reject, accept_all, reject_all, prune"`
	SuggestionID string  `json:"suggestion_id,omitempty" jsonschema:"suggestion id for accept and reject"`
	Document     string  `json:"document,omitempty" jsonschema:"document path for accept_all, reject_all and prune"`
	Text         *string `json:"text,omitempty" jsonschema:"replacement text for accept instead of the first alternative"`
}

// ReviewOutput is the output schema for the review tool.
type ReviewOutput struct {
	Summary  string   `json:"summary"`
	Accepted []string `json:"accepted,omitempty"`
	Skipped  []string `json:"skipped,omitempty"`
	Rejected int      `json:"rejected,omitempty"`
	Pruned   int      `json:"pruned,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List markdown documents that have suggestion sidecars, most pending first",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_suggestions",
		Description: "List the suggestions of one document",
	}, s.handleListSuggestions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "review",
		Description: "Accept or reject a suggestion, or apply a batch action to a document",
	}, s.handleReview)
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	summaries := s.ports.Suggestions.DocumentSummaries()

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(summaries)),
		Count:     len(summaries),
	}
	for i := range summaries {
		output.Documents[i] = documentOutput(&summaries[i])
	}
	return nil, output, nil
}

// handleListSuggestions handles the list_suggestions tool invocation.
func (s *Server) handleListSuggestions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListSuggestionsInput,
) (*mcp.CallToolResult, ListSuggestionsOutput, error) {
	ref, err := s.resolveSidecar(input.Document)
	if err != nil {
		return nil, ListSuggestionsOutput{}, err
	}

	all, err := s.ports.Suggestions.Suggestions(ref)
	if err != nil {
		return nil, ListSuggestionsOutput{}, err
	}

	output := ListSuggestionsOutput{Suggestions: []SuggestionOutput{}}
	for i := range all {
		if !input.IncludeAll && !all[i].IsPending() {
			continue
		}
		output.Suggestions = append(output.Suggestions, suggestionOutput(&all[i]))
	}
	output.Count = len(output.Suggestions)
	return nil, output, nil
}

// handleReview handles the review tool invocation.
func (s *Server) handleReview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReviewInput,
) (*mcp.CallToolResult, ReviewOutput, error) {
	kind, err := domain.ParseActionKind(input.Action)
	if err != nil {
		return nil, ReviewOutput{}, err
	}

	req := domain.ReviewRequest{
		Kind:         kind,
		SuggestionID: strings.TrimSpace(input.SuggestionID),
		Text:         input.Text,
	}
	if !kind.TargetsSuggestion() {
		req.SidecarRef, err = s.resolveSidecar(input.Document)
		if err != nil {
			return nil, ReviewOutput{}, err
		}
	}

	result, err := s.ports.Actions.Dispatch(ctx, req)
	if err != nil {
		return nil, ReviewOutput{}, err
	}

	return nil, ReviewOutput{
		Summary:  services.Summary(result),
		Accepted: result.Accepted,
		Skipped:  result.Skipped,
		Rejected: result.Rejected,
		Pruned:   result.Pruned,
	}, nil
}

// resolveSidecar maps a document path or sidecar path to a cached sidecar.
func (s *Server) resolveSidecar(document string) (string, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return "", fmt.Errorf("%w: document is required", domain.ErrInvalidInput)
	}

	path := filepath.Clean(document)
	if strings.HasSuffix(path, domain.SidecarSuffix) {
		if _, err := s.ports.Suggestions.DocumentPath(path); err != nil {
			return "", err
		}
		return path, nil
	}
	if ref, ok := s.ports.Suggestions.SidecarForDocument(path); ok {
		return ref, nil
	}

	// Accept a bare file name when it is unambiguous.
	var match string
	for _, d := range s.ports.Suggestions.DocumentSummaries() {
		if d.Name != document {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s matches several documents, pass a path", domain.ErrInvalidInput, document)
		}
		match = d.SidecarRef
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrSidecarNotFound, document)
	}
	return match, nil
}

func documentOutput(d *domain.DocumentSummary) DocumentOutput {
	return DocumentOutput{
		Name:    d.Name,
		Path:    d.DocumentPath,
		Sidecar: d.SidecarRef,
		Pending: d.PendingCount,
		Total:   d.SuggestionCount,
	}
}

func suggestionOutput(s *domain.Suggestion) SuggestionOutput {
	out := SuggestionOutput{
		ID:          s.ID,
		Status:      string(s.Status),
		Type:        string(s.Type),
		Category:    string(s.Category),
		HeadingPath: s.Anchor.HeadingPath,
		Anchor:      s.Anchor.TextContent,
		Reasoning:   s.Reasoning,
	}
	for _, a := range s.Alternatives {
		out.Alternatives = append(out.Alternatives, AlternativeOutput{Label: a.Label, Text: a.Text})
	}
	if len(s.Alternatives) == 0 && s.SuggestedText != "" {
		out.Alternatives = []AlternativeOutput{{Label: "Suggested", Text: s.SuggestedText}}
	}
	return out
}

package mcp

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
)

// mockSuggestionService is a mock implementation of the read side of
// driving.SuggestionService. Methods the server never calls panic through
// the embedded nil interface.
type mockSuggestionService struct {
	driving.SuggestionService

	summaries   []domain.DocumentSummary
	suggestions map[string][]domain.Suggestion
	sidecars    map[string]string
	err         error
}

func (m *mockSuggestionService) DocumentSummaries() []domain.DocumentSummary {
	return m.summaries
}

func (m *mockSuggestionService) Suggestions(ref string) ([]domain.Suggestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	all, ok := m.suggestions[ref]
	if !ok {
		return nil, domain.ErrSidecarNotFound
	}
	return all, nil
}

func (m *mockSuggestionService) SidecarForDocument(docPath string) (string, bool) {
	ref, ok := m.sidecars[docPath]
	return ref, ok
}

func (m *mockSuggestionService) DocumentPath(ref string) (string, error) {
	for doc, r := range m.sidecars {
		if r == ref {
			return doc, nil
		}
	}
	return "", domain.ErrSidecarNotFound
}

func (m *mockSuggestionService) FindSuggestionByID(id string) (*domain.LocatedSuggestion, error) {
	for ref, all := range m.suggestions {
		for i := range all {
			if all[i].ID == id {
				return &domain.LocatedSuggestion{SidecarRef: ref, Suggestion: all[i]}, nil
			}
		}
	}
	return nil, domain.ErrSuggestionNotFound
}

// mockActionService is a mock implementation of driving.ReviewActionService.
type mockActionService struct {
	requests []domain.ReviewRequest
	result   *domain.ReviewResult
	err      error
}

func (m *mockActionService) Dispatch(_ context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.ReviewResult{Kind: req.Kind}, nil
}

// newMockPorts returns ports over one document with two pending suggestions
// and one accepted suggestion.
func newMockPorts() (*Ports, *mockSuggestionService, *mockActionService) {
	foo := "FOO"
	suggestions := &mockSuggestionService{
		summaries: []domain.DocumentSummary{
			{Name: "plan.md", DocumentPath: "/ws/plan.md", SidecarRef: "/ws/.margin/plan.suggestions.json",
				SuggestionCount: 3, PendingCount: 2},
		},
		suggestions: map[string][]domain.Suggestion{
			"/ws/.margin/plan.suggestions.json": {
				{
					ID:       "s1",
					Status:   domain.StatusPending,
					Type:     domain.TypeReplace,
					Category: domain.CategoryClarity,
					Anchor:   domain.Anchor{HeadingPath: []string{"Plan"}, TextContent: "foo"},
					Alternatives: []domain.Alternative{
						{Label: "Default", Text: foo},
						{Label: "Option B", Text: "Foo!"},
					},
					Reasoning: "clearer wording",
				},
				{
					ID:            "s2",
					Status:        domain.StatusPending,
					Type:          domain.TypeReplace,
					Category:      domain.CategoryClarity,
					Anchor:        domain.Anchor{TextContent: "bar"},
					SuggestedText: "BAR",
				},
				{
					ID:     "s3",
					Status: domain.StatusAccepted,
					Type:   domain.TypeDelete,
					Anchor: domain.Anchor{TextContent: "baz"},
				},
			},
		},
		sidecars: map[string]string{
			"/ws/plan.md": "/ws/.margin/plan.suggestions.json",
		},
	}
	actions := &mockActionService{}
	return &Ports{Suggestions: suggestions, Actions: actions}, suggestions, actions
}

// Package servicetest wires real services over in-memory stores for
// adapter tests.
package servicetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/services"
	"github.com/custodia-labs/margin/internal/generators"
	"github.com/custodia-labs/margin/internal/logger"
)

// Workspace is a fully wired in-memory workspace.
type Workspace struct {
	Layout    domain.Layout
	Store     *services.SuggestionStore
	Actions   *services.Dispatcher
	Settings  *services.SettingsService
	Docs      *memory.DocumentStore
	Sidecars  *memory.SidecarStore
	Artifacts *memory.ArtifactStore
	Decisions *memory.DecisionStore
	Config    *memory.ConfigStore
}

// NewWorkspace returns an empty workspace. Call AddDocument, then Scan.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()

	w := &Workspace{
		Layout:    domain.NewLayout(""),
		Docs:      memory.NewDocumentStore(),
		Sidecars:  memory.NewSidecarStore(),
		Artifacts: memory.NewArtifactStore(),
		Decisions: memory.NewDecisionStore(),
		Config:    memory.NewConfigStore(),
	}

	pipeline, err := generators.DefaultPipeline(domain.ViewSettings{Advice: true, Flow: true})
	require.NoError(t, err)

	w.Store = services.NewSuggestionStore(w.Docs, w.Sidecars, w.Layout,
		services.WithLogger(logger.Discard()),
		services.WithViews(w.Artifacts, pipeline),
		services.WithDecisions(w.Decisions, domain.HistorySettings{Enabled: true, Keep: 100}),
	)
	w.Actions = services.NewDispatcher(w.Store)
	w.Settings = services.NewSettingsService(w.Config)
	t.Cleanup(func() { _ = w.Store.Close() })
	return w
}

// AddDocument stores a document and its sidecar and returns the sidecar ref.
func (w *Workspace) AddDocument(docPath, text string, suggestions ...domain.Suggestion) string {
	docPath = filepath.FromSlash(docPath)
	ref := w.Layout.SidecarPath(docPath)
	w.Docs.Put(docPath, text)
	w.Sidecars.Put(ref, &domain.SuggestionFile{
		Version:     1,
		SourceFile:  filepath.Base(docPath),
		GeneratedAt: "2026-01-01T00:00:00Z",
		Suggestions: suggestions,
	})
	return ref
}

// Scan loads every sidecar into the store.
func (w *Workspace) Scan(t *testing.T) {
	t.Helper()
	require.NoError(t, w.Store.ScanAll(context.Background()))
}

// Document returns the current text of a document.
func (w *Workspace) Document(t *testing.T, docPath string) string {
	t.Helper()
	text, err := w.Docs.ReadDocument(context.Background(), filepath.FromSlash(docPath))
	require.NoError(t, err)
	return text
}

// Replace builds a pending replace suggestion with one alternative.
func Replace(id, heading, text, replacement string) domain.Suggestion {
	s := domain.Suggestion{
		ID:           id,
		Status:       domain.StatusPending,
		Anchor:       domain.Anchor{TextContent: text},
		Type:         domain.TypeReplace,
		OriginalText: text,
		Alternatives: []domain.Alternative{{ID: id + "-a", Label: "Default", Text: replacement}},
		Reasoning:    "clearer wording",
		Category:     domain.CategoryClarity,
	}
	if heading != "" {
		s.Anchor.HeadingPath = []string{heading}
	}
	return s
}

// WithAlternatives appends extra alternatives to a suggestion.
func WithAlternatives(s domain.Suggestion, texts ...string) domain.Suggestion {
	for i, text := range texts {
		s.Alternatives = append(s.Alternatives, domain.Alternative{
			ID:    s.ID + "-alt" + string(rune('b'+i)),
			Label: "Option " + string(rune('B'+i)),
			Text:  text,
		})
	}
	return s
}

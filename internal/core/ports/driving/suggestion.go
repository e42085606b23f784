package driving

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// SuggestionService owns the suggestion lifecycle for a workspace.
// Used by the CLI, TUI, MCP server and file watcher.
type SuggestionService interface {
	// ScanAll loads every sidecar in the workspace and replaces the cache.
	// Files that fail to load are logged and left out.
	ScanAll(ctx context.Context) error

	// LoadFile (re)loads one sidecar. On failure the cache entry is dropped
	// and an error wrapping domain.ErrLoadParse is returned.
	LoadFile(ctx context.Context, ref string) error

	// RemoveFile drops a sidecar from the cache.
	RemoveFile(ctx context.Context, ref string)

	// InitDocument creates an empty sidecar for a document if none exists,
	// loads it and returns its reference.
	InitDocument(ctx context.Context, docPath string) (string, error)

	// Accept applies a suggestion's default text to its document.
	Accept(ctx context.Context, id string) error

	// AcceptWith applies caller-supplied text instead of the default.
	AcceptWith(ctx context.Context, id, text string) error

	// Reject marks a suggestion rejected without touching the document.
	Reject(ctx context.Context, id string) error

	// AcceptAll applies every pending suggestion of a sidecar bottom-up,
	// re-resolving after each edit, with one document and one sidecar write.
	AcceptAll(ctx context.Context, ref string) (*domain.BatchResult, error)

	// RejectAll rejects every pending suggestion of a sidecar.
	RejectAll(ctx context.Context, ref string) (int, error)

	// PruneStale removes pending suggestions whose anchor no longer resolves.
	PruneStale(ctx context.Context, ref string) (int, error)

	// PruneAllStale prunes every cached sidecar.
	PruneAllStale(ctx context.Context) (int, error)

	// Preview returns the document text before and after applying a suggestion.
	// A nil text means the default text. Nothing is written.
	Preview(ctx context.Context, id string, text *string) (before, after string, err error)

	// RegenerateViews rewrites the derived views of a sidecar now.
	RegenerateViews(ctx context.Context, ref string) error

	// ReadView returns a derived view of a sidecar.
	ReadView(ctx context.Context, ref string, kind domain.ArtifactKind) (*domain.Artifact, error)

	// AdoptView hands an external view back to the generator and regenerates it.
	AdoptView(ctx context.Context, ref string, kind domain.ArtifactKind) error

	// History returns recorded decisions for a sidecar, newest first.
	History(ctx context.Context, ref string, limit int) ([]domain.Decision, error)

	// FindSuggestionByID returns a suggestion and its sidecar.
	FindSuggestionByID(id string) (*domain.LocatedSuggestion, error)

	// Suggestions returns all suggestions of a sidecar.
	Suggestions(ref string) ([]domain.Suggestion, error)

	// PendingForDocument returns pending suggestions for a document path.
	PendingForDocument(docPath string) []domain.Suggestion

	// SidecarForDocument returns the sidecar reference of a document.
	SidecarForDocument(docPath string) (string, bool)

	// DocumentPath returns the document a sidecar belongs to.
	DocumentPath(ref string) (string, error)

	// ReadDocument returns the current text of a sidecar's document.
	ReadDocument(ctx context.Context, ref string) (string, error)

	// DocumentSummaries lists cached sidecars, most pending first.
	DocumentSummaries() []domain.DocumentSummary

	// Subscribe registers an observer called after each persisted change.
	// The returned function unsubscribes.
	Subscribe(fn func(domain.ChangeEvent)) func()

	// Close waits for outstanding view regeneration.
	Close() error
}

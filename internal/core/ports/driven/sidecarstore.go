package driven

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// SidecarStore persists suggestion files. Files are always read and
// written whole; there are no partial updates.
type SidecarStore interface {
	// ListSidecars returns references to every sidecar in the workspace.
	ListSidecars(ctx context.Context) ([]string, error)

	// ReadSidecar reads and decodes a sidecar.
	// Returns domain.ErrNotFound if it does not exist and domain.ErrLoadParse
	// if it is not valid JSON.
	ReadSidecar(ctx context.Context, ref string) (*domain.SuggestionFile, error)

	// WriteSidecar atomically replaces a sidecar.
	WriteSidecar(ctx context.Context, ref string, file *domain.SuggestionFile) error

	// CreateSidecar writes file only if no sidecar exists at ref.
	// Returns false when an existing sidecar was kept.
	CreateSidecar(ctx context.Context, ref string, file *domain.SuggestionFile) (bool, error)
}

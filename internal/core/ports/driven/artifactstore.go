package driven

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// ArtifactStore persists derived views next to a sidecar together with
// a provenance record for each view.
type ArtifactStore interface {
	// ReadArtifact returns a view and its provenance.
	// A view file without a provenance record is reported as external.
	// Returns domain.ErrNotFound if the view does not exist.
	ReadArtifact(ctx context.Context, sidecarRef string, kind domain.ArtifactKind) (*domain.Artifact, error)

	// WriteArtifact writes a view and records its provenance.
	WriteArtifact(ctx context.Context, sidecarRef string, artifact *domain.Artifact) error

	// SetProvenance changes the provenance record without touching content.
	SetProvenance(ctx context.Context, sidecarRef string, kind domain.ArtifactKind, p domain.Provenance) error
}

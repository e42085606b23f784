package driven

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// ViewGenerator turns a document and its suggestions into one derived view.
// Generators are pure: they never touch storage.
type ViewGenerator interface {
	// Kind returns the artifact kind the generator produces.
	Kind() domain.ArtifactKind

	// Generate renders the view.
	Generate(ctx context.Context, in *domain.ViewInput) (string, error)
}

// ViewPipeline runs the configured generators.
type ViewPipeline interface {
	// Generate renders every configured view for the input, in order.
	Generate(ctx context.Context, in *domain.ViewInput) ([]domain.Artifact, error)
}

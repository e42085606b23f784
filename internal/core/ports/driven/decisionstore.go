package driven

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// DecisionStore keeps a history of review decisions.
type DecisionStore interface {
	// Record appends a decision.
	Record(ctx context.Context, d *domain.Decision) error

	// List returns decisions for a sidecar, newest first.
	// A limit of 0 or less returns all of them.
	List(ctx context.Context, sidecarRef string, limit int) ([]domain.Decision, error)

	// Prune keeps the newest keep decisions for a sidecar and deletes the rest.
	// Returns the number deleted.
	Prune(ctx context.Context, sidecarRef string, keep int) (int, error)
}

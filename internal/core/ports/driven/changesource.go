package driven

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// ChangeSource reports file changes in the workspace.
type ChangeSource interface {
	// Watch starts watching and returns a channel of changes.
	// The channel is closed when ctx is cancelled or the source is closed.
	Watch(ctx context.Context) (<-chan domain.WorkspaceChange, error)

	// Close releases watcher resources. It is safe to call more than once.
	Close() error
}

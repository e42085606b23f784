package driving

import "context"

// WatchService keeps the suggestion cache in step with the workspace.
type WatchService interface {
	// Start watches until ctx is cancelled or Stop is called.
	// It blocks; calling it while running is a no-op.
	Start(ctx context.Context) error

	// Stop ends a running Start.
	Stop() error
}

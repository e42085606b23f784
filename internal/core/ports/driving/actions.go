package driving

import (
	"context"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// ReviewActionService is the single entry point front-ends use to change
// suggestion state. Requests come from untrusted input (key presses,
// MCP tool calls) and are validated against the closed action set.
// This is used by TUI and MCP adapters.
type ReviewActionService interface {
	// Dispatch validates and performs a review request.
	Dispatch(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error)
}

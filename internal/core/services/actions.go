package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
)

// Ensure Dispatcher implements the interface.
var _ driving.ReviewActionService = (*Dispatcher)(nil)

// Dispatcher routes validated review requests to the suggestion service.
// It is the only path from the TUI and MCP front-ends into the store.
type Dispatcher struct {
	suggestions driving.SuggestionService
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(suggestions driving.SuggestionService) *Dispatcher {
	return &Dispatcher{suggestions: suggestions}
}

// Dispatch validates req and performs it.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &domain.ReviewResult{Kind: req.Kind}
	switch req.Kind {
	case domain.ActionAccept:
		var err error
		if req.Text != nil {
			err = d.suggestions.AcceptWith(ctx, req.SuggestionID, *req.Text)
		} else {
			err = d.suggestions.Accept(ctx, req.SuggestionID)
		}
		if err != nil {
			return nil, err
		}
		result.Accepted = []string{req.SuggestionID}

	case domain.ActionReject:
		if err := d.suggestions.Reject(ctx, req.SuggestionID); err != nil {
			return nil, err
		}
		result.Rejected = 1

	case domain.ActionAcceptAll:
		batch, err := d.suggestions.AcceptAll(ctx, req.SidecarRef)
		if err != nil {
			return nil, err
		}
		result.Accepted = batch.Accepted
		result.Skipped = batch.Skipped

	case domain.ActionRejectAll:
		n, err := d.suggestions.RejectAll(ctx, req.SidecarRef)
		if err != nil {
			return nil, err
		}
		result.Rejected = n

	case domain.ActionPrune:
		n, err := d.suggestions.PruneStale(ctx, req.SidecarRef)
		if err != nil {
			return nil, err
		}
		result.Pruned = n

	default:
		// Unreachable after Validate.
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, req.Kind)
	}
	return result, nil
}

// Summary renders a one-line description of a result.
func Summary(r *domain.ReviewResult) string {
	switch r.Kind {
	case domain.ActionAccept:
		if len(r.Accepted) == 1 {
			return "Accepted " + r.Accepted[0]
		}
		return "Accepted"
	case domain.ActionReject:
		return "Rejected"
	case domain.ActionAcceptAll:
		return fmt.Sprintf("Accepted %d, skipped %d", len(r.Accepted), len(r.Skipped))
	case domain.ActionRejectAll:
		return fmt.Sprintf("Rejected %d", r.Rejected)
	case domain.ActionPrune:
		return fmt.Sprintf("Pruned %d stale", r.Pruned)
	default:
		return string(r.Kind)
	}
}

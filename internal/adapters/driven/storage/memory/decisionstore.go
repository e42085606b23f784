package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure DecisionStore implements the interface.
var _ driven.DecisionStore = (*DecisionStore)(nil)

// DecisionStore is an in-memory implementation of driven.DecisionStore.
type DecisionStore struct {
	mu        sync.RWMutex
	decisions []domain.Decision

	// RecordErr makes Record fail.
	RecordErr error
}

// NewDecisionStore creates a new in-memory decision store.
func NewDecisionStore() *DecisionStore {
	return &DecisionStore{}
}

// Record appends a decision.
func (s *DecisionStore) Record(_ context.Context, d *domain.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RecordErr != nil {
		return s.RecordErr
	}
	s.decisions = append(s.decisions, *d)
	return nil
}

// List returns decisions for a sidecar, newest first.
func (s *DecisionStore) List(_ context.Context, ref string, limit int) ([]domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(ref, limit), nil
}

func (s *DecisionStore) listLocked(ref string, limit int) []domain.Decision {
	var out []domain.Decision
	for i := len(s.decisions) - 1; i >= 0; i-- {
		if s.decisions[i].SidecarRef == ref {
			out = append(out, s.decisions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DecidedAt.After(out[j].DecidedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Prune keeps the newest keep decisions for a sidecar.
func (s *DecisionStore) Prune(_ context.Context, ref string, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make(map[string]struct{})
	for _, d := range s.listLocked(ref, keep) {
		kept[d.ID] = struct{}{}
	}
	var out []domain.Decision
	removed := 0
	for _, d := range s.decisions {
		if d.SidecarRef == ref {
			if _, ok := kept[d.ID]; !ok {
				removed++
				continue
			}
		}
		out = append(out, d)
	}
	s.decisions = out
	return removed, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
	"github.com/custodia-labs/margin/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService feeds workspace changes into the suggestion store.
//
// Sidecar removals are applied at once. Every other relevant change is
// debounced; a batch reloads the touched sidecars, or re-scans the whole
// workspace when it contains a document or flow view change. Re-scans are
// rate limited.
type WatchService struct {
	source   driven.ChangeSource
	store    driving.SuggestionService
	layout   domain.Layout
	settings domain.WatchSettings
	log      *logger.Logger
	limiter  *rate.Limiter

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewWatchService creates a watch service.
func NewWatchService(
	source driven.ChangeSource,
	store driving.SuggestionService,
	layout domain.Layout,
	settings domain.WatchSettings,
	log *logger.Logger,
) *WatchService {
	if log == nil {
		log = logger.Default()
	}
	perSecond := settings.MaxRescansPerSecond
	if perSecond <= 0 {
		perSecond = domain.DefaultMaxRescansPerSecond
	}
	if settings.DebounceMS <= 0 {
		settings.DebounceMS = domain.DefaultDebounceMS
	}
	return &WatchService{
		source:   source,
		store:    store,
		layout:   layout,
		settings: settings,
		log:      log,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Start watches until ctx is cancelled, Stop is called or the source closes.
func (w *WatchService) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	changes, err := w.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}

	batches := make(chan []domain.WorkspaceChange, 1)
	debouncer := NewBatchDebouncer(w.settings.Debounce(), func(batch []domain.WorkspaceChange) {
		select {
		case batches <- batch:
		case <-stopCh:
		case <-ctx.Done():
		}
	})
	defer debouncer.Cancel()

	w.log.Info("watching workspace (debounce %s)", w.settings.Debounce())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			w.route(ctx, change, debouncer)
		case batch := <-batches:
			if err := w.apply(ctx, batch); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Warn("apply changes: %v", err)
			}
		}
	}
}

// Stop ends a running Start.
func (w *WatchService) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return nil
}

func (w *WatchService) route(ctx context.Context, change domain.WorkspaceChange, debouncer *BatchDebouncer) {
	switch w.layout.Role(change.Path) {
	case domain.RoleSidecar:
		if change.Deleted {
			w.log.Debug("sidecar removed: %s", change.Path)
			w.store.RemoveFile(ctx, change.Path)
			return
		}
		debouncer.Add(change)
	case domain.RoleDocument, domain.RoleFlowView:
		debouncer.Add(change)
	}
}

// apply runs one debounced batch.
func (w *WatchService) apply(ctx context.Context, batch []domain.WorkspaceChange) error {
	scan, refs := planBatch(w.layout, batch)
	if scan {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		w.log.Debug("re-scanning after %d changes", len(batch))
		return w.store.ScanAll(ctx)
	}

	var errs []error
	for _, ref := range refs {
		if err := w.store.LoadFile(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// planBatch decides what a batch needs: a full scan, or a reload of each
// distinct sidecar in path order.
func planBatch(layout domain.Layout, batch []domain.WorkspaceChange) (bool, []string) {
	seen := make(map[string]struct{})
	var refs []string
	for _, c := range batch {
		switch layout.Role(c.Path) {
		case domain.RoleDocument, domain.RoleFlowView:
			return true, nil
		case domain.RoleSidecar:
			if _, ok := seen[c.Path]; !ok {
				seen[c.Path] = struct{}{}
				refs = append(refs, c.Path)
			}
		}
	}
	sort.Strings(refs)
	return false, refs
}

package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/margin/internal/core/domain"
)

// BatchDebouncer collects changes and emits them as one batch once no new
// change has arrived for the delay. Each Add restarts the window.
type BatchDebouncer struct {
	delay   time.Duration
	timer   *time.Timer
	mu      sync.Mutex
	changes []domain.WorkspaceChange
	emit    func([]domain.WorkspaceChange)
}

// NewBatchDebouncer creates a new batch debouncer.
func NewBatchDebouncer(delay time.Duration, emit func([]domain.WorkspaceChange)) *BatchDebouncer {
	return &BatchDebouncer{
		delay: delay,
		emit:  emit,
	}
}

// Add adds a change to the batch and restarts the window.
func (b *BatchDebouncer) Add(change domain.WorkspaceChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.changes = append(b.changes, change)

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

// flush emits collected changes.
func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.timer = nil
	b.mu.Unlock()

	if len(changes) > 0 && b.emit != nil {
		b.emit(changes)
	}
}

// Cancel drops any pending batch.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.changes = nil
}

// Flush immediately emits any pending changes.
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// Pending returns the number of buffered changes.
func (b *BatchDebouncer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}

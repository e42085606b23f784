package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// WriteErr, when set, is returned by every write.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]string
	writes    int

	// WriteErr makes WriteDocument fail without changing state.
	WriteErr error

	// FailAfter makes writes fail once this many have succeeded. Zero disables it.
	FailAfter int
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Put seeds a document.
func (s *DocumentStore) Put(path, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[path] = text
}

// ReadDocument returns the full text of a document.
func (s *DocumentStore) ReadDocument(_ context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.documents[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

// WriteDocument replaces the document's text.
func (s *DocumentStore) WriteDocument(_ context.Context, path, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if s.FailAfter > 0 && s.writes >= s.FailAfter {
		return errWriteLimit
	}
	s.documents[path] = text
	s.writes++
	return nil
}

// Writes returns the number of successful writes.
func (s *DocumentStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

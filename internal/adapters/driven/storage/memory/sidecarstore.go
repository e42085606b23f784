package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure SidecarStore implements the interface.
var _ driven.SidecarStore = (*SidecarStore)(nil)

// SidecarStore is an in-memory implementation of driven.SidecarStore.
// Sidecars are held as raw JSON so tests can seed malformed files.
type SidecarStore struct {
	mu       sync.RWMutex
	sidecars map[string][]byte
	writes   int

	// WriteErr makes WriteSidecar fail without changing state.
	WriteErr error
}

// NewSidecarStore creates a new in-memory sidecar store.
func NewSidecarStore() *SidecarStore {
	return &SidecarStore{
		sidecars: make(map[string][]byte),
	}
}

// PutRaw seeds a sidecar with raw bytes.
func (s *SidecarStore) PutRaw(ref string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidecars[ref] = data
}

// Put seeds a sidecar.
func (s *SidecarStore) Put(ref string, file *domain.SuggestionFile) {
	data, err := json.Marshal(file)
	if err != nil {
		panic(err)
	}
	s.PutRaw(ref, data)
}

// Delete removes a sidecar.
func (s *SidecarStore) Delete(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sidecars, ref)
}

// ListSidecars returns all sidecar references in sorted order.
func (s *SidecarStore) ListSidecars(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]string, 0, len(s.sidecars))
	for ref := range s.sidecars {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}

// ReadSidecar decodes a sidecar.
func (s *SidecarStore) ReadSidecar(_ context.Context, ref string) (*domain.SuggestionFile, error) {
	s.mu.RLock()
	data, ok := s.sidecars[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	var file domain.SuggestionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoadParse, err)
	}
	return &file, nil
}

// WriteSidecar replaces a sidecar.
func (s *SidecarStore) WriteSidecar(_ context.Context, ref string, file *domain.SuggestionFile) error {
	data, err := json.Marshal(file)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.sidecars[ref] = data
	s.writes++
	return nil
}

// CreateSidecar writes file only if ref is unused.
func (s *SidecarStore) CreateSidecar(ctx context.Context, ref string, file *domain.SuggestionFile) (bool, error) {
	s.mu.RLock()
	_, exists := s.sidecars[ref]
	s.mu.RUnlock()
	if exists {
		return false, nil
	}
	if err := s.WriteSidecar(ctx, ref, file); err != nil {
		return false, err
	}
	return true, nil
}

// Writes returns the number of successful writes.
func (s *SidecarStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

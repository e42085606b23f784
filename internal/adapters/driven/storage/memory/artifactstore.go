package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

type artifactKey struct {
	ref  string
	kind domain.ArtifactKind
}

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
type ArtifactStore struct {
	mu         sync.RWMutex
	content    map[artifactKey]string
	provenance map[artifactKey]domain.Provenance
	writes     int
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		content:    make(map[artifactKey]string),
		provenance: make(map[artifactKey]domain.Provenance),
	}
}

// PutExternal seeds a view with no provenance record, as a human would.
func (s *ArtifactStore) PutExternal(ref string, kind domain.ArtifactKind, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[artifactKey{ref, kind}] = content
}

// ReadArtifact returns a view and its provenance.
func (s *ArtifactStore) ReadArtifact(_ context.Context, ref string, kind domain.ArtifactKind) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := artifactKey{ref, kind}
	content, ok := s.content[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p, ok := s.provenance[key]
	if !ok {
		p = domain.ProvenanceExternal
	}
	return &domain.Artifact{Kind: kind, Content: content, Provenance: p}, nil
}

// WriteArtifact stores a view and its provenance.
func (s *ArtifactStore) WriteArtifact(_ context.Context, ref string, a *domain.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := artifactKey{ref, a.Kind}
	s.content[key] = a.Content
	s.provenance[key] = a.Provenance
	s.writes++
	return nil
}

// SetProvenance changes a provenance record.
func (s *ArtifactStore) SetProvenance(_ context.Context, ref string, kind domain.ArtifactKind, p domain.Provenance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provenance[artifactKey{ref, kind}] = p
	return nil
}

// Writes returns the number of view writes.
func (s *ArtifactStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

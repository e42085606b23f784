package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// manifestEntry is one record in <base>.views.json.
type manifestEntry struct {
	SourceGenerator domain.Provenance `json:"sourceGenerator"`
	UpdatedAt       string            `json:"updatedAt,omitempty"`
}

type manifest map[domain.ArtifactKind]manifestEntry

// ArtifactStore writes derived views next to their sidecar and tracks
// provenance in a manifest file.
type ArtifactStore struct {
	layout domain.Layout
	now    func() time.Time

	// mu serialises manifest read-modify-write.
	mu sync.Mutex
}

// NewArtifactStore creates an artifact store.
func NewArtifactStore(layout domain.Layout) *ArtifactStore {
	return &ArtifactStore{layout: layout, now: time.Now}
}

// ReadArtifact returns a view and its provenance.
func (s *ArtifactStore) ReadArtifact(_ context.Context, ref string, kind domain.ArtifactKind) (*domain.Artifact, error) {
	data, err := os.ReadFile(s.layout.ArtifactPath(ref, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s view", domain.ErrNotFound, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s view: %w", kind, err)
	}

	s.mu.Lock()
	m, err := s.readManifest(ref)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p := domain.ProvenanceExternal
	if entry, ok := m[kind]; ok && entry.SourceGenerator != "" {
		p = entry.SourceGenerator
	}
	return &domain.Artifact{Kind: kind, Content: string(data), Provenance: p}, nil
}

// WriteArtifact writes a view and records its provenance.
func (s *ArtifactStore) WriteArtifact(_ context.Context, ref string, a *domain.Artifact) error {
	if err := writeFileAtomic(s.layout.ArtifactPath(ref, a.Kind), []byte(a.Content)); err != nil {
		return fmt.Errorf("write %s view: %w", a.Kind, err)
	}
	return s.updateManifest(ref, a.Kind, a.Provenance)
}

// SetProvenance changes the provenance record of a view.
func (s *ArtifactStore) SetProvenance(_ context.Context, ref string, kind domain.ArtifactKind, p domain.Provenance) error {
	return s.updateManifest(ref, kind, p)
}

func (s *ArtifactStore) updateManifest(ref string, kind domain.ArtifactKind, p domain.Provenance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.readManifest(ref)
	if err != nil {
		return err
	}
	m[kind] = manifestEntry{SourceGenerator: p, UpdatedAt: s.now().UTC().Format(time.RFC3339)}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(s.layout.ManifestPath(ref), buf.Bytes()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// readManifest returns an empty manifest when the file is missing or corrupt.
// A corrupt manifest therefore makes every existing view external.
func (s *ArtifactStore) readManifest(ref string) (manifest, error) {
	data, err := os.ReadFile(s.layout.ManifestPath(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := manifest{}
	if json.Unmarshal(data, &m) != nil {
		return manifest{}, nil
	}
	return m, nil
}

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore reads and writes markdown documents on disk.
type DocumentStore struct{}

// NewDocumentStore creates a document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// ReadDocument returns the full text of a document.
func (s *DocumentStore) ReadDocument(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

// WriteDocument atomically replaces the document's text.
func (s *DocumentStore) WriteDocument(_ context.Context, path, text string) error {
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

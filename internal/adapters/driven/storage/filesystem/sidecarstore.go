package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure SidecarStore implements the interface.
var _ driven.SidecarStore = (*SidecarStore)(nil)

// skipDirs are never descended into when discovering sidecars.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// SidecarStore reads and writes *.suggestions.json files under a root.
// References are absolute file paths.
type SidecarStore struct {
	root   string
	layout domain.Layout
}

// NewSidecarStore creates a sidecar store rooted at the workspace directory.
func NewSidecarStore(root string, layout domain.Layout) (*SidecarStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	return &SidecarStore{root: abs, layout: layout}, nil
}

// Root returns the workspace directory.
func (s *SidecarStore) Root() string {
	return s.root
}

// ListSidecars walks the workspace for sidecar files.
func (s *SidecarStore) ListSidecars(ctx context.Context) ([]string, error) {
	var refs []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() && path != s.root {
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if s.layout.IsSidecar(path) {
			refs = append(refs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk workspace: %w", err)
	}
	sort.Strings(refs)
	return refs, nil
}

// ReadSidecar reads and decodes a sidecar.
func (s *SidecarStore) ReadSidecar(_ context.Context, ref string) (*domain.SuggestionFile, error) {
	data, err := os.ReadFile(ref)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	var file domain.SuggestionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoadParse, ref, err)
	}
	return &file, nil
}

// WriteSidecar atomically replaces a sidecar.
func (s *SidecarStore) WriteSidecar(_ context.Context, ref string, file *domain.SuggestionFile) error {
	data, err := encodeSidecar(file)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(ref, data); err != nil {
		return fmt.Errorf("write sidecar %s: %w", ref, err)
	}
	return nil
}

// CreateSidecar writes file only if ref does not exist.
func (s *SidecarStore) CreateSidecar(_ context.Context, ref string, file *domain.SuggestionFile) (bool, error) {
	data, err := encodeSidecar(file)
	if err != nil {
		return false, err
	}
	created, err := createFileExclusive(ref, data)
	if err != nil {
		return false, fmt.Errorf("create sidecar %s: %w", ref, err)
	}
	return created, nil
}

// encodeSidecar renders pretty-printed JSON with a trailing newline.
func encodeSidecar(file *domain.SuggestionFile) ([]byte, error) {
	if file.Suggestions == nil {
		clone := *file
		clone.Suggestions = []domain.Suggestion{}
		file = &clone
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encode sidecar: %w", err)
	}
	return buf.Bytes(), nil
}

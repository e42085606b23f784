// Package filesystem watches a local workspace for changes to markdown
// documents, sidecars and derived views.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeSource = (*Watcher)(nil)

// skipDirs are never watched.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// Watcher reports file changes under a root directory using fsnotify.
// Directories created after Watch starts are added as they appear.
type Watcher struct {
	root   string
	layout domain.Layout
	log    *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a watcher for root.
func New(root string, layout domain.Layout, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Default()
	}
	return &Watcher{root: root, layout: layout, log: log}
}

// Watch starts watching. The returned channel closes when ctx is
// cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.WorkspaceChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}
	if w.watcher != nil {
		return nil, errors.New("watcher is already running")
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addRecursive(fw, w.root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w.watcher = fw

	out := make(chan domain.WorkspaceChange, 64)
	go w.loop(ctx, fw, out)
	return out, nil
}

// Close stops watching. It is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- domain.WorkspaceChange) {
	defer close(out)
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher: %v", err)
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) && !w.ignored(event.Name) {
				if err := w.addRecursive(fw, event.Name); err != nil {
					w.log.Warn("watch %s: %v", event.Name, err)
				}
				// Files written before the directory was watched would be missed.
				for _, change := range w.existing(event.Name) {
					if !send(ctx, out, change) {
						return
					}
				}
				continue
			}
			if change := w.handleFsEvent(event); change != nil {
				if !send(ctx, out, *change) {
					return
				}
			}
		}
	}
}

// handleFsEvent converts an fsnotify event into a change, or nil when the
// event is irrelevant.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.WorkspaceChange {
	if w.ignored(event.Name) {
		return nil
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.WorkspaceChange{Path: event.Name, Deleted: true}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if isDir(event.Name) {
			return nil
		}
		return &domain.WorkspaceChange{Path: event.Name}
	default:
		return nil
	}
}

// existing lists relevant files already present under dir.
func (w *Watcher) existing(dir string) []domain.WorkspaceChange {
	var changes []domain.WorkspaceChange
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.ignored(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && w.layout.Role(path) != domain.RoleOther {
			changes = append(changes, domain.WorkspaceChange{Path: path})
		}
		return nil
	})
	return changes
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// ignored reports whether path sits in a skipped or hidden directory, or
// is itself hidden. The sidecar directory is hidden by default but watched.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if _, skip := skipDirs[part]; skip {
			return true
		}
		if isHidden(part) && part != w.layout.SidecarDir {
			return true
		}
	}
	return false
}

// isHidden reports whether a single path element is a dotfile.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func send(ctx context.Context, out chan<- domain.WorkspaceChange, change domain.WorkspaceChange) bool {
	select {
	case out <- change:
		return true
	case <-ctx.Done():
		return false
	}
}

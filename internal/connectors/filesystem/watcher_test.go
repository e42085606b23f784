package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/logger"
)

const waitFor = 2 * time.Second

func newWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w := New(root, domain.NewLayout(""), logger.Discard())
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// next waits for a change on path, skipping unrelated events.
func next(t *testing.T, ch <-chan domain.WorkspaceChange, path string) domain.WorkspaceChange {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case c, ok := <-ch:
			require.True(t, ok, "channel closed")
			if c.Path == path {
				return c
			}
		case <-deadline:
			t.Fatalf("timeout waiting for change on %s", path)
		}
	}
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports document writes", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := newWatcher(t, root).Watch(ctx)
		require.NoError(t, err)

		doc := filepath.Join(root, "plan.md")
		require.NoError(t, os.WriteFile(doc, []byte("# Plan\n"), 0o644))

		c := next(t, ch, doc)
		assert.False(t, c.Deleted)
	})

	t.Run("reports deletions", func(t *testing.T) {
		root := t.TempDir()
		doc := filepath.Join(root, "plan.md")
		require.NoError(t, os.WriteFile(doc, []byte("# Plan\n"), 0o644))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := newWatcher(t, root).Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(doc))
		c := next(t, ch, doc)
		assert.True(t, c.Deleted)
	})

	t.Run("watches the sidecar directory created later", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := newWatcher(t, root).Watch(ctx)
		require.NoError(t, err)

		dir := filepath.Join(root, ".margin", "plan")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		sidecar := filepath.Join(dir, "plan.suggestions.json")
		require.NoError(t, os.WriteFile(sidecar, []byte("{}"), 0o644))

		c := next(t, ch, sidecar)
		assert.False(t, c.Deleted)
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		w := newWatcher(t, "/non/existent/path")

		ch, err := w.Watch(context.Background())

		assert.Error(t, err)
		assert.Nil(t, ch)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())

		ch, err := newWatcher(t, root).Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-ch:
			if ok {
				for range ch {
				}
			}
		case <-time.After(waitFor):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := newWatcher(t, t.TempDir())
		require.NoError(t, w.Close())

		ch, err := w.Watch(context.Background())

		assert.Error(t, err)
		assert.Nil(t, ch)
		assert.Contains(t, err.Error(), "closed")
	})
}

func TestWatcher_Close(t *testing.T) {
	w := New(t.TempDir(), domain.NewLayout(""), nil)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestHandleFsEvent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plan.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	dir := filepath.Join(root, "docs")
	require.NoError(t, os.Mkdir(dir, 0o755))
	sidecar := filepath.Join(root, ".margin", "plan", "plan.suggestions.json")
	temp := filepath.Join(root, ".margin", "plan", ".plan.suggestions.json.tmp-1")

	w := New(root, domain.NewLayout(""), nil)

	tests := []struct {
		name    string
		path    string
		op      fsnotify.Op
		want    bool
		deleted bool
	}{
		{"create file", file, fsnotify.Create, true, false},
		{"write file", file, fsnotify.Write, true, false},
		{"write and chmod", file, fsnotify.Write | fsnotify.Chmod, true, false},
		{"remove file", filepath.Join(root, "gone.md"), fsnotify.Remove, true, true},
		{"rename file", filepath.Join(root, "moved.md"), fsnotify.Rename, true, true},
		{"chmod only", file, fsnotify.Chmod, false, false},
		{"create directory", dir, fsnotify.Create, false, false},
		{"sidecar dir is watched", sidecar, fsnotify.Remove, true, true},
		{"atomic temp file", temp, fsnotify.Create, false, false},
		{"hidden dir", filepath.Join(root, ".obsidian", "a.md"), fsnotify.Write, false, false},
		{"git dir", filepath.Join(root, ".git", "HEAD"), fsnotify.Write, false, false},
		{"node_modules", filepath.Join(root, "node_modules", "x", "README.md"), fsnotify.Remove, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			if !tt.want {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.path, change.Path)
			assert.Equal(t, tt.deleted, change.Deleted)
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".margin"))
	assert.True(t, isHidden(".git"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
	assert.False(t, isHidden("plan.md"))
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("creates sidecar", func(t *testing.T) {
		w := useWorkspace(t)
		doc := filepath.Join(t.TempDir(), "notes.md")
		require.NoError(t, os.WriteFile(doc, []byte("# Notes\n"), 0o600))

		out, err := execute(t, "init", doc)
		require.NoError(t, err)
		assert.Contains(t, out, "Initialised "+doc)
		assert.Contains(t, out, w.Layout.SidecarPath(doc))

		ref, ok := w.Store.SidecarForDocument(doc)
		require.True(t, ok)
		all, err := w.Store.Suggestions(ref)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("missing document", func(t *testing.T) {
		useWorkspace(t)

		_, err := execute(t, "init", filepath.Join(t.TempDir(), "absent.md"))
		assert.ErrorContains(t, err, "failed to read document")
	})

	t.Run("directory", func(t *testing.T) {
		useWorkspace(t)

		_, err := execute(t, "init", t.TempDir())
		assert.ErrorContains(t, err, "is a directory")
	})
}

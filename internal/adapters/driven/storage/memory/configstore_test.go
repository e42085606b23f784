package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("workspace.sidecar_dir", ".review"))
	require.NoError(t, store.Set("watch.debounce_ms", int64(250)))
	require.NoError(t, store.Set("views.flow", false))
	require.NoError(t, store.Set("history.keep", 10.0))

	assert.Equal(t, ".review", store.GetString("workspace.sidecar_dir"))
	assert.Equal(t, 250, store.GetInt("watch.debounce_ms"))
	assert.Equal(t, 10, store.GetInt("history.keep"))
	assert.False(t, store.GetBool("views.flow"))

	_, ok := store.Get("views.flow")
	assert.True(t, ok)
	assert.Equal(t, 4, store.Saves())
}

func TestConfigStore_MissingAndMistyped(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("n", "not a number"))

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("n"))
	assert.False(t, store.GetBool("n"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

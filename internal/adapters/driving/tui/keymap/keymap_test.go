package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"accept", km.Accept, []string{"a"}},
		{"edit", km.Edit, []string{"e"}},
		{"reject", km.Reject, []string{"r"}},
		{"accept all", km.AcceptAll, []string{"A"}},
		{"reject all", km.RejectAll, []string{"R"}},
		{"prune", km.Prune, []string{"p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
		})
	}
}

func TestDefaultKeyMap_AlternativeDigits(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.Alternative.Keys(), 9)
	assert.True(t, Matches("1", km.Alternative))
	assert.True(t, Matches("9", km.Alternative))
	assert.False(t, Matches("0", km.Alternative))
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("j", km.Down))
	assert.False(t, Matches("x", km.Down))
	// Accept and AcceptAll differ only by case.
	assert.False(t, Matches("a", km.AcceptAll))
}

func TestHelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.NotEmpty(t, km.ReviewHelp())
	assert.Len(t, km.FullHelp(), 4)
}

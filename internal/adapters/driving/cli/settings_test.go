package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/core/domain"
)

func TestSettingsShow(t *testing.T) {
	useWorkspace(t)

	out, err := execute(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Sidecar directory: .margin")
	assert.Contains(t, out, "Debounce: 300ms")
	assert.Contains(t, out, "Keep: 500")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSet(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		w := useWorkspace(t)

		out, err := execute(t, "settings", "set", "views.flow", "false")
		require.NoError(t, err)
		assert.Contains(t, out, "views.flow set to false")

		settings, err := w.Settings.Get()
		require.NoError(t, err)
		assert.False(t, settings.Views.Flow)
	})

	t.Run("unknown key", func(t *testing.T) {
		useWorkspace(t)

		_, err := execute(t, "settings", "set", "search.mode", "hybrid")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid value", func(t *testing.T) {
		useWorkspace(t)

		_, err := execute(t, "settings", "set", "watch.debounce_ms", "0")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestReadLine(t *testing.T) {
	assert.Equal(t, "2", readLine(bufio.NewReader(strings.NewReader("  2 \n"))))
	assert.Equal(t, "", readLine(bufio.NewReader(strings.NewReader(""))))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

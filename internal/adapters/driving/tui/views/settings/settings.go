// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/margin/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
)

// Key constants for key handling.
const (
	keyEsc   = "esc"
	keyEnter = "enter"
)

// descriptions explain each setting in the list.
var descriptions = map[string]string{
	"workspace.sidecar_dir":        "Output directory name next to each document",
	"watch.debounce_ms":            "Coalescing window for file changes",
	"watch.max_rescans_per_second": "Upper bound on full re-scans",
	"views.advice":                 "Regenerate the advice view",
	"views.flow":                   "Regenerate the flow view",
	"history.enabled":              "Record review decisions",
	"history.keep":                 "Decisions kept per document",
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	keys   []string
	values map[string]string
	err    error
	saved  string

	selected int
	editing  bool
	field    *input.Field

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		settingsService: settingsService,
		values:          map[string]string{},
		field:           input.NewField(s, ""),
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// Reset clears transient state before the view is shown again.
func (v *View) Reset() {
	v.editing = false
	v.field.Blur()
	v.field.Reset()
	v.err = nil
	v.saved = ""
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: errors.New("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Keys: v.settingsService.Keys(), Err: err}
	}
}

// save returns a command that writes one setting.
func (v *View) save(key, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingSaved{Key: key, Err: errors.New("settings service not available")}
		}
		return messages.SettingSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.keys = msg.Keys
		v.values = make(map[string]string, len(msg.Keys))
		for _, k := range msg.Keys {
			if val, err := v.settingsService.Value(k); err == nil {
				v.values[k] = val
			}
		}
		if v.selected >= len(v.keys) {
			v.selected = 0
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.saved = msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	if v.editing {
		var cmd tea.Cmd
		v.field, cmd = v.field.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses in the settings list.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case keyEnter:
		key := v.SelectedKey()
		if key == "" {
			return v, nil
		}
		if isBool(v.values[key]) {
			return v, v.save(key, toggle(v.values[key]))
		}
		v.editing = true
		v.saved = ""
		v.field.SetLabel(key)
		v.field.SetValue(v.values[key])
		return v, v.field.Focus()
	}
	return v, nil
}

// handleEditKey handles key presses while a value is being edited.
func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.editing = false
		v.field.Blur()
		return v, nil
	case keyEnter:
		v.editing = false
		v.field.Blur()
		return v, v.save(v.field.Label(), v.field.Value())
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

func isBool(s string) bool {
	return s == "true" || s == "false"
}

func toggle(s string) string {
	if s == "true" {
		return "false"
	}
	return "true"
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.saved != "" {
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("Saved %s", v.saved)))
		b.WriteString("\n\n")
	}

	width := 0
	for _, k := range v.keys {
		width = max(width, len(k))
	}

	for i, k := range v.keys {
		line := fmt.Sprintf("%-*s  %-8s", width, k, v.values[k])
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("  ")
		b.WriteString(v.styles.Muted.Render(descriptions[k]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.field.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] edit or toggle  [esc] back"))
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.field.SetWidth(width)
}

// SelectedKey returns the key under the cursor.
func (v *View) SelectedKey() string {
	if v.selected < len(v.keys) {
		return v.keys[v.selected]
	}
	return ""
}

// Value returns the displayed value of a key.
func (v *View) Value(key string) string {
	return v.values[key]
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

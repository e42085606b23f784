package documents

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/services/servicetest"
)

const planDoc = "# Plan\n\nfoo\n\nbar\n"

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLoadedView(t *testing.T) (*View, *servicetest.Workspace) {
	t.Helper()

	ws := servicetest.NewWorkspace(t)
	ws.AddDocument("/ws/plan.md", planDoc,
		servicetest.Replace("s1", "Plan", "foo", "FOO"),
		servicetest.Replace("s2", "Plan", "missing", "x"),
	)
	ws.AddDocument("/ws/notes.md", "# Notes\n")
	ws.Scan(t)

	view := NewView(styles.DefaultStyles(), ws.Store, ws.Actions)
	view.SetDimensions(100, 30)
	cmd := view.Init()
	require.NotNil(t, cmd)
	view.Update(cmd())
	return view, ws
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Empty(t, view.Documents())
	assert.Nil(t, view.SelectedDocument())
}

func TestView_Init_LoadsDocuments(t *testing.T) {
	view, _ := newLoadedView(t)

	docs := view.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "plan.md", docs[0].Name, "most pending first")
	assert.Equal(t, 2, docs[0].PendingCount)
	assert.Equal(t, "notes.md", docs[1].Name)
	assert.False(t, view.loading)
}

func TestView_Init_NoService(t *testing.T) {
	view := NewView(nil, nil, nil)

	msg := view.Init()()
	view.Update(msg)

	assert.Error(t, view.Err())
}

func TestView_Navigation(t *testing.T) {
	view, _ := newLoadedView(t)

	view.Update(key("k"))
	assert.Equal(t, 0, view.SelectedIndex())

	view.Update(key("j"))
	assert.Equal(t, 1, view.SelectedIndex())

	view.Update(key("j"))
	assert.Equal(t, 1, view.SelectedIndex(), "stays at bottom")
}

func TestView_Enter_SelectsDocument(t *testing.T) {
	view, ws := newLoadedView(t)

	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)

	selected, ok := cmd().(messages.DocumentSelected)
	require.True(t, ok)
	assert.Equal(t, ws.Layout.SidecarPath("/ws/plan.md"), selected.Document.SidecarRef)
}

func TestView_Esc_ReturnsToMenu(t *testing.T) {
	view, _ := newLoadedView(t)

	_, cmd := view.Update(key("esc"))
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_ActionMenu_AcceptAll(t *testing.T) {
	view, ws := newLoadedView(t)

	view.Update(key("m"))
	require.True(t, view.IsShowingMenu())
	view.Update(key("j"))

	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.False(t, view.IsShowingMenu())

	done, ok := cmd().(messages.ActionCompleted)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Equal(t, []string{"s1"}, done.Result.Accepted)
	assert.Equal(t, []string{"s2"}, done.Result.Skipped)
	assert.Equal(t, "# Plan\n\nFOO\n\nbar\n", ws.Document(t, "/ws/plan.md"))

	_, reload := view.Update(done)
	require.NotNil(t, reload)
	view.Update(reload())
	assert.Equal(t, "Accepted 1, skipped 1", view.Notice())
	assert.Equal(t, 1, view.Documents()[0].PendingCount)
}

func TestView_ActionMenu_Prune(t *testing.T) {
	view, _ := newLoadedView(t)

	view.Update(key("m"))
	for range 3 {
		view.Update(key("j"))
	}
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)

	done := cmd().(messages.ActionCompleted)
	require.NoError(t, done.Err)
	assert.Equal(t, 1, done.Result.Pruned)
}

func TestView_ActionMenu_Review(t *testing.T) {
	view, _ := newLoadedView(t)

	view.Update(key("m"))
	_, cmd := view.Update(key("enter"))
	require.NotNil(t, cmd)

	_, ok := cmd().(messages.DocumentSelected)
	assert.True(t, ok)
}

func TestView_ActionMenu_Cancel(t *testing.T) {
	view, _ := newLoadedView(t)

	view.Update(key("m"))
	assert.Contains(t, view.View(), "Actions for: plan.md")

	view.Update(key("esc"))
	assert.False(t, view.IsShowingMenu())

	view.Update(key("m"))
	for range 10 {
		view.Update(key("j"))
	}
	_, cmd := view.Update(key("enter"))
	assert.Nil(t, cmd)
}

func TestView_ActionCompleted_Error(t *testing.T) {
	view, _ := newLoadedView(t)

	view.Update(messages.ActionCompleted{Err: domain.ErrAnchorNotFound})

	assert.ErrorIs(t, view.Err(), domain.ErrAnchorNotFound)
	assert.Contains(t, view.View(), "Error:")
}

func TestView_StoreChanged_Reloads(t *testing.T) {
	view, _ := newLoadedView(t)

	_, cmd := view.Update(messages.StoreChanged{Event: domain.ChangeEvent{Kind: domain.ChangeMutated}})
	require.NotNil(t, cmd)

	_, ok := cmd().(messages.DocumentsLoaded)
	assert.True(t, ok)
}

func TestView_Reload(t *testing.T) {
	view, _ := newLoadedView(t)

	_, cmd := view.Update(key("ctrl+r"))
	require.NotNil(t, cmd)
	assert.Contains(t, view.View(), "Loading documents...")

	view.Update(cmd())
	assert.NotContains(t, view.View(), "Loading documents...")
}

func TestView_SelectionClampedAfterReload(t *testing.T) {
	view, _ := newLoadedView(t)
	view.Update(key("j"))

	view.Update(messages.DocumentsLoaded{Documents: []domain.DocumentSummary{{Name: "only.md"}}})

	assert.Equal(t, 0, view.SelectedIndex())
}

func TestView_View_Empty(t *testing.T) {
	view := NewView(nil, nil, nil)
	view.Update(messages.DocumentsLoaded{})

	assert.Contains(t, view.View(), "No documents with suggestions")
}

func TestView_View_ListsCounts(t *testing.T) {
	view, _ := newLoadedView(t)

	output := view.View()

	assert.Contains(t, output, "Documents (2)")
	assert.Contains(t, output, "plan.md")
	assert.Contains(t, output, "2/2 pending")
	assert.Contains(t, output, "0/0 pending")
}

func TestView_ErrorOccurred(t *testing.T) {
	view, _ := newLoadedView(t)

	view.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, view.Err(), "boom")
}

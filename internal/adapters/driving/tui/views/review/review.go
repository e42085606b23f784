// Package review provides the document review view for the TUI.
//
// The view renders a document with a line-number gutter and places a card
// under the lines each pending suggestion currently resolves to. Every
// state change goes through the review action service.
package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/margin/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/margin/internal/core/anchor"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/mutate"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
	"github.com/custodia-labs/margin/internal/core/services"
	"github.com/custodia-labs/margin/internal/normalisers/markdown"
)

// card is a pending suggestion and where it resolves in the current text.
type card struct {
	suggestion domain.Suggestion
	pos        domain.Position
	resolved   bool
}

// View is the review view for one document.
type View struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	suggestions driving.SuggestionService
	actions     driving.ReviewActionService

	ref    string
	name   string
	lines  []string
	cards  []card
	total  int
	cursor int
	scroll int

	editor  textarea.Model
	editing bool

	loading bool
	err     error
	notice  string
	width   int
	height  int
}

// NewView creates a new review view.
func NewView(s *styles.Styles, suggestions driving.SuggestionService, actions driving.ReviewActionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	return &View{
		styles:      s,
		keymap:      keymap.DefaultKeyMap(),
		suggestions: suggestions,
		actions:     actions,
		editor:      editor,
		width:       80,
		height:      24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument switches to a document and loads it.
func (v *View) SetDocument(doc domain.DocumentSummary) tea.Cmd {
	v.ref = doc.SidecarRef
	v.name = doc.Name
	v.lines = nil
	v.cards = nil
	v.total = 0
	v.cursor = 0
	v.scroll = 0
	v.err = nil
	v.notice = ""
	v.closeEditor()
	return v.load()
}

// load returns a command that reads the document and its suggestions.
func (v *View) load() tea.Cmd {
	ref := v.ref
	v.loading = true
	return func() tea.Msg {
		if v.suggestions == nil {
			return messages.ReviewLoaded{SidecarRef: ref, Err: errors.New("suggestion service not available")}
		}
		all, err := v.suggestions.Suggestions(ref)
		if err != nil {
			return messages.ReviewLoaded{SidecarRef: ref, Err: err}
		}
		text, err := v.suggestions.ReadDocument(context.Background(), ref)
		return messages.ReviewLoaded{SidecarRef: ref, Text: text, Suggestions: all, Err: err}
	}
}

// Update handles messages for the review view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ReviewLoaded:
		if msg.SidecarRef != v.ref {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.apply(msg.Text, msg.Suggestions)
		return v, nil

	case messages.ActionCompleted:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.err = nil
			v.notice = services.Summary(msg.Result)
		}
		return v, v.load()

	case messages.StoreChanged:
		if v.ref == "" || (msg.Event.SidecarRef != "" && msg.Event.SidecarRef != v.ref) {
			return v, nil
		}
		return v, v.load()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKey(msg)
	}

	if v.editing {
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}
	return v, nil
}

// apply replaces the displayed text and rebuilds the cards, keeping the
// cursor on the same suggestion when it is still pending.
func (v *View) apply(text string, all []domain.Suggestion) {
	var current string
	if c := v.Selected(); c != nil {
		current = c.ID
	}

	v.lines = markdown.Lines(strings.TrimSuffix(text, "\n"))
	v.total = len(all)
	v.cards = v.cards[:0]
	for i := range all {
		s := all[i]
		if !s.IsPending() {
			continue
		}
		pos, ok := anchor.ResolveAnchor(text, s.Anchor)
		v.cards = append(v.cards, card{suggestion: s, pos: pos, resolved: ok})
	}
	sort.SliceStable(v.cards, func(i, j int) bool {
		a, b := v.cards[i], v.cards[j]
		if a.resolved != b.resolved {
			return a.resolved
		}
		return a.pos.StartLine < b.pos.StartLine
	})

	v.cursor = 0
	for i := range v.cards {
		if v.cards[i].suggestion.ID == current {
			v.cursor = i
			break
		}
	}
}

// handleKey handles key presses while browsing cards.
func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	km := v.keymap

	switch {
	case keymap.Matches(k, km.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	case keymap.Matches(k, km.Down):
		if v.cursor < len(v.cards)-1 {
			v.cursor++
		}
	case keymap.Matches(k, km.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case keymap.Matches(k, km.Reload):
		v.notice = ""
		return v, v.load()
	case keymap.Matches(k, km.AcceptAll):
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionAcceptAll, SidecarRef: v.ref})
	case keymap.Matches(k, km.RejectAll):
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionRejectAll, SidecarRef: v.ref})
	case keymap.Matches(k, km.Prune):
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionPrune, SidecarRef: v.ref})
	}

	s := v.Selected()
	if s == nil {
		return v, nil
	}

	switch {
	case keymap.Matches(k, km.Accept):
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionAccept, SuggestionID: s.ID})
	case keymap.Matches(k, km.Reject):
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionReject, SuggestionID: s.ID})
	case keymap.Matches(k, km.Alternative):
		text, err := mutate.AlternativeText(s, int(k[0]-'0'))
		if err != nil {
			v.err = err
			return v, nil
		}
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionAccept, SuggestionID: s.ID, Text: &text})
	case keymap.Matches(k, km.Edit):
		return v, v.openEditor(mutate.DefaultText(s))
	}

	return v, nil
}

// handleEditKey handles key presses while the editor is open.
func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		v.closeEditor()
		return v, nil
	case keymap.Matches(k, v.keymap.Save):
		s := v.Selected()
		text := v.editor.Value()
		v.closeEditor()
		if s == nil {
			return v, nil
		}
		return v, v.dispatch(domain.ReviewRequest{Kind: domain.ActionAccept, SuggestionID: s.ID, Text: &text})
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func (v *View) openEditor(text string) tea.Cmd {
	v.editing = true
	v.editor.SetWidth(max(v.width-10, 20))
	v.editor.SetHeight(min(max(strings.Count(text, "\n")+3, 4), 12))
	v.editor.SetValue(text)
	return v.editor.Focus()
}

func (v *View) closeEditor() {
	v.editing = false
	v.editor.Blur()
	v.editor.Reset()
}

// dispatch returns a command that performs a review request.
func (v *View) dispatch(req domain.ReviewRequest) tea.Cmd {
	return func() tea.Msg {
		if v.actions == nil {
			return messages.ActionCompleted{Err: errors.New("action service not available")}
		}
		result, err := v.actions.Dispatch(context.Background(), req)
		return messages.ActionCompleted{Result: result, Err: err}
	}
}

// View renders the document with its suggestion cards.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Review - %s", v.name)))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d pending of %d", len(v.cards), v.total)))
	b.WriteString("\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	b.WriteString("\n")

	if v.loading && v.lines == nil {
		b.WriteString(v.styles.Muted.Render("Loading document..."))
		return b.String()
	}

	rows, first, last := v.renderBody()
	height := v.bodyHeight()
	v.scrollTo(first, last, len(rows), height)
	end := min(v.scroll+height, len(rows))
	b.WriteString(strings.Join(rows[v.scroll:end], "\n"))

	if v.editing {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render("Edit suggestion"))
		b.WriteString("\n")
		b.WriteString(v.editor.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[ctrl+s] accept edit  [esc] cancel"))
	}

	return b.String()
}

// renderBody returns the document rows and the row range of the cursor
// card, from its first anchored line to the end of the card.
func (v *View) renderBody() (rows []string, first, last int) {
	after := make(map[int][]int)
	var stale []int
	for i := range v.cards {
		if v.cards[i].resolved {
			after[v.cards[i].pos.EndLine] = append(after[v.cards[i].pos.EndLine], i)
		} else {
			stale = append(stale, i)
		}
	}

	var selectedRange domain.Position
	if v.cursor < len(v.cards) && v.cards[v.cursor].resolved {
		selectedRange = v.cards[v.cursor].pos
	}

	rows = make([]string, 0, len(v.lines)+len(v.cards)*4)
	appendCard := func(idx int) {
		if idx == v.cursor && !v.cards[idx].resolved {
			first = len(rows)
		}
		rows = append(rows, strings.Split(v.renderCard(idx), "\n")...)
		if idx == v.cursor {
			last = len(rows) - 1
		}
	}

	for i, line := range v.lines {
		n := i + 1
		content := v.styles.Normal.Render(line)
		if n >= selectedRange.StartLine && n <= selectedRange.EndLine {
			content = v.styles.Anchored.Render(line)
		}
		if n == selectedRange.StartLine {
			first = len(rows)
		}
		rows = append(rows, v.styles.LineNumber.Render(fmt.Sprint(n))+" "+content)

		for _, idx := range after[n] {
			appendCard(idx)
		}
	}

	if len(stale) > 0 {
		rows = append(rows, "", v.styles.Warning.Render("Stale (anchor not found, press p to prune)"))
		for _, idx := range stale {
			appendCard(idx)
		}
	}
	return rows, first, last
}

// renderCard renders one suggestion card.
func (v *View) renderCard(idx int) string {
	s := &v.cards[idx].suggestion

	var b strings.Builder
	b.WriteString(v.styles.Category(s.Category).Render(s.Category.Label()))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s  %s", s.Type, s.ID)))
	if !v.cards[idx].resolved {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render("Anchor: " + strings.TrimSpace(s.Anchor.TextContent)))
	}
	if s.Reasoning != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(s.Reasoning))
	}

	if len(s.Alternatives) == 0 && s.SuggestedText != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(s.SuggestedText))
	}
	for i, alt := range s.Alternatives {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%d] %s", i+1, alt.Label)))
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(alt.Text))
	}

	if idx == v.cursor {
		return v.styles.CardSelected.Render(b.String())
	}
	return v.styles.Card.Render(b.String())
}

// bodyHeight is the number of rows available for the document.
func (v *View) bodyHeight() int {
	// Title, notice and status bar
	reserved := 4
	if v.editing {
		reserved += v.editor.Height() + 4
	}
	return max(v.height-reserved, 1)
}

// scrollTo keeps rows first..last visible, preferring first.
func (v *View) scrollTo(first, last, total, height int) {
	if last >= v.scroll+height {
		v.scroll = last - height + 1
	}
	if first < v.scroll {
		v.scroll = first
	}
	v.scroll = max(min(v.scroll, total-height), 0)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.editor.SetWidth(max(width-10, 20))
}

// SidecarRef returns the sidecar being reviewed.
func (v *View) SidecarRef() string {
	return v.ref
}

// PendingCount returns the number of pending suggestions shown.
func (v *View) PendingCount() int {
	return len(v.cards)
}

// Selected returns the suggestion under the cursor.
func (v *View) Selected() *domain.Suggestion {
	if v.cursor < len(v.cards) {
		return &v.cards[v.cursor].suggestion
	}
	return nil
}

// Editing reports whether the editor is open.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Notice returns the last action summary.
func (v *View) Notice() string {
	return v.notice
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/margin/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/views/review"
	"github.com/custodia-labs/margin/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/services"
)

// eventBuffer bounds store events queued for the UI. Events beyond it are
// dropped; the next one triggers a full reload anyway.
const eventBuffer = 16

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView      *menu.View
	documentsView *documents.View
	reviewView    *review.View
	settingsView  *settings.View
	statusBar     *status.Bar

	// events carries store notifications into the Bubbletea loop.
	events      chan domain.ChangeEvent
	unsubscribe func()

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// The app subscribes to store changes until Close is called.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		menuView:      menu.NewView(s),
		documentsView: documents.NewView(s, ports.Suggestions, ports.Actions),
		reviewView:    review.NewView(s, ports.Suggestions, ports.Actions),
		settingsView:  settings.NewView(s, ports.Settings),
		statusBar:     status.NewBar(s, km),
		events:        make(chan domain.ChangeEvent, eventBuffer),
		currentView:   messages.ViewMenu,
	}

	a.unsubscribe = ports.Suggestions.Subscribe(func(ev domain.ChangeEvent) {
		select {
		case a.events <- ev:
		default:
		}
	})
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Close stops listening for store changes.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("margin - Review"),
		a.loadSummary(),
		a.listen(),
	)
}

// listen waits for the next store event.
func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-a.events:
			return messages.StoreChanged{Event: ev}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// loadSummary reads document totals for the menu.
func (a *App) loadSummary() tea.Cmd {
	return func() tea.Msg {
		return messages.DocumentsLoaded{Documents: a.ports.Suggestions.DocumentSummaries()}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewReview:
			a.statusBar.SetState(status.StateReviewing)
			a.reviewView, cmd = a.reviewView.Update(msg)
			a.syncStatus()
		case messages.ViewSettings:
			a.settingsView, cmd = a.settingsView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		a.statusBar.Clear()
		switch msg.View {
		case messages.ViewMenu:
			return a, a.loadSummary()
		case messages.ViewDocuments:
			return a, a.documentsView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewReview:
			a.syncStatus()
		case messages.ViewHelp:
		}
		return a, nil

	case messages.DocumentSelected:
		a.currentView = messages.ViewReview
		a.statusBar.Clear()
		return a, a.reviewView.SetDocument(msg.Document)

	case messages.DocumentsLoaded:
		a.menuView, _ = a.menuView.Update(msg)
		if a.currentView == messages.ViewDocuments {
			a.documentsView, cmd = a.documentsView.Update(msg)
		}
		return a, cmd

	case messages.ReviewLoaded:
		a.reviewView, cmd = a.reviewView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.ActionCompleted:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		} else {
			a.err = nil
			a.statusBar.SetState(status.StateDone)
			a.statusBar.SetMessage(services.Summary(msg.Result))
		}
		switch a.currentView {
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewReview:
			a.reviewView, cmd = a.reviewView.Update(msg)
		case messages.ViewMenu, messages.ViewSettings, messages.ViewHelp:
		}
		return a, cmd

	case messages.StoreChanged:
		cmds := []tea.Cmd{a.listen(), a.loadSummary()}
		switch a.currentView {
		case messages.ViewDocuments:
			a.documentsView, cmd = a.documentsView.Update(msg)
		case messages.ViewReview:
			a.reviewView, cmd = a.reviewView.Update(msg)
		case messages.ViewMenu, messages.ViewSettings, messages.ViewHelp:
		}
		return a, tea.Batch(append(cmds, cmd)...)

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		if a.currentView == messages.ViewDocuments {
			a.documentsView, cmd = a.documentsView.Update(msg)
		}
		return a, cmd
	}

	// Forward other messages (cursor blink and similar) to the active view
	switch a.currentView {
	case messages.ViewReview:
		a.reviewView, cmd = a.reviewView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewMenu, messages.ViewDocuments, messages.ViewHelp:
	}
	return a, cmd
}

// syncStatus mirrors the review view into the status bar.
func (a *App) syncStatus() {
	if a.statusBar.State() == status.StateError || a.statusBar.State() == status.StateDone {
		a.statusBar.SetPendingCount(a.reviewView.PendingCount())
		return
	}
	a.statusBar.SetState(status.StateReviewing)
	a.statusBar.SetPendingCount(a.reviewView.PendingCount())
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewDocuments:
		body = a.documentsView.View()
	case messages.ViewReview:
		body = a.reviewView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}

	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders the help view from the key map.
func (a *App) viewHelp() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	groups := []string{"Navigation", "Review", "Document", "General"}
	for i, group := range a.keymap.FullHelp() {
		if i < len(groups) {
			b.WriteString(a.styles.Subtitle.Render(groups[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.reviewView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}

// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/margin/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewDocuments lists documents with sidecars.
	ViewDocuments
	// ViewReview shows one document with its suggestion cards.
	ViewReview
	// ViewSettings is the settings view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewDocuments:
		return "documents"
	case ViewReview:
		return "review"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// DocumentsLoaded carries the document summaries.
type DocumentsLoaded struct {
	Documents []domain.DocumentSummary
	Err       error
}

// DocumentSelected signals a document was chosen for review.
type DocumentSelected struct {
	Document domain.DocumentSummary
}

// ReviewLoaded carries a document and its suggestions.
type ReviewLoaded struct {
	SidecarRef  string
	Text        string
	Suggestions []domain.Suggestion
	Err         error
}

// ActionCompleted carries the result of a review action.
type ActionCompleted struct {
	Result *domain.ReviewResult
	Err    error
}

// StoreChanged is delivered when the suggestion store persisted a change.
type StoreChanged struct {
	Event domain.ChangeEvent
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Keys     []string
	Err      error
}

// SettingSaved signals a single setting was written.
type SettingSaved struct {
	Key string
	Err error
}

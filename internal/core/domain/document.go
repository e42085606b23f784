package domain

// DocumentSummary describes one cached sidecar and its document.
type DocumentSummary struct {
	// Name is the document's file name as recorded in the sidecar.
	Name string

	// DocumentPath is the resolved path of the markdown document.
	DocumentPath string

	// SidecarRef identifies the sidecar in the store.
	SidecarRef string

	// SuggestionCount is the total number of suggestions.
	SuggestionCount int

	// PendingCount is the number of pending suggestions.
	PendingCount int
}

// LocatedSuggestion pairs a suggestion with the sidecar that owns it.
type LocatedSuggestion struct {
	SidecarRef string
	Suggestion Suggestion
}

// BatchResult reports the outcome of a batch accept.
type BatchResult struct {
	// Accepted lists ids applied in application order (bottom-most first).
	Accepted []string

	// Skipped lists pending ids left untouched because their anchor did
	// not resolve or their type was unknown.
	Skipped []string
}

package domain

import (
	"fmt"
	"strings"
)

// SuggestionStatus is the lifecycle state of a suggestion.
// Transitions are monotonic: pending moves to accepted or rejected and never back.
type SuggestionStatus string

// Suggestion statuses.
const (
	StatusPending  SuggestionStatus = "pending"
	StatusAccepted SuggestionStatus = "accepted"
	StatusRejected SuggestionStatus = "rejected"
)

// IsValid returns true if the status is recognised.
func (s SuggestionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SuggestionStatus) String() string {
	return string(s)
}

// SuggestionType is the kind of edit a suggestion performs.
type SuggestionType string

// Suggestion types.
const (
	// TypeReplace swaps the anchored lines for the replacement text.
	TypeReplace SuggestionType = "replace"

	// TypeInsertAfter adds the replacement text below the anchored lines.
	TypeInsertAfter SuggestionType = "insert_after"

	// TypeInsertBefore adds the replacement text above the anchored lines.
	TypeInsertBefore SuggestionType = "insert_before"

	// TypeDelete removes the anchored lines.
	TypeDelete SuggestionType = "delete"
)

// IsValid returns true if the type is recognised.
func (t SuggestionType) IsValid() bool {
	switch t {
	case TypeReplace, TypeInsertAfter, TypeInsertBefore, TypeDelete:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SuggestionType) String() string {
	return string(t)
}

// Category groups suggestions for display. It has no effect on behaviour.
type Category string

// Suggestion categories.
const (
	CategoryContent      Category = "content"
	CategoryStructure    Category = "structure"
	CategoryStyle        Category = "style"
	CategoryClarity      Category = "clarity"
	CategoryCompleteness Category = "completeness"
)

// Label returns a human-readable label, falling back to the raw value.
func (c Category) Label() string {
	switch c {
	case CategoryContent:
		return "Content"
	case CategoryStructure:
		return "Structure"
	case CategoryStyle:
		return "Style"
	case CategoryClarity:
		return "Clarity"
	case CategoryCompleteness:
		return "Completeness"
	default:
		return string(c)
	}
}

// Anchor is a semantic reference to a location in a document.
type Anchor struct {
	// HeadingPath lists heading texts from the document root to the
	// nearest enclosing heading. May be empty.
	HeadingPath []string `json:"headingPath"`

	// TextContent is the verbatim snippet expected at the target location.
	TextContent string `json:"textContent"`

	// StartLine and EndLine are legacy informational fields.
	// They are preserved on write and never consulted for lookup.
	StartLine *int `json:"startLine,omitempty"`
	EndLine   *int `json:"endLine,omitempty"`
}

// Alternative is one candidate replacement text.
type Alternative struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Suggestion is a proposed document edit.
type Suggestion struct {
	// ID is unique within its SuggestionFile and stable across document edits.
	ID string `json:"id"`

	Status SuggestionStatus `json:"status"`
	Anchor Anchor           `json:"anchor"`
	Type   SuggestionType   `json:"type"`

	// OriginalText is informational; it is not used for relocation.
	OriginalText string `json:"originalText"`

	// SuggestedText is the deprecated single-text fallback used only
	// when Alternatives is empty.
	SuggestedText string `json:"suggestedText,omitempty"`

	// Alternatives are ordered candidates; the first is the default.
	Alternatives []Alternative `json:"alternatives,omitempty"`

	Reasoning string   `json:"reasoning"`
	Category  Category `json:"category"`
}

// IsPending reports whether the suggestion awaits a decision.
func (s *Suggestion) IsPending() bool {
	return s.Status == StatusPending
}

// Clone returns a deep copy of the suggestion.
func (s *Suggestion) Clone() Suggestion {
	c := *s
	if s.Anchor.HeadingPath != nil {
		c.Anchor.HeadingPath = append([]string(nil), s.Anchor.HeadingPath...)
	}
	if s.Anchor.StartLine != nil {
		v := *s.Anchor.StartLine
		c.Anchor.StartLine = &v
	}
	if s.Anchor.EndLine != nil {
		v := *s.Anchor.EndLine
		c.Anchor.EndLine = &v
	}
	if s.Alternatives != nil {
		c.Alternatives = append([]Alternative(nil), s.Alternatives...)
	}
	return c
}

// SuggestionFile is the persisted sidecar for one document.
type SuggestionFile struct {
	Version     int          `json:"version"`
	SourceFile  string       `json:"sourceFile"`
	GeneratedAt string       `json:"generatedAt"`
	Prompt      string       `json:"prompt"`
	Suggestions []Suggestion `json:"suggestions"`
}

// CurrentSidecarVersion is the version written by init.
const CurrentSidecarVersion = 1

// Validate checks the structural invariants of a loaded sidecar.
// Unknown suggestion types are tolerated here and rejected when applied.
func (f *SuggestionFile) Validate() error {
	if strings.TrimSpace(f.SourceFile) == "" {
		return fmt.Errorf("%w: sourceFile is required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(f.Suggestions))
	for i := range f.Suggestions {
		s := &f.Suggestions[i]
		if s.ID == "" {
			return fmt.Errorf("%w: suggestion %d has no id", ErrInvalidInput, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate suggestion id %q", ErrInvalidInput, s.ID)
		}
		seen[s.ID] = struct{}{}
		if !s.Status.IsValid() {
			return fmt.Errorf("%w: suggestion %q has invalid status %q", ErrInvalidInput, s.ID, s.Status)
		}
	}
	return nil
}

// Clone returns a deep copy of the sidecar.
// Mutations always work on a clone so the cached value is only
// replaced after the write succeeds.
func (f *SuggestionFile) Clone() *SuggestionFile {
	c := *f
	if f.Suggestions != nil {
		c.Suggestions = make([]Suggestion, len(f.Suggestions))
		for i := range f.Suggestions {
			c.Suggestions[i] = f.Suggestions[i].Clone()
		}
	}
	return &c
}

// Find returns the index of the suggestion with the given id, or -1.
func (f *SuggestionFile) Find(id string) int {
	for i := range f.Suggestions {
		if f.Suggestions[i].ID == id {
			return i
		}
	}
	return -1
}

// Pending returns copies of all pending suggestions in file order.
func (f *SuggestionFile) Pending() []Suggestion {
	var out []Suggestion
	for i := range f.Suggestions {
		if f.Suggestions[i].IsPending() {
			out = append(out, f.Suggestions[i].Clone())
		}
	}
	return out
}

// PendingCount returns the number of pending suggestions.
func (f *SuggestionFile) PendingCount() int {
	n := 0
	for i := range f.Suggestions {
		if f.Suggestions[i].IsPending() {
			n++
		}
	}
	return n
}

// Position is a resolved 1-indexed inclusive line range.
type Position struct {
	StartLine int
	EndLine   int
}

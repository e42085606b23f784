// Package mutate applies suggestions to document text.
//
// Apply is a pure function: it resolves the anchor against the given text
// and returns a new text value, so callers can resolve and apply repeatedly
// against an accumulating document.
package mutate

import (
	"fmt"

	"github.com/custodia-labs/margin/internal/core/anchor"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/normalisers/markdown"
)

// Apply resolves s's anchor in text and performs its edit with replacement.
// It returns domain.ErrUnknownSuggestionType for unrecognised types and
// domain.ErrAnchorNotFound when the anchor does not resolve.
func Apply(text string, s *domain.Suggestion, replacement string) (string, error) {
	if !s.Type.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownSuggestionType, s.Type)
	}
	pos, ok := anchor.ResolveAnchor(text, s.Anchor)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrAnchorNotFound, s.ID)
	}
	return Splice(text, s.Type, pos, replacement)
}

// Splice performs a line edit at an already resolved position.
func Splice(text string, typ domain.SuggestionType, pos domain.Position, replacement string) (string, error) {
	lines := markdown.Lines(text)
	startIdx := pos.StartLine - 1
	endIdx := pos.EndLine
	if startIdx < 0 || endIdx > len(lines) || startIdx >= endIdx {
		return "", fmt.Errorf("%w: range %d-%d outside %d lines",
			domain.ErrInvalidInput, pos.StartLine, pos.EndLine, len(lines))
	}

	var inserted []string
	if typ != domain.TypeDelete {
		inserted = markdown.Lines(replacement)
	}

	out := make([]string, 0, len(lines)+len(inserted))
	switch typ {
	case domain.TypeReplace:
		out = append(out, lines[:startIdx]...)
		out = append(out, inserted...)
		out = append(out, lines[endIdx:]...)
	case domain.TypeInsertAfter:
		out = append(out, lines[:endIdx]...)
		out = append(out, inserted...)
		out = append(out, lines[endIdx:]...)
	case domain.TypeInsertBefore:
		out = append(out, lines[:startIdx]...)
		out = append(out, inserted...)
		out = append(out, lines[startIdx:]...)
	case domain.TypeDelete:
		out = append(out, lines[:startIdx]...)
		out = append(out, lines[endIdx:]...)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownSuggestionType, typ)
	}
	return markdown.Join(out), nil
}

// DefaultText picks the text applied when the user makes no explicit choice:
// the first alternative, else the deprecated suggestedText, else "".
func DefaultText(s *domain.Suggestion) string {
	if len(s.Alternatives) > 0 {
		return s.Alternatives[0].Text
	}
	return s.SuggestedText
}

// AlternativeText returns the text of the n-th (1-based) alternative.
func AlternativeText(s *domain.Suggestion, n int) (string, error) {
	if n < 1 || n > len(s.Alternatives) {
		return "", fmt.Errorf("%w: suggestion %q has %d alternatives, got %d",
			domain.ErrInvalidInput, s.ID, len(s.Alternatives), n)
	}
	return s.Alternatives[n-1].Text, nil
}

package domain

import (
	"fmt"
	"strings"
)

// ActionKind is one of the review actions a front-end may request.
// The set is closed; untrusted input goes through ParseActionKind.
type ActionKind string

// Review actions.
const (
	ActionAccept    ActionKind = "accept"
	ActionReject    ActionKind = "reject"
	ActionAcceptAll ActionKind = "accept_all"
	ActionRejectAll ActionKind = "reject_all"
	ActionPrune     ActionKind = "prune"
)

// AllActionKinds returns every allowed action.
func AllActionKinds() []ActionKind {
	return []ActionKind{ActionAccept, ActionReject, ActionAcceptAll, ActionRejectAll, ActionPrune}
}

// ParseActionKind maps an untrusted string onto the allowed set.
func ParseActionKind(s string) (ActionKind, error) {
	want := ActionKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range AllActionKinds() {
		if k == want {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// IsValid reports whether k is exactly one of the allowed actions.
func (k ActionKind) IsValid() bool {
	for _, allowed := range AllActionKinds() {
		if k == allowed {
			return true
		}
	}
	return false
}

// TargetsSuggestion reports whether the action needs a suggestion id.
func (k ActionKind) TargetsSuggestion() bool {
	return k == ActionAccept || k == ActionReject
}

// ReviewRequest is a validated request to change suggestion state.
type ReviewRequest struct {
	Kind ActionKind

	// SuggestionID is required for accept and reject.
	SuggestionID string

	// SidecarRef is required for the batch actions.
	SidecarRef string

	// Text overrides the default text on accept. Nil means default.
	Text *string
}

// Validate checks the request carries what its kind needs.
func (r *ReviewRequest) Validate() error {
	if !r.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, r.Kind)
	}
	if r.Kind.TargetsSuggestion() {
		if r.SuggestionID == "" {
			return fmt.Errorf("%w: %s requires a suggestion id", ErrInvalidInput, r.Kind)
		}
		if r.Kind == ActionReject && r.Text != nil {
			return fmt.Errorf("%w: reject does not take text", ErrInvalidInput)
		}
		return nil
	}
	if r.SidecarRef == "" {
		return fmt.Errorf("%w: %s requires a document", ErrInvalidInput, r.Kind)
	}
	if r.Text != nil {
		return fmt.Errorf("%w: %s does not take text", ErrInvalidInput, r.Kind)
	}
	return nil
}

// ReviewResult summarises what an action changed.
type ReviewResult struct {
	Kind     ActionKind
	Accepted []string
	Rejected int
	Skipped  []string
	Pruned   int
}

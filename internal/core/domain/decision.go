package domain

import "time"

// DecisionAction is what happened to a suggestion.
type DecisionAction string

// Decision actions.
const (
	DecisionAccepted DecisionAction = "accepted"
	DecisionRejected DecisionAction = "rejected"
	DecisionPruned   DecisionAction = "pruned"
)

// IsValid returns true if the action is recognised.
func (a DecisionAction) IsValid() bool {
	switch a {
	case DecisionAccepted, DecisionRejected, DecisionPruned:
		return true
	default:
		return false
	}
}

// Decision is a history record of a review decision.
type Decision struct {
	// ID is a unique identifier (UUID).
	ID string

	// SidecarRef identifies the sidecar the suggestion belonged to.
	SidecarRef string

	// SuggestionID is the id of the decided suggestion.
	SuggestionID string

	Action DecisionAction

	// Text is the text applied for accepts; empty otherwise.
	Text string

	DecidedAt time.Time
}

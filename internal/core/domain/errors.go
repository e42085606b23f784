package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Suggestion Errors.

	// ErrSuggestionNotFound indicates no cached sidecar holds the requested id.
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrAnchorNotFound indicates the anchor text no longer occurs in the document.
	// The suggestion stays pending; pruning is a separate operation.
	ErrAnchorNotFound = errors.New("anchor not found")

	// ErrUnknownSuggestionType indicates a suggestion carries an unrecognised type.
	ErrUnknownSuggestionType = errors.New("unknown suggestion type")

	// ErrSuggestionNotPending indicates the suggestion was already accepted or rejected.
	ErrSuggestionNotPending = errors.New("suggestion is not pending")

	// Sidecar Errors.

	// ErrSidecarNotFound indicates no sidecar is cached for a document or reference.
	ErrSidecarNotFound = errors.New("sidecar not found")

	// ErrLoadParse indicates a sidecar is not valid JSON or violates the schema.
	ErrLoadParse = errors.New("sidecar parse error")

	// ErrPersist indicates a document or sidecar write failed.
	ErrPersist = errors.New("persist failed")

	// Action Errors.

	// ErrUnknownAction indicates a review action outside the allowed set.
	ErrUnknownAction = errors.New("unknown action")
)

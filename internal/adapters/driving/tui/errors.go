package tui

import "errors"

// ErrMissingSuggestionService is returned when the suggestion service is not provided.
var ErrMissingSuggestionService = errors.New("tui: suggestion service is required")

// ErrMissingActionService is returned when the review action service is not provided.
var ErrMissingActionService = errors.New("tui: review action service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

package mcp

import (
	"github.com/custodia-labs/margin/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Suggestions lists documents and suggestions.
	Suggestions driving.SuggestionService

	// Actions performs review decisions.
	Actions driving.ReviewActionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Suggestions == nil {
		return ErrMissingSuggestionService
	}
	if p.Actions == nil {
		return ErrMissingActionService
	}
	return nil
}

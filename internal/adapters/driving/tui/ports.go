// Package tui provides an interactive terminal user interface for margin.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/margin/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Suggestions reads documents and suggestions and notifies on change.
	Suggestions driving.SuggestionService

	// Actions performs every state change requested from a key press.
	Actions driving.ReviewActionService

	// Settings manages workspace settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	suggestions driving.SuggestionService,
	actions driving.ReviewActionService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Suggestions: suggestions,
		Actions:     actions,
		Settings:    settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Suggestions == nil {
		return ErrMissingSuggestionService
	}
	if p.Actions == nil {
		return ErrMissingActionService
	}
	return nil
}

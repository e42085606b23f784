// Package mcp provides an MCP (Model Context Protocol) server adapter for margin.
// It lets editor hosts and assistants list documents and suggestions and
// apply review decisions through the closed action set.
package mcp

import "errors"

// ErrMissingSuggestionService is returned when the suggestion service is not provided.
var ErrMissingSuggestionService = errors.New("mcp: suggestion service is required")

// ErrMissingActionService is returned when the review action service is not provided.
var ErrMissingActionService = errors.New("mcp: review action service is required")

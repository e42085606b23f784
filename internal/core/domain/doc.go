// Package domain defines the core business entities for margin.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Suggestion: A proposed edit anchored to a semantic document location
//   - SuggestionFile: The sidecar holding every suggestion for one document
//   - Position: A resolved 1-indexed inclusive line range
//   - Decision: A history record of an accept, reject or prune
//   - Artifact: A derived view (advice digest, flow diagram) and its provenance
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

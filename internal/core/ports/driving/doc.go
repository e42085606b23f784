// Package driving defines what the front-ends call into: the suggestion
// store, the review action dispatcher, settings and the workspace watcher.
// The CLI, TUI and MCP server depend only on these interfaces; the
// implementations live in internal/core/services.
package driving

// Package connectors provides the sources of workspace change events.
// The filesystem connector watches a local directory tree with fsnotify
// and reports changes through the driven.ChangeSource port.
package connectors

package driven

import "context"

// DocumentStore reads and writes markdown documents as whole UTF-8 text.
type DocumentStore interface {
	// ReadDocument returns the full text of a document.
	// Returns domain.ErrNotFound if the document does not exist.
	ReadDocument(ctx context.Context, path string) (string, error)

	// WriteDocument atomically replaces the document's text.
	// The write is durable when it returns nil.
	WriteDocument(ctx context.Context, path, text string) error
}

package search

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexUnavailable wraps transport failures and unexpected responses.
	ErrIndexUnavailable = errors.New("tasks: search index unavailable")

	// ErrInvalidQuery is returned for a search without owner or query text.
	ErrInvalidQuery = errors.New("tasks: invalid search query")

	// ErrInvalidDocumentID is returned for an id that is not a single path segment.
	ErrInvalidDocumentID = errors.New("tasks: invalid document id")

	// ErrNotFound is returned by Get when no document has the id.
	ErrNotFound = errors.New("tasks: document not found")
)

// StatusError is an unexpected HTTP status from the search backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrIndexUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrIndexUnavailable
}

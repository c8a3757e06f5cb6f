package storage

import "errors"

var (
	// ErrNotFound indicates that the requested document was not found.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Candidate is one nearest-neighbor hit from vector search: a document ID
// and its base similarity score (higher is better).
type Candidate struct {
	DocumentID string
	Score      float64
}

// Package storage provides composable storage interfaces for the
// schemaground index.
//
// The layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed: the grounding pipeline
// only consumes DocumentStore and Retriever, while the index builder also
// uses EmbeddingWriter. All implementations are read-only at query time;
// concurrent grounding requests share them without locking.
package storage

import (
	"context"

	"github.com/scrypster/schemaground/pkg/types"
)

// DocumentStore provides read access to indexed schema documents, keyed by
// the ids returned from retrieval. The index builder also writes through it.
type DocumentStore interface {
	// Put creates or replaces a document (upsert semantics).
	Put(ctx context.Context, doc *types.Document) error

	// Get retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id string) (*types.Document, error)

	// List returns all indexed documents, ordered by ID.
	List(ctx context.Context) ([]types.Document, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// EmbeddingWriter stores vector embeddings for documents at index-build time.
type EmbeddingWriter interface {
	// StoreEmbedding stores a vector embedding for a document (upsert).
	StoreEmbedding(ctx context.Context, docID string, embedding []float32) error
}

// VectorSearcher performs nearest-neighbor search over stored embeddings.
type VectorSearcher interface {
	// VectorSearch returns up to k candidates ordered by similarity to the
	// query vector, best first. Scores are similarities in [0, 1] where
	// higher is better.
	VectorSearch(ctx context.Context, query []float32, k int) ([]Candidate, error)
}

// Retriever is the embedding+retrieval boundary the grounding pipeline
// consumes: expanded query in, unordered-trust candidates out. The pipeline
// re-ranks; the returned order is only the tie-break key.
type Retriever interface {
	// Retrieve returns between 0 and k candidates for the expanded query.
	Retrieve(ctx context.Context, expandedQuery string, k int) ([]Candidate, error)
}

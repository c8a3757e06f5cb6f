package storage

import (
	"context"
	"fmt"
)

// Embedder converts text into a vector. Implemented by the embedding API
// client; kept as a one-method interface here so tests can substitute a
// fixture embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorRetriever implements Retriever by embedding the expanded query and
// running nearest-neighbor search over a VectorSearcher backend.
type VectorRetriever struct {
	embedder Embedder
	index    VectorSearcher
}

// NewVectorRetriever creates a retriever over the given embedder and index.
func NewVectorRetriever(embedder Embedder, index VectorSearcher) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, index: index}
}

// Retrieve embeds the expanded query and returns up to k candidates ordered
// by similarity, best first.
func (r *VectorRetriever) Retrieve(ctx context.Context, expandedQuery string, k int) ([]Candidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", ErrInvalidInput)
	}

	vec, err := r.embedder.Embed(ctx, expandedQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.index.VectorSearch(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return candidates, nil
}

package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/schemaground/internal/storage"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.vec, s.err
}

type stubSearcher struct {
	candidates []storage.Candidate
	err        error
	lastQuery  []float32
	lastK      int
}

func (s *stubSearcher) VectorSearch(_ context.Context, query []float32, k int) ([]storage.Candidate, error) {
	s.lastQuery = query
	s.lastK = k
	return s.candidates, s.err
}

func TestRetrieve_EmbedsQueryAndSearches(t *testing.T) {
	searcher := &stubSearcher{candidates: []storage.Candidate{
		{DocumentID: "a", Score: 0.9},
	}}
	r := storage.NewVectorRetriever(&stubEmbedder{vec: []float32{0.1, 0.2}}, searcher)

	candidates, err := r.Retrieve(context.Background(), "expanded query", 10)
	require.NoError(t, err)
	assert.Equal(t, []storage.Candidate{{DocumentID: "a", Score: 0.9}}, candidates)
	assert.Equal(t, []float32{0.1, 0.2}, searcher.lastQuery)
	assert.Equal(t, 10, searcher.lastK)
}

func TestRetrieve_RejectsNonPositiveK(t *testing.T) {
	r := storage.NewVectorRetriever(&stubEmbedder{vec: []float32{1}}, &stubSearcher{})

	_, err := r.Retrieve(context.Background(), "q", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestRetrieve_EmbedErrorPropagates(t *testing.T) {
	r := storage.NewVectorRetriever(&stubEmbedder{err: errors.New("ollama down")}, &stubSearcher{})

	_, err := r.Retrieve(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama down")
}

func TestRetrieve_SearchErrorPropagates(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("index broken")}
	r := storage.NewVectorRetriever(&stubEmbedder{vec: []float32{1}}, searcher)

	_, err := r.Retrieve(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index broken")
}

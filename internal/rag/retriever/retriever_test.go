package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

func TestRetrieveEmptyIndexSkipsEmbedding(t *testing.T) {
	store, err := vectorstore.New(2)
	require.NoError(t, err)
	emb := &fakeEmbedder{vector: []float32{1, 0}}

	results, err := New(emb, store).Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, emb.calls)
}

func TestRetrieveOrdersAndAnnotates(t *testing.T) {
	store, err := vectorstore.New(2)
	require.NoError(t, err)
	require.NoError(t, store.Add([]entity.Chunk{
		{ID: "far", Text: "far", Embedding: []float32{0, 1}},
		{ID: "near", Text: "near", Embedding: []float32{1, 0}},
	}))
	emb := &fakeEmbedder{vector: []float32{1, 0}}

	results, err := New(emb, store).Retrieve(context.Background(), "which is near?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Chunk.ID)
	assert.Equal(t, "which is near?", results[0].Query)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	store, err := vectorstore.New(2)
	require.NoError(t, err)
	require.NoError(t, store.Add([]entity.Chunk{
		{ID: "a", Text: "a", Embedding: []float32{1, 0}},
	}))
	emb := &fakeEmbedder{err: errors.New("embedding service down")}

	_, err = New(emb, store).Retrieve(context.Background(), "q", 1)
	require.Error(t, err)
}

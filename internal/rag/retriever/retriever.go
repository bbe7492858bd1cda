// Package retriever answers "which chunks are closest to this question".
package retriever

import (
	"context"
	"fmt"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/vectorstore"
)

// Embedder is the query-side embedding capability. It must be the same
// embedding space used at ingestion; a mismatch is a configuration error of
// the caller, not detected here.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Retriever embeds a query and delegates to the vector store.
type Retriever struct {
	embedder Embedder
	store    *vectorstore.Store
}

func New(embedder Embedder, store *vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Store exposes the wrapped index for stats and lifecycle management.
func (r *Retriever) Store() *vectorstore.Store { return r.store }

// Retrieve returns up to k results ordered by decreasing score. An empty
// index yields an empty result, not an error, and skips the query embedding
// entirely.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]entity.RetrievalResult, error) {
	if r.store.Len() == 0 {
		return nil, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]entity.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, entity.RetrievalResult{
			Chunk: hit.Chunk,
			Score: hit.Score,
			Query: query,
		})
	}
	return results, nil
}

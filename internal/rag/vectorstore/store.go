// Package vectorstore implements an exact nearest-neighbour index over
// fixed-dimension embeddings with cosine similarity scoring and durable
// save/load to a pair of files.
package vectorstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docqa/docqa-backend/internal/entity"
)

// Hit is a search result: a stored chunk and its relevance score in [0,1].
type Hit struct {
	Chunk entity.Chunk
	Score float64
}

// Store maps chunks to L2-normalized embeddings. All embeddings share the
// dimensionality fixed at creation. Concurrent searches are safe; mutations
// (Add, Save) must be serialized by the owner, which the internal lock also
// enforces.
type Store struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []entity.Chunk
}

// New creates an empty store with a fixed embedding dimensionality.
func New(dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: %d", entity.ErrInvalidDimension, dimension)
	}
	return &Store{dimension: dimension}, nil
}

// Dimension returns the fixed embedding dimensionality.
func (s *Store) Dimension() int { return s.dimension }

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Add appends chunks to the index. Embeddings are normalized in place so that
// search reduces to a dot product. Rejects the whole batch on a dimension
// mismatch, leaving the store unchanged.
func (s *Store) Add(chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("chunk %s: %w: got %d, want %d",
				chunk.ID, entity.ErrDimensionMismatch, len(chunk.Embedding), s.dimension)
		}
		vectors = append(vectors, normalize(chunk.Embedding))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, chunk := range chunks {
		chunk.Embedding = vectors[i]
		s.chunks = append(s.chunks, chunk)
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

// Search returns up to k hits ordered by decreasing score. Ties are broken by
// insertion order, earlier chunk first. An empty store yields no hits.
func (s *Store) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query: %w: got %d, want %d",
			entity.ErrDimensionMismatch, len(query), s.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.vectors) == 0 {
		return nil, nil
	}

	idx := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i, v := range s.vectors {
		idx[i] = i
		scores[i] = score(v, q)
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	if k > len(idx) {
		k = len(idx)
	}
	hits := make([]Hit, 0, k)
	for _, i := range idx[:k] {
		hits = append(hits, Hit{Chunk: s.chunks[i], Score: scores[i]})
	}
	return hits, nil
}

// score maps cosine similarity of unit vectors from [-1,1] onto [0,1].
func score(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	s := (dot + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

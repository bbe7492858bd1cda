package vectorstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(id, text string, embedding []float32) entity.Chunk {
	return entity.Chunk{ID: id, Text: text, Embedding: embedding}
}

func TestNewRejectsInvalidDimension(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, entity.ErrInvalidDimension)
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	s, err := New(3)
	require.NoError(t, err)

	err = s.Add([]entity.Chunk{chunk("a", "a", []float32{1, 0})})
	require.ErrorIs(t, err, entity.ErrDimensionMismatch)
	assert.Equal(t, 0, s.Len())
}

func TestSearchEmptyStore(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	hits, err := s.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchOrderedByScore(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	require.NoError(t, s.Add([]entity.Chunk{
		chunk("opposite", "far", []float32{-1, 0}),
		chunk("exact", "near", []float32{1, 0}),
		chunk("orthogonal", "mid", []float32{0, 1}),
	}))

	hits, err := s.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "exact", hits[0].Chunk.ID)
	assert.Equal(t, "orthogonal", hits[1].Chunk.ID)
	assert.Equal(t, "opposite", hits[2].Chunk.ID)

	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-6)
	assert.InDelta(t, 0.0, hits[2].Score, 1e-6)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchRespectsK(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	require.NoError(t, s.Add([]entity.Chunk{
		chunk("a", "a", []float32{1, 0}),
		chunk("b", "b", []float32{0, 1}),
	}))

	hits, err := s.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = s.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = s.Search([]float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchTiesBrokenByInsertionOrder(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	// Same vector three times: identical scores, insertion order must win.
	require.NoError(t, s.Add([]entity.Chunk{
		chunk("first", "t", []float32{1, 1}),
		chunk("second", "t", []float32{1, 1}),
		chunk("third", "t", []float32{2, 2}),
	}))

	hits, err := s.Search([]float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].Chunk.ID)
	assert.Equal(t, "second", hits[1].Chunk.ID)
	assert.Equal(t, "third", hits[2].Chunk.ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	base := filepath.Join(t.TempDir(), "tenant", "vectorstore")

	s, err := New(3)
	require.NoError(t, err)
	require.NoError(t, s.Add([]entity.Chunk{
		chunk("a", "alpha", []float32{1, 0, 0}),
		chunk("b", "beta", []float32{0, 1, 0}),
		chunk("c", "gamma", []float32{0.5, 0.5, 0}),
	}))
	s.chunks[0].Metadata = map[string]string{"source": "a.txt"}

	require.NoError(t, s.Save(base))
	assert.True(t, Exists(base))

	loaded, err := Load(base)
	require.NoError(t, err)
	require.Equal(t, s.Len(), loaded.Len())
	assert.Equal(t, s.Dimension(), loaded.Dimension())

	query := []float32{0.9, 0.1, 0}
	want, err := s.Search(query, 3)
	require.NoError(t, err)
	got, err := loaded.Search(query, 3)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Chunk.ID, got[i].Chunk.ID)
		assert.Equal(t, want[i].Chunk.Text, got[i].Chunk.Text)
		assert.Equal(t, want[i].Chunk.Metadata, got[i].Chunk.Metadata)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-6)
	}
}

func TestLoadMissingIndex(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, entity.ErrIndexNotFound)
}

func TestLoadDetectsCountMismatch(t *testing.T) {
	base := filepath.Join(t.TempDir(), "vectorstore")

	s, err := New(2)
	require.NoError(t, err)
	require.NoError(t, s.Add([]entity.Chunk{
		chunk("a", "a", []float32{1, 0}),
		chunk("b", "b", []float32{0, 1}),
	}))
	require.NoError(t, s.Save(base))

	// Rewrite the side-table with one chunk missing.
	require.NoError(t, os.WriteFile(base+chunksSuffix,
		[]byte(`{"count":1,"chunks":[{"id":"a","text":"a"}]}`), 0o644))

	_, err = Load(base)
	var corrupt *entity.CorruptIndexError
	require.ErrorAs(t, err, &corrupt)
}

func TestLoadRejectsOversizedHeader(t *testing.T) {
	base := filepath.Join(t.TempDir(), "vectorstore")

	// Valid magic and version, but the header claims far more vector data
	// than the file contains. Load must refuse before allocating anything.
	var buf bytes.Buffer
	header := indexHeader{Version: indexVersion, Dimension: 0xFFFFFFFF, Count: 1}
	copy(header.Magic[:], indexMagic)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
	require.NoError(t, os.WriteFile(base+indexSuffix, buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(base+chunksSuffix,
		[]byte(`{"count":0,"chunks":[]}`), 0o644))

	_, err := Load(base)
	var corrupt *entity.CorruptIndexError
	require.ErrorAs(t, err, &corrupt)
}

func TestLoadRejectsTruncatedIndexFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "vectorstore")

	s, err := New(4)
	require.NoError(t, err)
	require.NoError(t, s.Add([]entity.Chunk{
		chunk("a", "a", []float32{1, 0, 0, 0}),
		chunk("b", "b", []float32{0, 1, 0, 0}),
	}))
	require.NoError(t, s.Save(base))

	raw, err := os.ReadFile(base + indexSuffix)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(base+indexSuffix, raw[:len(raw)-5], 0o644))

	_, err = Load(base)
	var corrupt *entity.CorruptIndexError
	require.ErrorAs(t, err, &corrupt)
}

func TestLoadDetectsGarbageIndexFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "vectorstore")

	s, err := New(2)
	require.NoError(t, err)
	require.NoError(t, s.Add([]entity.Chunk{chunk("a", "a", []float32{1, 0})}))
	require.NoError(t, s.Save(base))

	require.NoError(t, os.WriteFile(base+indexSuffix, []byte("not an index"), 0o644))

	_, err = Load(base)
	var corrupt *entity.CorruptIndexError
	require.ErrorAs(t, err, &corrupt)
}

func TestSaveFailsIntoStorageError(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)
	require.NoError(t, s.Add([]entity.Chunk{chunk("a", "a", []float32{1, 0})}))

	// Base path whose parent is a file, not a directory.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err = s.Save(filepath.Join(blocker, "vectorstore"))
	var storageErr *entity.StorageError
	require.True(t, errors.As(err, &storageErr))
}

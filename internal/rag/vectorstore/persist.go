package vectorstore

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docqa/docqa-backend/internal/entity"
)

// A store persists as two files sharing a base path: <base>.index holds the
// vectors in a binary layout, <base>.chunks holds the chunk side-table as
// JSON. The files are keyed by position: vector i belongs to chunk i.

const (
	indexSuffix  = ".index"
	chunksSuffix = ".chunks"

	indexMagic   = "DQVS"
	indexVersion = uint16(1)
)

type indexHeader struct {
	Magic     [4]byte
	Version   uint16
	Dimension uint32
	Count     uint32
}

type chunkRecord struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type sideTable struct {
	Count  int           `json:"count"`
	Chunks []chunkRecord `json:"chunks"`
}

// Exists reports whether a persisted index is present at the base path.
func Exists(base string) bool {
	if _, err := os.Stat(base + indexSuffix); err != nil {
		return false
	}
	_, err := os.Stat(base + chunksSuffix)
	return err == nil
}

// Save writes both files atomically (write to a temp file, then rename) so a
// crashed save never leaves a half-written index behind.
func (s *Store) Save(base string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return &entity.StorageError{Op: "save", Path: base, Err: err}
	}

	if err := writeAtomic(base+indexSuffix, s.writeVectors); err != nil {
		return &entity.StorageError{Op: "save", Path: base + indexSuffix, Err: err}
	}
	if err := writeAtomic(base+chunksSuffix, s.writeChunks); err != nil {
		return &entity.StorageError{Op: "save", Path: base + chunksSuffix, Err: err}
	}
	return nil
}

// Load reconstructs a store from a saved pair of files. A structure and
// side-table that disagree produce a CorruptIndexError.
func Load(base string) (*Store, error) {
	f, err := os.Open(base + indexSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entity.ErrIndexNotFound, base)
		}
		return nil, &entity.StorageError{Op: "load", Path: base + indexSuffix, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &entity.StorageError{Op: "load", Path: base + indexSuffix, Err: err}
	}

	dimension, vectors, err := readVectors(bufio.NewReader(f), fi.Size())
	if err != nil {
		return nil, &entity.CorruptIndexError{Path: base + indexSuffix, Reason: err.Error()}
	}

	raw, err := os.ReadFile(base + chunksSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &entity.CorruptIndexError{Path: base + chunksSuffix, Reason: "chunk side-table missing"}
		}
		return nil, &entity.StorageError{Op: "load", Path: base + chunksSuffix, Err: err}
	}

	var table sideTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, &entity.CorruptIndexError{Path: base + chunksSuffix, Reason: err.Error()}
	}
	if table.Count != len(table.Chunks) {
		return nil, &entity.CorruptIndexError{
			Path:   base + chunksSuffix,
			Reason: fmt.Sprintf("side-table declares %d chunks, holds %d", table.Count, len(table.Chunks)),
		}
	}
	if len(table.Chunks) != len(vectors) {
		return nil, &entity.CorruptIndexError{
			Path:   base,
			Reason: fmt.Sprintf("index holds %d vectors, side-table %d chunks", len(vectors), len(table.Chunks)),
		}
	}

	store := &Store{dimension: dimension}
	for i, rec := range table.Chunks {
		store.chunks = append(store.chunks, entity.Chunk{
			ID:        rec.ID,
			Text:      rec.Text,
			Embedding: vectors[i],
			Metadata:  rec.Metadata,
		})
		store.vectors = append(store.vectors, vectors[i])
	}
	return store, nil
}

func (s *Store) writeVectors(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := indexHeader{
		Version:   indexVersion,
		Dimension: uint32(s.dimension),
		Count:     uint32(len(s.vectors)),
	}
	copy(header.Magic[:], indexMagic)
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return err
	}
	for _, v := range s.vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (s *Store) writeChunks(w io.Writer) error {
	table := sideTable{Count: len(s.chunks), Chunks: make([]chunkRecord, 0, len(s.chunks))}
	for _, chunk := range s.chunks {
		table.Chunks = append(table.Chunks, chunkRecord{
			ID:       chunk.ID,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(table)
}

func readVectors(r io.Reader, size int64) (int, [][]float32, error) {
	var header indexHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	if string(header.Magic[:]) != indexMagic {
		return 0, nil, fmt.Errorf("bad magic %q", header.Magic)
	}
	if header.Version != indexVersion {
		return 0, nil, fmt.Errorf("unsupported version %d", header.Version)
	}
	if header.Dimension == 0 {
		return 0, nil, fmt.Errorf("zero dimension")
	}

	// The header is untrusted until its claims match the file's byte size.
	// Allocating before this check would let a corrupt header demand
	// arbitrary amounts of memory.
	headerSize := int64(binary.Size(header))
	if size < headerSize {
		return 0, nil, fmt.Errorf("file truncated at %d bytes", size)
	}
	payload := uint64(size - headerSize)
	vectorBytes := 4 * uint64(header.Dimension)
	if header.Count == 0 {
		if payload != 0 {
			return 0, nil, fmt.Errorf("header declares no vectors, file holds %d extra bytes", payload)
		}
	} else if payload%uint64(header.Count) != 0 || payload/uint64(header.Count) != vectorBytes {
		return 0, nil, fmt.Errorf(
			"header declares %d vectors of dimension %d, file holds %d payload bytes",
			header.Count, header.Dimension, payload,
		)
	}

	vectors := make([][]float32, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		v := make([]float32, header.Dimension)
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return 0, nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, v)
	}
	return int(header.Dimension), vectors, nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

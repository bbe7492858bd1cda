// Package ingest turns raw documents into embedded chunks inside a vector
// store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/pkg/extract"
	"github.com/docqa/docqa-backend/internal/rag/chunker"
	"github.com/docqa/docqa-backend/internal/rag/vectorstore"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Embedder is the embedding capability consumed at ingestion time.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Ingestor splits, embeds and inserts documents into one vector store. It
// mutates the store in place and never persists it; saving is the caller's
// decision.
type Ingestor struct {
	chunker  *chunker.Chunker
	embedder Embedder
	store    *vectorstore.Store
}

func New(chunker *chunker.Chunker, embedder Embedder, store *vectorstore.Store) *Ingestor {
	return &Ingestor{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
	}
}

// Document ingests one document and returns the chunks added to the store.
// An empty document yields no chunks and no error.
func (ing *Ingestor) Document(ctx context.Context, doc entity.Document) ([]entity.Chunk, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, nil
	}

	texts := ing.chunker.Split(doc.Text)
	embeddings, err := ing.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(texts))
	}

	chunks := make([]entity.Chunk, 0, len(texts))
	for i, text := range texts {
		metadata := make(map[string]string, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["chunk_index"] = strconv.Itoa(i)
		metadata["total_chunks"] = strconv.Itoa(len(texts))

		chunks = append(chunks, entity.Chunk{
			ID:        uuid.New().String(),
			Text:      text,
			Embedding: embeddings[i],
			Metadata:  metadata,
		})
	}

	if err := ing.store.Add(chunks); err != nil {
		return nil, fmt.Errorf("add chunks to index: %w", err)
	}
	return chunks, nil
}

// Text ingests raw text with caller-supplied metadata.
func (ing *Ingestor) Text(ctx context.Context, text string, metadata map[string]string) ([]entity.Chunk, error) {
	return ing.Document(ctx, entity.Document{Text: text, Metadata: metadata})
}

// File extracts the file's text and ingests it. Unreadable or unparseable
// files fail with an error naming the path.
func (ing *Ingestor) File(ctx context.Context, path string) ([]entity.Chunk, error) {
	text, err := extract.Text(path)
	if err != nil {
		return nil, &entity.IngestError{Path: path, Err: err}
	}

	return ing.Document(ctx, entity.Document{
		Text: text,
		Metadata: map[string]string{
			"source":    filepath.Base(path),
			"file_path": path,
		},
	})
}

// Directory walks dir and ingests every file whose extension is in the
// allowed set. A failing file is logged and collected into the report, not
// raised; the walk continues.
func (ing *Ingestor) Directory(ctx context.Context, dir string, extensions []string) (*entity.IngestReport, error) {
	if len(extensions) == 0 {
		extensions = extract.DefaultExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	report := &entity.IngestReport{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		chunks, ferr := ing.File(ctx, path)
		if ferr != nil {
			ctxzap.Warn(ctx, "skipping file after ingest failure",
				zap.String("path", path),
				zap.Error(ferr),
			)
			var ie *entity.IngestError
			if errors.As(ferr, &ie) {
				report.Failures = append(report.Failures, *ie)
			} else {
				report.Failures = append(report.Failures, entity.IngestError{Path: path, Err: ferr})
			}
			return nil
		}

		report.ChunksAdded += len(chunks)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return report, nil
}

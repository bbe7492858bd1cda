package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/pkg/extract"
)

// DocumentUsecase implements document ingestion and retrieval inspection
type DocumentUsecase struct {
	pipelines Pipelines
	registry  Registry
	logger    *zap.Logger
}

// NewUsecase creates a new document use case
func NewUsecase(pipelines Pipelines, registry Registry, logger *zap.Logger) *DocumentUsecase {
	return &DocumentUsecase{
		pipelines: pipelines,
		registry:  registry,
		logger:    logger,
	}
}

// IngestText indexes a raw text snippet and persists the updated index.
func (uc *DocumentUsecase) IngestText(ctx context.Context, tenantID string, req *entity.IngestTextRequest) (*entity.IngestionRecord, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is empty", entity.ErrEmptyQuery)
	}

	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	chunks, err := rt.IngestText(ctx, req.Text, req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("ingest text: %w", err)
	}

	if err := rt.Save(ctx); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	ctxzap.Info(ctx, "text ingested",
		zap.String("tenant_id", tenantID),
		zap.Int("chunks", len(chunks)),
	)

	return uc.registry.RecordIngestion(ctx, tenantID, "text", len(chunks))
}

// IngestUpload stores an uploaded file in the tenant's documents directory,
// indexes it and persists the updated index. The stored copy makes the file
// part of the corpus re-indexed on a cold rebuild.
func (uc *DocumentUsecase) IngestUpload(ctx context.Context, tenantID, filename string, content []byte) (*entity.IngestionRecord, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, fmt.Errorf("%w: bad filename %q", entity.ErrUnsupportedFileType, filename)
	}
	if !extract.Supported(filepath.Ext(name)) {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedFileType, filepath.Ext(name))
	}

	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	if err := os.MkdirAll(rt.DocsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	path := filepath.Join(rt.DocsDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	chunks, err := rt.IngestFile(ctx, path)
	if err != nil {
		// Unindexable uploads do not stay in the corpus.
		if rmErr := os.Remove(path); rmErr != nil {
			ctxzap.Warn(ctx, "could not remove failed upload", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("ingest upload: %w", err)
	}

	if err := rt.Save(ctx); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	ctxzap.Info(ctx, "document ingested",
		zap.String("tenant_id", tenantID),
		zap.String("filename", name),
		zap.Int("chunks", len(chunks)),
	)

	return uc.registry.RecordIngestion(ctx, tenantID, name, len(chunks))
}

// Search returns raw retrieval hits with scores, bypassing the relevance gate.
func (uc *DocumentUsecase) Search(ctx context.Context, tenantID, query string, k int) (*entity.SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, entity.ErrEmptyQuery
	}

	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	results, err := rt.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	resp := &entity.SearchResponse{
		TenantID: tenantID,
		Query:    query,
		Results:  make([]entity.SearchHit, 0, len(results)),
	}
	for _, res := range results {
		resp.Results = append(resp.Results, entity.SearchHit{
			Text:     res.Chunk.Text,
			Score:    res.Score,
			Metadata: res.Chunk.Metadata,
		})
	}

	return resp, nil
}

// History lists the tenant's ingestion registry, newest first.
func (uc *DocumentUsecase) History(ctx context.Context, tenantID string) ([]*entity.IngestionRecord, error) {
	records, err := uc.registry.ListIngestions(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	return records, nil
}

package tenant

import (
	"context"
	"sync"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/ingest"
	"github.com/docqa/docqa-backend/internal/rag/pipeline"
	"github.com/docqa/docqa-backend/internal/rag/retriever"
	"github.com/docqa/docqa-backend/internal/rag/vectorstore"
)

// Runtime is one tenant's assembled pipeline plus its storage locations.
// Queries run concurrently against the store's own read locking; mu
// serializes ingestion and persistence so concurrent writers cannot
// interleave a save with a half-applied batch.
type Runtime struct {
	tenantID  string
	cfg       entity.TenantConfig
	provider  entity.Provider
	store     *vectorstore.Store
	ingestor  *ingest.Ingestor
	retriever *retriever.Retriever
	pipeline  *pipeline.Pipeline
	indexBase string
	docsDir   string

	mu sync.Mutex
}

func (rt *Runtime) TenantID() string { return rt.tenantID }

func (rt *Runtime) Config() entity.TenantConfig { return rt.cfg }

func (rt *Runtime) DocsDir() string { return rt.docsDir }

// Ask answers a question over the tenant's indexed documents.
func (rt *Runtime) Ask(ctx context.Context, query string, history []entity.ChatMessage) (*entity.Answer, error) {
	return rt.pipeline.Answer(ctx, query, history)
}

// Search returns raw retrieval hits without the relevance gate or generation.
func (rt *Runtime) Search(ctx context.Context, query string, k int) ([]entity.RetrievalResult, error) {
	if k <= 0 {
		k = rt.cfg.TopK
	}
	return rt.retriever.Retrieve(ctx, query, k)
}

// IngestText chunks, embeds and indexes a raw text.
func (rt *Runtime) IngestText(ctx context.Context, text string, metadata map[string]string) ([]entity.Chunk, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.ingestor.Text(ctx, text, metadata)
}

// IngestFile extracts, chunks, embeds and indexes one file.
func (rt *Runtime) IngestFile(ctx context.Context, path string) ([]entity.Chunk, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.ingestor.File(ctx, path)
}

// IngestDirectory indexes every supported file under dir. Per-file failures
// are collected in the report, not fatal.
func (rt *Runtime) IngestDirectory(ctx context.Context, dir string, extensions []string) (*entity.IngestReport, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.ingestor.Directory(ctx, dir, extensions)
}

// Save persists the tenant's index to its storage location.
func (rt *Runtime) Save(ctx context.Context) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.store.Save(rt.indexBase)
}

// Stats reports the tenant's current index and provider state.
func (rt *Runtime) Stats() entity.TenantStats {
	return entity.TenantStats{
		TenantID:    rt.tenantID,
		VectorCount: rt.store.Len(),
		Provider:    rt.provider,
		Model:       rt.cfg.Model,
	}
}

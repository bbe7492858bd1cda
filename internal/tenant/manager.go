// Package tenant caches one assembled pipeline per tenant and builds them
// lazily on first use.
package tenant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/chunker"
	"github.com/docqa/docqa-backend/internal/rag/generator"
	"github.com/docqa/docqa-backend/internal/rag/ingest"
	"github.com/docqa/docqa-backend/internal/rag/pipeline"
	"github.com/docqa/docqa-backend/internal/rag/retriever"
	"github.com/docqa/docqa-backend/internal/rag/vectorstore"
)

const (
	indexBaseName = "vectorstore"
	docsDirName   = "documents"
)

// Tenant ids become directory names, so the charset is restricted up front.
var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// entry is one cached tenant slot. ready is closed when the build finishes;
// waiters then read rt and err without further synchronization.
type entry struct {
	ready chan struct{}
	rt    *Runtime
	err   error
}

// Manager builds and caches tenant runtimes. For each tenant id at most one
// construction runs at a time; concurrent callers wait for it and share the
// outcome. Failed builds are not cached, the next caller retries.
type Manager struct {
	dataDir  string
	chunking config.ChunkingConfig
	configs  ConfigSource
	embedder Embedder
	newLLM   LLMFactory
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

func NewManager(
	dataDir string,
	chunking config.ChunkingConfig,
	configs ConfigSource,
	embedder Embedder,
	newLLM LLMFactory,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		dataDir:  dataDir,
		chunking: chunking,
		configs:  configs,
		embedder: embedder,
		newLLM:   newLLM,
		logger:   logger,
		entries:  make(map[string]*entry),
	}
}

// Get returns the tenant's runtime, building it on first use.
func (m *Manager) Get(ctx context.Context, tenantID string) (*Runtime, error) {
	if !tenantIDPattern.MatchString(tenantID) {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidTenantID, tenantID)
	}

	m.mu.Lock()
	if e, ok := m.entries[tenantID]; ok {
		m.mu.Unlock()
		select {
		case <-e.ready:
			return e.rt, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &entry{ready: make(chan struct{})}
	m.entries[tenantID] = e
	m.mu.Unlock()

	e.rt, e.err = m.build(ctx, tenantID)
	if e.err != nil {
		m.mu.Lock()
		// Only evict our own slot; Invalidate may have already replaced it.
		if cur, ok := m.entries[tenantID]; ok && cur == e {
			delete(m.entries, tenantID)
		}
		m.mu.Unlock()
	}
	close(e.ready)

	return e.rt, e.err
}

// Invalidate drops the tenant's cached runtime. The next Get rebuilds it from
// the configuration source and the persisted index.
func (m *Manager) Invalidate(tenantID string) {
	m.mu.Lock()
	delete(m.entries, tenantID)
	m.mu.Unlock()
}

// Reload rebuilds the tenant's runtime immediately.
func (m *Manager) Reload(ctx context.Context, tenantID string) (*Runtime, error) {
	m.Invalidate(tenantID)
	return m.Get(ctx, tenantID)
}

// Loaded lists the runtimes whose construction has completed successfully.
func (m *Manager) Loaded() []*Runtime {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	var runtimes []*Runtime
	for _, e := range entries {
		select {
		case <-e.ready:
			if e.err == nil {
				runtimes = append(runtimes, e.rt)
			}
		default:
			// still building
		}
	}
	return runtimes
}

func (m *Manager) build(ctx context.Context, tenantID string) (*Runtime, error) {
	m.logger.Info("building tenant runtime", zap.String("tenant_id", tenantID))

	cfgPtr, err := m.configs.GetConfig(ctx, tenantID)
	if err != nil {
		return nil, &entity.TenantLoadError{TenantID: tenantID, Err: err}
	}

	cfg := *cfgPtr
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, &entity.TenantLoadError{TenantID: tenantID, Err: err}
	}

	tenantDir := filepath.Join(m.dataDir, tenantID)
	if err := os.MkdirAll(tenantDir, 0o755); err != nil {
		return nil, &entity.TenantLoadError{TenantID: tenantID, Err: fmt.Errorf("create tenant dir: %w", err)}
	}
	indexBase := filepath.Join(tenantDir, indexBaseName)
	docsDir := filepath.Join(tenantDir, docsDirName)

	llm, err := m.newLLM(cfg)
	if err != nil {
		return nil, &entity.TenantLoadError{TenantID: tenantID, Err: err}
	}

	split, err := chunker.New(m.chunking.Size, m.chunking.Overlap)
	if err != nil {
		return nil, &entity.TenantLoadError{TenantID: tenantID, Err: err}
	}

	store, freshIndex, err := m.openStore(indexBase)
	if err != nil {
		return nil, &entity.TenantLoadError{TenantID: tenantID, Err: err}
	}

	rt := &Runtime{
		tenantID:  tenantID,
		cfg:       cfg,
		provider:  llm.Name(),
		store:     store,
		ingestor:  ingest.New(split, m.embedder, store),
		retriever: retriever.New(m.embedder, store),
		indexBase: indexBase,
		docsDir:   docsDir,
	}
	rt.pipeline = pipeline.New(rt.retriever, generator.New(llm, generator.Config{
		SystemPrompt: cfg.SystemPrompt,
		Temperature:  *cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
	}), pipeline.Config{
		TopK:      cfg.TopK,
		Threshold: cfg.RAGThreshold,
	})

	if freshIndex {
		if err := m.seedFromDocuments(ctx, rt); err != nil {
			return nil, &entity.TenantLoadError{TenantID: tenantID, Err: err}
		}
	}

	m.logger.Info("tenant runtime ready",
		zap.String("tenant_id", tenantID),
		zap.String("provider", string(rt.provider)),
		zap.Int("vector_count", store.Len()),
	)

	return rt, nil
}

// openStore loads the persisted index or starts an empty one. The bool
// reports whether the store is fresh and should be seeded from the tenant's
// documents directory.
func (m *Manager) openStore(indexBase string) (*vectorstore.Store, bool, error) {
	if vectorstore.Exists(indexBase) {
		store, err := vectorstore.Load(indexBase)
		if err != nil {
			return nil, false, err
		}
		if store.Dimension() != m.embedder.Dimension() {
			return nil, false, fmt.Errorf("%w: index has dimension %d, embedder produces %d",
				entity.ErrDimensionMismatch, store.Dimension(), m.embedder.Dimension())
		}
		return store, false, nil
	}

	store, err := vectorstore.New(m.embedder.Dimension())
	if err != nil {
		return nil, false, err
	}
	return store, true, nil
}

// seedFromDocuments indexes the tenant's documents directory into a fresh
// store and persists the result, so the next startup loads instead of
// re-embedding.
func (m *Manager) seedFromDocuments(ctx context.Context, rt *Runtime) error {
	info, err := os.Stat(rt.docsDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	report, err := rt.IngestDirectory(ctx, rt.docsDir, nil)
	if err != nil {
		return err
	}
	for _, failure := range report.Failures {
		m.logger.Warn("document skipped during initial indexing",
			zap.String("tenant_id", rt.tenantID),
			zap.String("path", failure.Path),
			zap.Error(failure.Err),
		)
	}
	if report.ChunksAdded == 0 {
		return nil
	}

	m.logger.Info("initial indexing complete",
		zap.String("tenant_id", rt.tenantID),
		zap.Int("chunks_added", report.ChunksAdded),
	)
	return rt.Save(ctx)
}

package tenant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/generator"
)

type fakeConfigSource struct {
	mu      sync.Mutex
	configs map[string]entity.TenantConfig
	calls   atomic.Int64
	delay   time.Duration
	failN   atomic.Int64 // fail this many calls before succeeding
}

func (f *fakeConfigSource) GetConfig(_ context.Context, tenantID string) (*entity.TenantConfig, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failN.Load() > 0 {
		f.failN.Add(-1)
		return nil, errors.New("config source unavailable")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[tenantID]
	if !ok {
		return nil, entity.ErrTenantNotFound
	}
	return &cfg, nil
}

func (f *fakeConfigSource) set(tenantID string, cfg entity.TenantConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configs == nil {
		f.configs = make(map[string]entity.TenantConfig)
	}
	f.configs[tenantID] = cfg
}

type fakeEmbedder struct {
	embedCalls atomic.Int64
}

func (f *fakeEmbedder) Dimension() int { return 4 }

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls.Add(int64(len(texts)))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 4)
		v[len(text)%4] = 1
		vectors[i] = v
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type staticLLM struct{ answer string }

func (s *staticLLM) Complete(context.Context, entity.CompletionRequest) (string, error) {
	return s.answer, nil
}

func (s *staticLLM) Name() entity.Provider { return entity.ProviderMock }

func mockTenantConfig() entity.TenantConfig {
	return entity.TenantConfig{Provider: entity.ProviderMock}
}

func newTestManager(t *testing.T, source ConfigSource) (*Manager, *fakeEmbedder) {
	t.Helper()
	embedder := &fakeEmbedder{}
	factory := func(entity.TenantConfig) (generator.LLM, error) {
		return &staticLLM{answer: "ok"}, nil
	}
	m := NewManager(t.TempDir(), config.ChunkingConfig{Size: 500, Overlap: 50},
		source, embedder, factory, zap.NewNop())
	return m, embedder
}

func TestGetRejectsUnsafeTenantIDs(t *testing.T) {
	m, _ := newTestManager(t, &fakeConfigSource{})

	for _, id := range []string{"", "..", "a/b", `a\b`, ".hidden", "tenant id", "-leading"} {
		_, err := m.Get(context.Background(), id)
		assert.ErrorIs(t, err, entity.ErrInvalidTenantID, "id %q", id)
	}
}

func TestGetUnknownTenant(t *testing.T) {
	m, _ := newTestManager(t, &fakeConfigSource{})

	_, err := m.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, entity.ErrTenantNotFound)

	var loadErr *entity.TenantLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "nobody", loadErr.TenantID)
}

func TestGetBuildsOncePerTenant(t *testing.T) {
	source := &fakeConfigSource{delay: 20 * time.Millisecond}
	source.set("acme", mockTenantConfig())
	m, _ := newTestManager(t, source)

	const callers = 16
	runtimes := make([]*Runtime, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rt, err := m.Get(context.Background(), "acme")
			assert.NoError(t, err)
			runtimes[i] = rt
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), source.calls.Load(), "exactly one construction expected")
	for _, rt := range runtimes {
		assert.Same(t, runtimes[0], rt)
	}
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	source := &fakeConfigSource{}
	source.set("acme", mockTenantConfig())
	source.failN.Store(1)
	m, _ := newTestManager(t, source)

	_, err := m.Get(context.Background(), "acme")
	require.Error(t, err)

	rt, err := m.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", rt.TenantID())
	assert.Equal(t, int64(2), source.calls.Load())
}

func TestInvalidatePicksUpConfigChanges(t *testing.T) {
	source := &fakeConfigSource{}
	cfg := mockTenantConfig()
	cfg.TopK = 2
	source.set("acme", cfg)
	m, _ := newTestManager(t, source)

	rt, err := m.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Config().TopK)

	cfg.TopK = 7
	source.set("acme", cfg)

	same, err := m.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, same.Config().TopK, "cached runtime must not see the edit")

	m.Invalidate("acme")
	rebuilt, err := m.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 7, rebuilt.Config().TopK)
	assert.NotSame(t, rt, rebuilt)
}

func TestBuildSeedsFromDocumentsDirectory(t *testing.T) {
	source := &fakeConfigSource{}
	source.set("acme", mockTenantConfig())

	embedder := &fakeEmbedder{}
	factory := func(entity.TenantConfig) (generator.LLM, error) {
		return &staticLLM{answer: "ok"}, nil
	}
	dataDir := t.TempDir()
	docsDir := filepath.Join(dataDir, "acme", "documents")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "note.txt"), []byte("hello world"), 0o644))

	m := NewManager(dataDir, config.ChunkingConfig{Size: 500, Overlap: 50},
		source, embedder, factory, zap.NewNop())

	rt, err := m.Get(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Stats().VectorCount)

	// The seeded index is persisted immediately.
	_, err = os.Stat(filepath.Join(dataDir, "acme", "vectorstore.index"))
	assert.NoError(t, err)

	// A rebuild loads the persisted index instead of re-embedding.
	embedded := embedder.embedCalls.Load()
	rebuilt, err := m.Reload(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, rebuilt.Stats().VectorCount)
	assert.Equal(t, embedded, embedder.embedCalls.Load())
}

func TestRuntimeIngestAndAsk(t *testing.T) {
	source := &fakeConfigSource{}
	source.set("acme", mockTenantConfig())
	m, _ := newTestManager(t, source)

	rt, err := m.Get(context.Background(), "acme")
	require.NoError(t, err)

	chunks, err := rt.IngestText(context.Background(), "some indexed knowledge", map[string]string{"origin": "test"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	answer, err := rt.Ask(context.Background(), "some indexed knowledge", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Text)
	assert.True(t, answer.UsedContext)
}

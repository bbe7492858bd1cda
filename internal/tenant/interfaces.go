package tenant

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/generator"
)

// ConfigSource supplies tenant configuration. The manager reads it once per
// pipeline construction; later edits become visible after Invalidate.
type ConfigSource interface {
	GetConfig(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
}

// Embedder is the embedding capability shared by every tenant pipeline.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// LLMFactory resolves a tenant's provider setting to a completion backend.
type LLMFactory func(cfg entity.TenantConfig) (generator.LLM, error)

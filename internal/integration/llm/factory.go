package llm

import (
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/rag/generator"
)

// New builds the completion backend a tenant's config asks for. With
// EnableMocks set every tenant gets the mock regardless of its provider.
func New(cfg *config.Config, tenantCfg entity.TenantConfig, logger *zap.Logger) (generator.LLM, error) {
	if cfg.EnableMocks {
		return NewMockConnector(logger), nil
	}

	switch tenantCfg.Provider {
	case entity.ProviderOpenAI:
		return NewOpenAIConnector(cfg.OpenAICfg, tenantCfg.Model, logger), nil
	case entity.ProviderOpenRouter:
		return NewOpenRouterConnector(cfg.OpenRouterCfg, tenantCfg.Model, logger), nil
	case entity.ProviderMock:
		return NewMockConnector(logger), nil
	default:
		return nil, entity.ErrUnknownProvider
	}
}

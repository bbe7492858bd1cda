package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/entity"
	pkghttp "github.com/docqa/docqa-backend/pkg/http"
)

// OpenRouterConnector reuses the OpenAI wire contract. OpenRouter only adds
// the app-attribution headers it uses for ranking.
type OpenRouterConnector struct {
	inner   *OpenAIConnector
	appName string
	referer string
}

func NewOpenRouterConnector(cfg config.ProviderConfig, model string, logger *zap.Logger) *OpenRouterConnector {
	return &OpenRouterConnector{
		inner:   NewOpenAIConnector(cfg, model, logger),
		appName: cfg.AppName,
		referer: cfg.Referer,
	}
}

func (c *OpenRouterConnector) Name() entity.Provider { return entity.ProviderOpenRouter }

func (c *OpenRouterConnector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	var opts []pkghttp.RequestOpt
	if c.appName != "" {
		opts = append(opts, pkghttp.WithHeader("X-Title", c.appName))
	}
	if c.referer != "" {
		opts = append(opts, pkghttp.WithHeader("HTTP-Referer", c.referer))
	}
	return c.inner.complete(ctx, req, opts...)
}

// Package embedding talks to an OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/integration/common"
	pkghttp "github.com/docqa/docqa-backend/pkg/http"
)

type Connector struct {
	config    config.EmbeddingConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Dimension reports the configured output dimensionality of the model.
func (c *Connector) Dimension() int {
	return c.config.Dimension
}

// EmbedTexts embeds a batch of texts in one request, preserving input order.
func (c *Connector) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding texts", zap.Int("count", len(texts)), zap.String("model", c.config.Model))

	req := embeddingRequest{Model: c.config.Model, Input: texts}

	resp, err := retry.DoWithData(func() (*embeddingResponse, error) {
		var raw embeddingResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &raw); err != nil {
			return nil, err
		}
		return &raw, nil
	}, append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed texts: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embed texts: embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	return vectors, nil
}

// EmbedText embeds a single text.
func (c *Connector) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Package llm provides chat-completion backends for answer generation.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/integration/common"
	pkghttp "github.com/docqa/docqa-backend/pkg/http"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIConnector talks to the OpenAI chat completions API, or any backend
// exposing the same contract.
type OpenAIConnector struct {
	config    config.ProviderConfig
	connector *pkghttp.Connector
	model     string
	logger    *zap.Logger
}

func NewOpenAIConnector(cfg config.ProviderConfig, model string, logger *zap.Logger) *OpenAIConnector {
	return &OpenAIConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		model:     model,
		logger:    logger,
	}
}

func (c *OpenAIConnector) Name() entity.Provider { return entity.ProviderOpenAI }

func (c *OpenAIConnector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	return c.complete(ctx, req)
}

func (c *OpenAIConnector) complete(ctx context.Context, req entity.CompletionRequest, opts ...pkghttp.RequestOpt) (string, error) {
	ctxzap.Info(ctx, "requesting chat completion", zap.String("model", c.model))

	body := chatRequest{
		Model:       c.model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	resp, err := retry.DoWithData(func() (*chatResponse, error) {
		var raw chatResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, body, &raw, opts...); err != nil {
			return nil, err
		}
		return &raw, nil
	}, append(c.config.Retry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("chat completion: provider error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: response contains no choices")
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "chat completion received", zap.Int("answer_length", len(answer)))

	return answer, nil
}

// buildMessages flattens system prompt, history and the current prompt into
// the provider message order.
func buildMessages(req entity.CompletionRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: entity.RoleSystem, Content: req.SystemPrompt})
	}
	for _, msg := range req.History {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, chatMessage{Role: entity.RoleUser, Content: req.Prompt})
	return messages
}

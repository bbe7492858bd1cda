package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
)

// ChatUsecase implements question answering over a tenant's documents
type ChatUsecase struct {
	pipelines Pipelines
	logger    *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(pipelines Pipelines, logger *zap.Logger) *ChatUsecase {
	return &ChatUsecase{
		pipelines: pipelines,
		logger:    logger,
	}
}

// Ask answers a question for the tenant, using indexed context when it is
// relevant enough.
func (uc *ChatUsecase) Ask(ctx context.Context, tenantID string, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, entity.ErrEmptyQuery
	}

	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	answer, err := rt.Ask(ctx, req.Message, req.History)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	ctxzap.Info(ctx, "question answered",
		zap.String("tenant_id", tenantID),
		zap.Bool("used_context", answer.UsedContext),
		zap.Int("sources", len(answer.Sources)),
	)

	resp := &entity.ChatResponse{
		TenantID:    tenantID,
		Answer:      answer.Text,
		UsedContext: answer.UsedContext,
		Sources:     make([]entity.SourceInfo, 0, len(answer.Sources)),
	}
	for _, chunk := range answer.Sources {
		resp.Sources = append(resp.Sources, entity.SourceInfo{
			ID:       chunk.ID,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}

	return resp, nil
}

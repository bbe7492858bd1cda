package chat

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
)

type ChatUsecase interface {
	Ask(ctx context.Context, tenantID string, req *entity.ChatRequest) (*entity.ChatResponse, error)
}

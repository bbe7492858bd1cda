package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/api/middleware"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/pkg/logger"
	"github.com/docqa/docqa-backend/internal/pkg/response"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Ask handles POST /chat
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")
	tenantID := middleware.TenantFromContext(ctx)

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode chat request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.usecase.Ask(ctx, tenantID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var genErr *entity.GenerationError

	switch {
	case errors.Is(err, entity.ErrTenantNotFound):
		ctxzap.Warn(ctx, "tenant not found", zap.Error(err))
		response.Error(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, entity.ErrInvalidTenantID),
		errors.Is(err, entity.ErrEmptyQuery),
		errors.Is(err, entity.ErrInvalidTenantConfig):
		ctxzap.Warn(ctx, "invalid chat request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &genErr):
		ctxzap.Error(ctx, "generation backend failed", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "generation backend failed")
	default:
		ctxzap.Error(ctx, "chat request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/pkg/logger"
	"github.com/docqa/docqa-backend/internal/pkg/response"
)

type Handler struct {
	usecase TenantUsecase
}

func NewHandler(usecase TenantUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// List handles GET /tenants
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListTenants")

	tenants, err := h.usecase.List(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if tenants == nil {
		tenants = []string{}
	}

	response.Success(w, map[string][]string{"tenants": tenants})
}

// Initialize handles POST /tenants/{tenant_id}/initialize
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "InitializeTenant")
	tenantID := chi.URLParam(r, "tenant_id")

	var cfg entity.TenantConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		ctxzap.Warn(ctx, "failed to decode tenant config", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stats, err := h.usecase.Initialize(ctx, tenantID, cfg)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, stats)
}

// Reload handles POST /tenants/{tenant_id}/reload
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ReloadTenant")
	tenantID := chi.URLParam(r, "tenant_id")

	stats, err := h.usecase.Reload(ctx, tenantID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, stats)
}

// Save handles POST /tenants/{tenant_id}/save
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SaveTenantIndex")
	tenantID := chi.URLParam(r, "tenant_id")

	if err := h.usecase.SaveIndex(ctx, tenantID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]string{"status": "saved"})
}

// Stats handles GET /tenants/{tenant_id}/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "TenantStats")
	tenantID := chi.URLParam(r, "tenant_id")

	stats, err := h.usecase.Stats(ctx, tenantID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, stats)
}

// GlobalStats handles GET /stats
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GlobalStats")

	stats, err := h.usecase.GlobalStats(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, stats)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrTenantNotFound):
		ctxzap.Warn(ctx, "tenant not found", zap.Error(err))
		response.Error(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, entity.ErrInvalidTenantID),
		errors.Is(err, entity.ErrInvalidTenantConfig),
		errors.Is(err, entity.ErrUnknownProvider):
		ctxzap.Warn(ctx, "invalid tenant request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		ctxzap.Error(ctx, "tenant request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

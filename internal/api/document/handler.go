package document

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/api/middleware"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/pkg/logger"
	"github.com/docqa/docqa-backend/internal/pkg/response"
)

const maxUploadSize = 32 << 20 // 32 MiB

type Handler struct {
	usecase DocumentUsecase
}

func NewHandler(usecase DocumentUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// IngestText handles POST /documents/text
func (h *Handler) IngestText(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "IngestText")
	tenantID := middleware.TenantFromContext(ctx)

	var req entity.IngestTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode ingest request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.usecase.IngestText(ctx, tenantID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, record)
}

// Upload handles POST /documents/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Upload")
	tenantID := middleware.TenantFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid form data or size too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ctxzap.Warn(ctx, "missing file field", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "a file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		ctxzap.Error(ctx, "failed to read upload", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	record, err := h.usecase.IngestUpload(ctx, tenantID, header.Filename, content)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, record)
}

// Search handles GET /documents/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Search")
	tenantID := middleware.TenantFromContext(ctx)

	query := r.URL.Query().Get("q")
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))

	resp, err := h.usecase.Search(ctx, tenantID, query, k)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// History handles GET /documents/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "History")
	tenantID := middleware.TenantFromContext(ctx)

	records, err := h.usecase.History(ctx, tenantID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if records == nil {
		records = []*entity.IngestionRecord{}
	}

	response.Success(w, records)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var ingestErr *entity.IngestError

	switch {
	case errors.Is(err, entity.ErrTenantNotFound):
		ctxzap.Warn(ctx, "tenant not found", zap.Error(err))
		response.Error(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, entity.ErrInvalidTenantID),
		errors.Is(err, entity.ErrEmptyQuery),
		errors.Is(err, entity.ErrUnsupportedFileType):
		ctxzap.Warn(ctx, "invalid document request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ingestErr):
		ctxzap.Warn(ctx, "document could not be ingested", zap.Error(err))
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		ctxzap.Error(ctx, "document request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

package document

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
)

type DocumentUsecase interface {
	IngestText(ctx context.Context, tenantID string, req *entity.IngestTextRequest) (*entity.IngestionRecord, error)
	IngestUpload(ctx context.Context, tenantID, filename string, content []byte) (*entity.IngestionRecord, error)
	Search(ctx context.Context, tenantID, query string, k int) (*entity.SearchResponse, error)
	History(ctx context.Context, tenantID string) ([]*entity.IngestionRecord, error)
}

package document

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/tenant"
)

// Pipelines resolves a tenant id to its runtime.
type Pipelines interface {
	Get(ctx context.Context, tenantID string) (*tenant.Runtime, error)
}

// Registry records what was ingested for which tenant.
type Registry interface {
	RecordIngestion(ctx context.Context, tenantID, source string, chunks int) (*entity.IngestionRecord, error)
	ListIngestions(ctx context.Context, tenantID string) ([]*entity.IngestionRecord, error)
}

package chat

import (
	"context"

	"github.com/docqa/docqa-backend/internal/tenant"
)

// Pipelines resolves a tenant id to its runtime.
type Pipelines interface {
	Get(ctx context.Context, tenantID string) (*tenant.Runtime, error)
}

package tenantadmin

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/tenant"
)

// Pipelines is the runtime cache managed on behalf of the admin surface.
type Pipelines interface {
	Get(ctx context.Context, tenantID string) (*tenant.Runtime, error)
	Reload(ctx context.Context, tenantID string) (*tenant.Runtime, error)
	Invalidate(tenantID string)
	Loaded() []*tenant.Runtime
}

// ConfigStore persists tenant configurations.
type ConfigStore interface {
	UpsertConfig(ctx context.Context, tenantID string, cfg entity.TenantConfig) error
	ListTenants(ctx context.Context) ([]string, error)
}

package tenant

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
)

type TenantUsecase interface {
	Initialize(ctx context.Context, tenantID string, cfg entity.TenantConfig) (*entity.TenantStats, error)
	Reload(ctx context.Context, tenantID string) (*entity.TenantStats, error)
	SaveIndex(ctx context.Context, tenantID string) error
	Stats(ctx context.Context, tenantID string) (*entity.TenantStats, error)
	GlobalStats(ctx context.Context) (*entity.GlobalStats, error)
	List(ctx context.Context) ([]string, error)
}

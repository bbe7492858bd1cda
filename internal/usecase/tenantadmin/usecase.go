package tenantadmin

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
)

// TenantUsecase implements the tenant administration surface
type TenantUsecase struct {
	pipelines Pipelines
	configs   ConfigStore
	logger    *zap.Logger
}

// NewUsecase creates a new tenant administration use case
func NewUsecase(pipelines Pipelines, configs ConfigStore, logger *zap.Logger) *TenantUsecase {
	return &TenantUsecase{
		pipelines: pipelines,
		configs:   configs,
		logger:    logger,
	}
}

// Initialize stores the tenant's configuration and builds its pipeline so the
// first request does not pay construction latency.
func (uc *TenantUsecase) Initialize(ctx context.Context, tenantID string, cfg entity.TenantConfig) (*entity.TenantStats, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := uc.configs.UpsertConfig(ctx, tenantID, cfg); err != nil {
		return nil, fmt.Errorf("store tenant config: %w", err)
	}

	// Drop any runtime built from the previous config.
	uc.pipelines.Invalidate(tenantID)

	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("build tenant pipeline: %w", err)
	}

	ctxzap.Info(ctx, "tenant initialized",
		zap.String("tenant_id", tenantID),
		zap.String("provider", string(cfg.Provider)),
	)

	stats := rt.Stats()
	return &stats, nil
}

// Reload rebuilds a tenant's pipeline from its stored config and index.
func (uc *TenantUsecase) Reload(ctx context.Context, tenantID string) (*entity.TenantStats, error) {
	rt, err := uc.pipelines.Reload(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("reload tenant: %w", err)
	}

	ctxzap.Info(ctx, "tenant reloaded", zap.String("tenant_id", tenantID))

	stats := rt.Stats()
	return &stats, nil
}

// SaveIndex persists the tenant's in-memory index.
func (uc *TenantUsecase) SaveIndex(ctx context.Context, tenantID string) error {
	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("resolve tenant: %w", err)
	}

	if err := rt.Save(ctx); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	ctxzap.Info(ctx, "tenant index saved", zap.String("tenant_id", tenantID))
	return nil
}

// Stats reports one tenant's index and provider state, building the tenant if
// it is not loaded yet.
func (uc *TenantUsecase) Stats(ctx context.Context, tenantID string) (*entity.TenantStats, error) {
	rt, err := uc.pipelines.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	stats := rt.Stats()
	return &stats, nil
}

// GlobalStats aggregates the currently loaded tenants.
func (uc *TenantUsecase) GlobalStats(ctx context.Context) (*entity.GlobalStats, error) {
	runtimes := uc.pipelines.Loaded()

	stats := &entity.GlobalStats{
		TotalTenants: len(runtimes),
		Tenants:      make([]entity.TenantStats, 0, len(runtimes)),
	}
	for _, rt := range runtimes {
		stats.Tenants = append(stats.Tenants, rt.Stats())
	}

	return stats, nil
}

// List returns every tenant known to the configuration source.
func (uc *TenantUsecase) List(ctx context.Context) ([]string, error) {
	tenants, err := uc.configs.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

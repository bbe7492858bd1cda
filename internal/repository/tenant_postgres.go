package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docqa/docqa-backend/internal/entity"
)

// TenantConfigRepository defines the interface for tenant configuration persistence
type TenantConfigRepository interface {
	GetConfig(ctx context.Context, tenantID string) (*entity.TenantConfig, error)
	UpsertConfig(ctx context.Context, tenantID string, cfg entity.TenantConfig) error
	ListTenants(ctx context.Context) ([]string, error)
}

var _ TenantConfigRepository = &TenantConfigPostgres{}

// TenantConfigPostgres implements TenantConfigRepository using PostgreSQL
type TenantConfigPostgres struct {
	db *pgxpool.Pool
}

func NewTenantConfigPostgres(db *pgxpool.Pool) *TenantConfigPostgres {
	return &TenantConfigPostgres{db: db}
}

func (r *TenantConfigPostgres) GetConfig(ctx context.Context, tenantID string) (*entity.TenantConfig, error) {
	const query = `
		SELECT provider, model, temperature, max_tokens, top_k, rag_threshold, system_prompt
		FROM tenant_configs
		WHERE tenant_id = $1`

	var cfg entity.TenantConfig
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&cfg.Provider,
		&cfg.Model,
		&cfg.Temperature,
		&cfg.MaxTokens,
		&cfg.TopK,
		&cfg.RAGThreshold,
		&cfg.SystemPrompt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", entity.ErrTenantNotFound, tenantID)
		}
		return nil, fmt.Errorf("get tenant config: %w", err)
	}

	return &cfg, nil
}

func (r *TenantConfigPostgres) UpsertConfig(ctx context.Context, tenantID string, cfg entity.TenantConfig) error {
	const query = `
		INSERT INTO tenant_configs (tenant_id, provider, model, temperature, max_tokens, top_k, rag_threshold, system_prompt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id) DO UPDATE SET
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			temperature = EXCLUDED.temperature,
			max_tokens = EXCLUDED.max_tokens,
			top_k = EXCLUDED.top_k,
			rag_threshold = EXCLUDED.rag_threshold,
			system_prompt = EXCLUDED.system_prompt,
			updated_at = now()`

	_, err := r.db.Exec(ctx, query,
		tenantID,
		cfg.Provider,
		cfg.Model,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.TopK,
		cfg.RAGThreshold,
		cfg.SystemPrompt,
	)
	if err != nil {
		return fmt.Errorf("upsert tenant config: %w", err)
	}

	return nil
}

func (r *TenantConfigPostgres) ListTenants(ctx context.Context) ([]string, error) {
	const query = `SELECT tenant_id FROM tenant_configs ORDER BY tenant_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant id: %w", err)
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}

	return tenants, nil
}

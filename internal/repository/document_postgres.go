package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docqa/docqa-backend/internal/entity"
)

// IngestionRepository defines the interface for the ingested-document registry
type IngestionRepository interface {
	RecordIngestion(ctx context.Context, tenantID, source string, chunks int) (*entity.IngestionRecord, error)
	ListIngestions(ctx context.Context, tenantID string) ([]*entity.IngestionRecord, error)
}

var _ IngestionRepository = &IngestionPostgres{}

// IngestionPostgres implements IngestionRepository using PostgreSQL
type IngestionPostgres struct {
	db *pgxpool.Pool
}

func NewIngestionPostgres(db *pgxpool.Pool) *IngestionPostgres {
	return &IngestionPostgres{db: db}
}

func (r *IngestionPostgres) RecordIngestion(ctx context.Context, tenantID, source string, chunks int) (*entity.IngestionRecord, error) {
	const query = `
		INSERT INTO ingested_documents (id, tenant_id, source, chunks)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	record := &entity.IngestionRecord{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Source:   source,
		Chunks:   chunks,
	}

	err := r.db.QueryRow(ctx, query, record.ID, record.TenantID, record.Source, record.Chunks).
		Scan(&record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record ingestion: %w", err)
	}

	return record, nil
}

func (r *IngestionPostgres) ListIngestions(ctx context.Context, tenantID string) ([]*entity.IngestionRecord, error) {
	const query = `
		SELECT id, tenant_id, source, chunks, created_at
		FROM ingested_documents
		WHERE tenant_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	defer rows.Close()

	var records []*entity.IngestionRecord
	for rows.Next() {
		var rec entity.IngestionRecord
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Source, &rec.Chunks, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingestion record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingestion records: %w", err)
	}

	return records, nil
}

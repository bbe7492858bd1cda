package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Tenant errors
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrInvalidTenantID     = errors.New("invalid tenant id")
	ErrInvalidTenantConfig = errors.New("invalid tenant config")
	ErrUnknownProvider     = errors.New("unknown provider")

	// Query errors
	ErrEmptyQuery = errors.New("query is empty")

	// Index errors
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrInvalidDimension  = errors.New("invalid embedding dimension")
	ErrIndexNotFound     = errors.New("persisted index not found")

	// Ingestion errors
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidChunking     = errors.New("chunk overlap must be smaller than chunk size")
)

// IngestError reports a single failed item of a batch ingestion. Batch
// operations collect these instead of aborting.
type IngestError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// StorageError reports an index save/load I/O failure. Fatal to the operation,
// surfaced to the caller.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("index %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CorruptIndexError reports inconsistent persisted index state discovered on
// load, such as a vector file and chunk side-table that disagree.
type CorruptIndexError struct {
	Path   string
	Reason string
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt index %s: %s", e.Path, e.Reason)
}

// GenerationError wraps a language-model provider failure. It is surfaced to
// the caller as an answer failure, never converted into an empty answer.
type GenerationError struct {
	Provider Provider
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation via %s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// TenantLoadError reports that a tenant's config or index could not be loaded.
// The tenant entry is not negatively cached, so a later call retries.
type TenantLoadError struct {
	TenantID string
	Err      error
}

func (e *TenantLoadError) Error() string {
	return fmt.Sprintf("load tenant %q: %v", e.TenantID, e.Err)
}

func (e *TenantLoadError) Unwrap() error { return e.Err }

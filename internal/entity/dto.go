package entity

import "time"

// ChatRequest is the body of POST /chat. The tenant comes from the
// X-Tenant-ID header; history is caller-supplied and not persisted.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatResponse mirrors Answer with the tenant echoed back.
type ChatResponse struct {
	TenantID    string       `json:"tenant_id"`
	Answer      string       `json:"answer"`
	UsedContext bool         `json:"used_context"`
	Sources     []SourceInfo `json:"sources"`
}

// SourceInfo is the wire form of a source chunk.
type SourceInfo struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestTextRequest is the body of POST /documents/text.
type IngestTextRequest struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchHit is one raw retrieval result of GET /documents/search.
type SearchHit struct {
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResponse is the body of GET /documents/search.
type SearchResponse struct {
	TenantID string      `json:"tenant_id"`
	Query    string      `json:"query"`
	Results  []SearchHit `json:"results"`
}

// GlobalStats aggregates all loaded tenants.
type GlobalStats struct {
	TotalTenants int           `json:"total_tenants"`
	Tenants      []TenantStats `json:"tenants"`
}

// IngestionRecord is one row of the per-tenant ingestion registry.
type IngestionRecord struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Source    string    `json:"source"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}

package entity

import (
	"fmt"
	"strings"
)

// Provider identifies a language-model backend. The provider is resolved once
// per pipeline construction, never per call.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderMock       Provider = "mock"
)

func (p Provider) Validate() error {
	switch p {
	case ProviderOpenAI, ProviderOpenRouter, ProviderMock:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, string(p))
	}
}

// Document is an immutable piece of input content. It is consumed at ingestion
// time and only its derived chunks survive.
type Document struct {
	Text     string
	Metadata map[string]string
}

// Chunk is the unit of retrieval: a bounded span of source text plus its
// embedding and inherited metadata.
type Chunk struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"-"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RetrievalResult pairs a chunk with its relevance score in [0,1] for a query.
type RetrievalResult struct {
	Chunk Chunk
	Score float64
	Query string
}

// ChatMessage is a single turn of caller-supplied conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Answer is the outcome of one pipeline query. UsedContext distinguishes a
// grounded answer from an ungrounded one; a failed query is an error, never an
// Answer.
type Answer struct {
	Text        string  `json:"answer"`
	UsedContext bool    `json:"used_context"`
	Sources     []Chunk `json:"sources"`
}

// CompletionRequest is the capability contract handed to a language-model
// provider.
type CompletionRequest struct {
	SystemPrompt string
	History      []ChatMessage
	Prompt       string
	Temperature  float64
	MaxTokens    int
}

// TenantConfig holds the per-tenant settings loaded from the configuration
// source. It is immutable for the lifetime of a cached pipeline; changing it
// requires invalidating the tenant.
type TenantConfig struct {
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
	// Temperature is a pointer so an explicit 0 (deterministic generation)
	// survives normalization; nil means "use the default".
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    int      `json:"max_tokens"`
	TopK         int      `json:"top_k"`
	RAGThreshold float64  `json:"rag_threshold"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}

// Normalize fills unset values with the service defaults.
func (c *TenantConfig) Normalize() {
	if c.Provider == "" {
		c.Provider = ProviderOpenRouter
	}
	if c.Temperature == nil {
		v := 0.7
		c.Temperature = &v
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.RAGThreshold == 0 {
		c.RAGThreshold = 0.5
	}
}

func (c *TenantConfig) Validate() error {
	if err := c.Provider.Validate(); err != nil {
		return err
	}
	if c.Provider != ProviderMock && strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required for provider %q", ErrInvalidTenantConfig, c.Provider)
	}
	if c.TopK < 1 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidTenantConfig, c.TopK)
	}
	if c.RAGThreshold < 0 || c.RAGThreshold > 1 {
		return fmt.Errorf("%w: rag_threshold must be in [0,1], got %g", ErrInvalidTenantConfig, c.RAGThreshold)
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("%w: temperature must be in [0,2], got %g", ErrInvalidTenantConfig, *c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidTenantConfig, c.MaxTokens)
	}
	return nil
}

// TenantStats describes one loaded tenant.
type TenantStats struct {
	TenantID    string   `json:"tenant_id"`
	VectorCount int      `json:"vector_count"`
	Provider    Provider `json:"provider"`
	Model       string   `json:"model"`
}

// IngestReport is the outcome of a batch ingestion: how many chunks were
// added and which items failed. Per-item failures do not abort the batch.
type IngestReport struct {
	ChunksAdded int           `json:"chunks_added"`
	Failures    []IngestError `json:"failures,omitempty"`
}

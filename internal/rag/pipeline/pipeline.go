// Package pipeline ties retrieval and generation together behind a single
// question-answering entry point.
package pipeline

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/entity"
)

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]entity.RetrievalResult, error)
}

// Generator produces an answer, grounded when context chunks are supplied.
type Generator interface {
	Generate(ctx context.Context, query string, results []entity.RetrievalResult, history []entity.ChatMessage) (string, error)
}

// Config carries the per-tenant retrieval settings.
type Config struct {
	// TopK is how many chunks to retrieve per query.
	TopK int
	// Threshold gates grounding: context is used only when the best
	// retrieved score reaches it.
	Threshold float64
}

// Pipeline answers questions over a tenant's indexed documents.
type Pipeline struct {
	retriever Retriever
	generator Generator
	topK      int
	threshold float64
}

func New(retriever Retriever, generator Generator, cfg Config) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		generator: generator,
		topK:      cfg.TopK,
		threshold: cfg.Threshold,
	}
}

// Answer retrieves context for the query, decides whether it is relevant
// enough to ground the answer, and generates the reply. The relevance gate
// compares the single best score against the threshold: either the retrieved
// context as a whole is trusted, or none of it is.
func (p *Pipeline) Answer(ctx context.Context, query string, history []entity.ChatMessage) (*entity.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, entity.ErrEmptyQuery
	}

	results, err := p.retriever.Retrieve(ctx, query, p.topK)
	if err != nil {
		return nil, err
	}

	grounded := len(results) > 0 && results[0].Score >= p.threshold
	if !grounded {
		if len(results) > 0 {
			ctxzap.Extract(ctx).Debug("retrieved context below relevance threshold",
				zap.Float64("top_score", results[0].Score),
				zap.Float64("threshold", p.threshold))
		}
		results = nil
	}

	text, err := p.generator.Generate(ctx, query, results, history)
	if err != nil {
		return nil, err
	}

	answer := &entity.Answer{Text: text, UsedContext: grounded}
	for _, res := range results {
		answer.Sources = append(answer.Sources, res.Chunk)
	}
	return answer, nil
}

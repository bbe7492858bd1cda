// Package generator composes prompts and delegates to a language-model
// provider.
package generator

import (
	"context"

	"github.com/docqa/docqa-backend/internal/entity"
)

// LLM is the language-model capability. Provider selection happens once at
// pipeline construction; retry policy lives inside the provider adapter, the
// generator only surfaces failures.
type LLM interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
	Name() entity.Provider
}

// Config carries the per-tenant generation settings.
type Config struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	// ContextBudget caps the combined rune length of chunk texts embedded in
	// a grounded prompt. Zero means DefaultContextBudget.
	ContextBudget int
}

// DefaultContextBudget is conservative for the 4k-context models the service
// targets by default.
const DefaultContextBudget = 8000

// Generator produces grounded or ungrounded answers.
type Generator struct {
	llm           LLM
	systemPrompt  string
	temperature   float64
	maxTokens     int
	contextBudget int
}

func New(llm LLM, cfg Config) *Generator {
	budget := cfg.ContextBudget
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Generator{
		llm:           llm,
		systemPrompt:  systemPrompt,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		contextBudget: budget,
	}
}

// Provider reports which backend this generator delegates to.
func (g *Generator) Provider() entity.Provider { return g.llm.Name() }

// Generate answers the query. With context chunks it composes a grounded
// prompt (instructing the model to answer only from the given context); with
// none it asks conversationally. Provider failures surface as
// GenerationError, never as an empty answer.
func (g *Generator) Generate(ctx context.Context, query string, results []entity.RetrievalResult, history []entity.ChatMessage) (string, error) {
	prompt := query
	if len(results) > 0 {
		prompt = groundedPrompt(query, fitToBudget(results, g.contextBudget))
	}

	answer, err := g.llm.Complete(ctx, entity.CompletionRequest{
		SystemPrompt: g.systemPrompt,
		History:      history,
		Prompt:       prompt,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		return "", &entity.GenerationError{Provider: g.llm.Name(), Err: err}
	}
	return answer, nil
}

// fitToBudget drops the lowest-score results until the combined chunk text
// fits. Results arrive ordered by decreasing score, so trimming happens from
// the tail. At least the best chunk is always kept.
func fitToBudget(results []entity.RetrievalResult, budget int) []entity.RetrievalResult {
	total := 0
	for i, res := range results {
		total += len([]rune(res.Chunk.Text))
		if total > budget && i > 0 {
			return results[:i]
		}
	}
	return results
}

package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	lastReq entity.CompletionRequest
	answer  string
	err     error
}

func (f *fakeLLM) Complete(_ context.Context, req entity.CompletionRequest) (string, error) {
	f.lastReq = req
	return f.answer, f.err
}

func (f *fakeLLM) Name() entity.Provider { return entity.ProviderMock }

func result(text string, score float64) entity.RetrievalResult {
	return entity.RetrievalResult{Chunk: entity.Chunk{Text: text}, Score: score}
}

func TestGenerateUngroundedPassesQueryAsPrompt(t *testing.T) {
	llm := &fakeLLM{answer: "hi"}
	g := New(llm, Config{Temperature: 0.7, MaxTokens: 100})

	answer, err := g.Generate(context.Background(), "hello", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", answer)
	assert.Equal(t, "hello", llm.lastReq.Prompt)
	assert.Equal(t, 0.7, llm.lastReq.Temperature)
	assert.Equal(t, 100, llm.lastReq.MaxTokens)
	assert.NotEmpty(t, llm.lastReq.SystemPrompt)
}

func TestGenerateGroundedEmbedsNumberedSources(t *testing.T) {
	llm := &fakeLLM{answer: "grounded"}
	g := New(llm, Config{})

	results := []entity.RetrievalResult{
		result("Paris is the capital of France", 0.9),
		result("Berlin is the capital of Germany", 0.7),
	}
	_, err := g.Generate(context.Background(), "What is the capital of France?", results, nil)
	require.NoError(t, err)

	prompt := llm.lastReq.Prompt
	assert.Contains(t, prompt, "[Source 1]\nParis is the capital of France")
	assert.Contains(t, prompt, "[Source 2]\nBerlin is the capital of Germany")
	assert.Contains(t, prompt, "Question: What is the capital of France?")
	assert.Contains(t, prompt, "only information from the context")
	assert.Less(t, strings.Index(prompt, "[Source 1]"), strings.Index(prompt, "[Source 2]"),
		"sources must keep retrieval order")
}

func TestGenerateForwardsHistoryAndSystemPrompt(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	g := New(llm, Config{SystemPrompt: "You are a librarian."})

	history := []entity.ChatMessage{
		{Role: entity.RoleUser, Content: "earlier question"},
		{Role: entity.RoleAssistant, Content: "earlier answer"},
	}
	_, err := g.Generate(context.Background(), "q", nil, history)
	require.NoError(t, err)
	assert.Equal(t, "You are a librarian.", llm.lastReq.SystemPrompt)
	assert.Equal(t, history, llm.lastReq.History)
}

func TestGenerateTruncatesLowestScoreChunksFirst(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	g := New(llm, Config{ContextBudget: 15})

	results := []entity.RetrievalResult{
		result("high score text", 0.9), // 15 runes, fills the budget
		result("low score text", 0.4),
	}
	_, err := g.Generate(context.Background(), "q", results, nil)
	require.NoError(t, err)
	assert.Contains(t, llm.lastReq.Prompt, "high score text")
	assert.NotContains(t, llm.lastReq.Prompt, "low score text")
}

func TestGenerateKeepsBestChunkEvenOverBudget(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	g := New(llm, Config{ContextBudget: 3})

	_, err := g.Generate(context.Background(), "q",
		[]entity.RetrievalResult{result("longer than any budget", 0.9)}, nil)
	require.NoError(t, err)
	assert.Contains(t, llm.lastReq.Prompt, "longer than any budget")
}

func TestGenerateWrapsProviderFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	g := New(llm, Config{})

	_, err := g.Generate(context.Background(), "q", nil, nil)
	var genErr *entity.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, entity.ProviderMock, genErr.Provider)
}

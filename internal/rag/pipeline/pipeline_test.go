package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	results []entity.RetrievalResult
	err     error
	lastK   int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, k int) ([]entity.RetrievalResult, error) {
	f.lastK = k
	return f.results, f.err
}

type fakeGenerator struct {
	lastResults []entity.RetrievalResult
	lastHistory []entity.ChatMessage
	answer      string
	err         error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, results []entity.RetrievalResult, history []entity.ChatMessage) (string, error) {
	f.lastResults = results
	f.lastHistory = history
	return f.answer, f.err
}

func hit(text string, score float64) entity.RetrievalResult {
	return entity.RetrievalResult{Chunk: entity.Chunk{ID: text, Text: text}, Score: score}
}

func TestAnswerEmptyQuery(t *testing.T) {
	p := New(&fakeRetriever{}, &fakeGenerator{}, Config{TopK: 3, Threshold: 0.5})

	_, err := p.Answer(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, entity.ErrEmptyQuery)
}

func TestAnswerEmptyIndexIsUngrounded(t *testing.T) {
	gen := &fakeGenerator{answer: "general knowledge answer"}
	p := New(&fakeRetriever{}, gen, Config{TopK: 3, Threshold: 0.5})

	answer, err := p.Answer(context.Background(), "what is go", nil)
	require.NoError(t, err)
	assert.False(t, answer.UsedContext)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "general knowledge answer", answer.Text)
	assert.Nil(t, gen.lastResults)
}

func TestAnswerTopScoreAboveThresholdGrounds(t *testing.T) {
	retr := &fakeRetriever{results: []entity.RetrievalResult{
		hit("relevant chunk", 0.9),
		hit("weaker chunk", 0.3),
	}}
	gen := &fakeGenerator{answer: "grounded answer"}
	p := New(retr, gen, Config{TopK: 3, Threshold: 0.5})

	answer, err := p.Answer(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.True(t, answer.UsedContext)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "relevant chunk", answer.Sources[0].Text)
	assert.Equal(t, retr.results, gen.lastResults)
	assert.Equal(t, 3, retr.lastK)
}

func TestAnswerTopScoreBelowThresholdDropsContext(t *testing.T) {
	retr := &fakeRetriever{results: []entity.RetrievalResult{hit("noise", 0.4)}}
	gen := &fakeGenerator{answer: "ungrounded answer"}
	p := New(retr, gen, Config{TopK: 3, Threshold: 0.5})

	answer, err := p.Answer(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.False(t, answer.UsedContext)
	assert.Empty(t, answer.Sources)
	assert.Nil(t, gen.lastResults, "below-threshold context must not reach the generator")
}

func TestAnswerThresholdIsInclusive(t *testing.T) {
	retr := &fakeRetriever{results: []entity.RetrievalResult{hit("exactly at threshold", 0.5)}}
	gen := &fakeGenerator{answer: "ok"}
	p := New(retr, gen, Config{TopK: 1, Threshold: 0.5})

	answer, err := p.Answer(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.True(t, answer.UsedContext)
}

func TestAnswerPropagatesRetrieverError(t *testing.T) {
	retrErr := errors.New("embedding backend down")
	p := New(&fakeRetriever{err: retrErr}, &fakeGenerator{}, Config{TopK: 3, Threshold: 0.5})

	_, err := p.Answer(context.Background(), "question", nil)
	assert.ErrorIs(t, err, retrErr)
}

func TestAnswerPropagatesGeneratorError(t *testing.T) {
	genErr := &entity.GenerationError{Provider: entity.ProviderMock, Err: errors.New("boom")}
	p := New(&fakeRetriever{}, &fakeGenerator{err: genErr}, Config{TopK: 3, Threshold: 0.5})

	_, err := p.Answer(context.Background(), "question", nil)
	var ge *entity.GenerationError
	assert.ErrorAs(t, err, &ge)
}

func TestAnswerForwardsHistory(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	p := New(&fakeRetriever{}, gen, Config{TopK: 3, Threshold: 0.5})

	history := []entity.ChatMessage{{Role: entity.RoleUser, Content: "before"}}
	_, err := p.Answer(context.Background(), "question", history)
	require.NoError(t, err)
	assert.Equal(t, history, gen.lastHistory)
}

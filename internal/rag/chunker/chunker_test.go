package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidParameters(t *testing.T) {
	_, err := New(0, 0)
	require.Error(t, err)

	_, err = New(100, 100)
	require.Error(t, err)

	_, err = New(100, 150)
	require.Error(t, err)

	_, err = New(100, -1)
	require.Error(t, err)
}

func TestSplitEmptyText(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	assert.Nil(t, c.Split(""))
}

func TestSplitShortTextYieldsSingleChunk(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	chunks := c.Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitReconstructsOriginalText(t *testing.T) {
	const size, overlap = 20, 5
	c, err := New(size, overlap)
	require.NoError(t, err)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 7)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	// Dropping the overlapping prefix of every chunk after the first must
	// reassemble the input exactly.
	var b strings.Builder
	b.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		if len(runes) > overlap {
			b.WriteString(string(runes[overlap:]))
		}
	}
	assert.Equal(t, text, b.String())
}

func TestSplitWindowBounds(t *testing.T) {
	c, err := New(10, 3)
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij", 5)
	for i, chunk := range c.Split(text) {
		assert.LessOrEqual(t, len([]rune(chunk)), 10, "chunk %d exceeds window", i)
	}
}

func TestSplitHandlesMultibyteRunes(t *testing.T) {
	c, err := New(4, 1)
	require.NoError(t, err)

	text := "日本語のテキストを分割する"
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 4)
	}

	var b strings.Builder
	b.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		if len(runes) > 1 {
			b.WriteString(string(runes[1:]))
		}
	}
	assert.Equal(t, text, b.String())
}

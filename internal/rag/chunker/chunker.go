// Package chunker splits document text into overlapping windows so that
// semantic units cut at a window boundary survive in the neighbouring chunk.
package chunker

import (
	"fmt"

	"github.com/docqa/docqa-backend/internal/entity"
)

// Chunker produces rune-based windows of at most Size runes, each window
// starting Size-Overlap runes after the previous one.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. Overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", entity.ErrInvalidChunking, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", entity.ErrInvalidChunking, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into overlapping windows. Empty text yields no chunks;
// text shorter than the chunk size yields exactly one.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

package generator

import (
	"fmt"
	"strings"

	"github.com/docqa/docqa-backend/internal/entity"
)

const defaultSystemPrompt = "You are a helpful assistant. Answer concisely and to the point."

// groundedPrompt numbers each context chunk as a source block and instructs
// the model to answer only from them. Falling back to an "insufficient
// information" answer when the context does not address the query is the
// prompt's responsibility, not a code-level check.
func groundedPrompt(query string, results []entity.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("Answer the user's question based on the following context.\n\nContext:\n")
	for i, res := range results {
		fmt.Fprintf(&b, "[Source %d]\n%s\n\n", i+1, res.Chunk.Text)
	}
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	b.WriteString("Instructions:\n")
	b.WriteString("- Use only information from the context above\n")
	b.WriteString("- If the context does not contain the answer, say that the provided documents do not cover it\n")
	b.WriteString("- Be concise and precise\n\n")
	b.WriteString("Answer:")
	return b.String()
}

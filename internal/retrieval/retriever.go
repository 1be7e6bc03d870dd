// Package retrieval implements semantic search over the indexed papers:
// embed the query, rank against the vector store, optionally fused with a
// BM25 index.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/paperchat/tools/vector"
)

// maxTopK bounds how many documents one retrieval may return.
const maxTopK = 20

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever embeds a query and searches the vector store.
type Retriever struct {
	embedder Embedder
	store    vector.Store
}

func New(embedder Embedder, store vector.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns the topK most similar documents. Empty queries and
// out-of-range topK are caller contract violations, not transient errors.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]vector.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if topK < 1 || topK > maxTopK {
		return nil, fmt.Errorf("top_k must be between 1 and %d, got %d", maxTopK, topK)
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
	}

	docs, err := r.store.Search(ctx, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}
	return docs, nil
}

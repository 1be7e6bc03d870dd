package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/paperchat/tools/vector"
	searchmodels "github.com/mohammad-safakhou/paperchat/tools/web_search/models"
)

// noRelevantDocuments is reported instead of an empty result so the model
// can decide to try web search.
const noRelevantDocuments = "No relevant documents found in the indexed papers."

// DocumentRetriever is the semantic-search capability behind pdf_retrieval.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]vector.Document, error)
}

// WebSearcher is the web-search capability behind web_search.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]searchmodels.Result, error)
}

// PDFRetrievalTool searches the indexed papers. Results below the minimum
// similarity score are dropped before the model sees them.
type PDFRetrievalTool struct {
	Retriever     DocumentRetriever
	TopK          int
	MinSimilarity float64
}

func (t *PDFRetrievalTool) Name() string { return "pdf_retrieval" }

func (t *PDFRetrievalTool) Description() string {
	return "Search the indexed PDF papers for passages relevant to a query. Use this before any other tool."
}

func (t *PDFRetrievalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query, phrased as a short question or keyword phrase.",
			},
		},
		"required": []string{"query"},
	}
}

func (t *PDFRetrievalTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("pdf_retrieval: query is required")
	}

	docs, err := t.Retriever.Retrieve(ctx, query, t.TopK)
	if err != nil {
		return "", fmt.Errorf("pdf_retrieval: %w", err)
	}

	var kept []vector.Document
	for _, d := range docs {
		if d.Score >= t.MinSimilarity {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return noRelevantDocuments, nil
	}

	var b strings.Builder
	for i, d := range kept {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Document %d] %s (page %d, score %.2f)\n%s", i+1, d.Source, d.Page, d.Score, d.Text)
	}
	return b.String(), nil
}

// WebSearchTool queries the configured web-search provider.
type WebSearchTool struct {
	Searcher   WebSearcher
	MaxResults int
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web for up-to-date information. Use this when the indexed papers do not cover the question."
}

func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The web search query.",
			},
		},
		"required": []string{"query"},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("web_search: query is required")
	}

	results, err := t.Searcher.Search(ctx, query, t.MaxResults)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	if len(results) == 0 {
		return "No web results found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Result %d] %s\nURL: %s\n%s", i+1, r.Title, r.URL, r.Snippet)
		if r.Content != "" {
			fmt.Fprintf(&b, "\n%s", r.Content)
		}
	}
	return b.String(), nil
}

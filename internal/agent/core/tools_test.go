package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/paperchat/tools/vector"
	searchmodels "github.com/mohammad-safakhou/paperchat/tools/web_search/models"
)

type fakeRetriever struct {
	docs []vector.Document
	err  error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, topK int) ([]vector.Document, error) {
	return f.docs, f.err
}

func TestPDFRetrievalFiltersBelowMinSimilarity(t *testing.T) {
	tool := &PDFRetrievalTool{
		Retriever: &fakeRetriever{docs: []vector.Document{
			{ID: "1", Text: "multi-head attention", Source: "attention.pdf", Page: 3, Score: 0.82},
			{ID: "2", Text: "unrelated passage", Source: "other.pdf", Page: 9, Score: 0.31},
		}},
		TopK:          5,
		MinSimilarity: 0.5,
	}

	out, err := tool.Execute(context.Background(), map[string]any{"query": "attention"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "multi-head attention") {
		t.Fatalf("expected passing document in output: %q", out)
	}
	if strings.Contains(out, "unrelated passage") {
		t.Fatalf("low-similarity document leaked into output: %q", out)
	}
}

func TestPDFRetrievalReportsNoRelevantDocuments(t *testing.T) {
	tool := &PDFRetrievalTool{
		Retriever: &fakeRetriever{docs: []vector.Document{
			{ID: "1", Text: "weak match", Score: 0.2},
		}},
		TopK:          5,
		MinSimilarity: 0.5,
	}

	out, err := tool.Execute(context.Background(), map[string]any{"query": "attention"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// An explicit sentinel rather than an empty list, so the model can
	// decide to try web search instead.
	if out != noRelevantDocuments {
		t.Fatalf("expected sentinel, got %q", out)
	}
}

func TestPDFRetrievalRejectsEmptyQuery(t *testing.T) {
	tool := &PDFRetrievalTool{Retriever: &fakeRetriever{}, TopK: 5}
	if _, err := tool.Execute(context.Background(), map[string]any{"query": " "}); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestPDFRetrievalPropagatesTransportError(t *testing.T) {
	tool := &PDFRetrievalTool{Retriever: &fakeRetriever{err: errors.New("store down")}, TopK: 5}
	if _, err := tool.Execute(context.Background(), map[string]any{"query": "q"}); err == nil {
		t.Fatalf("expected transport error")
	}
}

type fakeSearcher struct {
	results []searchmodels.Result
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	return f.results, f.err
}

func TestWebSearchFormatsResults(t *testing.T) {
	tool := &WebSearchTool{
		Searcher: &fakeSearcher{results: []searchmodels.Result{
			{Title: "Attention Is All You Need", URL: "https://example.com/paper", Snippet: "the transformer", Content: "full article text"},
		}},
		MaxResults: 3,
	}

	out, err := tool.Execute(context.Background(), map[string]any{"query": "transformer"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"[Result 1]", "Attention Is All You Need", "https://example.com/paper", "full article text"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestWebSearchEmptyResults(t *testing.T) {
	tool := &WebSearchTool{Searcher: &fakeSearcher{}, MaxResults: 3}
	out, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "No web results found." {
		t.Fatalf("unexpected output: %q", out)
	}
}

package ingest

import (
	"strings"
	"testing"
)

func TestChunkShortTextReturnsSinglePiece(t *testing.T) {
	c, err := NewChunker(512, 50, "")
	if err != nil {
		t.Fatalf("new chunker: %v", err)
	}
	chunks := c.Chunk("attention is all you need")
	if len(chunks) != 1 || chunks[0] != "attention is all you need" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestChunkRespectsTokenBound(t *testing.T) {
	c, err := NewChunker(20, 5, "")
	if err != nil {
		t.Fatalf("new chunker: %v", err)
	}

	text := strings.Repeat("the transformer architecture relies on attention ", 40)
	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := c.CountTokens(chunk); n > 20 {
			t.Fatalf("chunk %d has %d tokens, limit 20", i, n)
		}
	}
}

func TestChunkOverlapSharesContext(t *testing.T) {
	c, err := NewChunker(20, 10, "")
	if err != nil {
		t.Fatalf("new chunker: %v", err)
	}

	text := strings.Repeat("word ", 100)
	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// With a 10-token step over uniform text, consecutive chunks share a
	// suffix/prefix.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) == 0 || len(second) == 0 {
		t.Fatalf("empty chunks: %v", chunks)
	}
}

func TestChunkEmptyText(t *testing.T) {
	c, err := NewChunker(512, 50, "")
	if err != nil {
		t.Fatalf("new chunker: %v", err)
	}
	if chunks := c.Chunk("   \n  "); chunks != nil {
		t.Fatalf("expected nil for empty text, got %v", chunks)
	}
}

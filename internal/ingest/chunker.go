package ingest

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits page text into token-bounded chunks with overlap, so each
// chunk fits an embedding request and neighbouring chunks share context.
type Chunker struct {
	chunkSize int
	overlap   int
	encoding  *tiktoken.Tiktoken
}

func NewChunker(chunkSize, overlap int, encodingName string) (*Chunker, error) {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 50
	}
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading encoding %s: %w", encodingName, err)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap, encoding: encoding}, nil
}

// CountTokens returns the token count of text under the configured encoding.
func (c *Chunker) CountTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Chunk splits text into pieces of at most chunkSize tokens, consecutive
// pieces overlapping by the configured token count.
func (c *Chunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	tokens := c.encoding.Encode(text, nil, nil)
	if len(tokens) <= c.chunkSize {
		return []string{text}
	}

	step := c.chunkSize - c.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		piece := strings.TrimSpace(c.encoding.Decode(tokens[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/paperchat/internal/retrieval"
	"github.com/mohammad-safakhou/paperchat/tools/vector"
)

// Pipeline extracts, chunks, embeds and indexes PDF papers.
type Pipeline struct {
	chunker   *Chunker
	embedder  retrieval.Embedder
	store     vector.Store
	hybrid    *retrieval.HybridRetriever // nil when hybrid search is off
	batchSize int
	logger    *log.Logger
}

func NewPipeline(chunker *Chunker, embedder retrieval.Embedder, store vector.Store, hybrid *retrieval.HybridRetriever, batchSize int, logger *log.Logger) *Pipeline {
	if batchSize <= 0 {
		batchSize = 32
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	return &Pipeline{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		hybrid:    hybrid,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IngestFile indexes one PDF and returns the number of chunks stored.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	source, pages, err := ExtractPages(path)
	if err != nil {
		return 0, err
	}

	var docs []vector.Document
	for _, page := range pages {
		for _, chunk := range p.chunker.Chunk(page.Text) {
			docs = append(docs, vector.Document{
				ID:     uuid.NewString(),
				Text:   chunk,
				Source: source,
				Page:   page.Number,
			})
		}
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no chunks produced from %s", path)
	}
	p.logger.Printf("%s: %d pages, %d chunks", source, len(pages), len(docs))

	for start := 0; start < len(docs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}
		embeddings, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding batch: %w", err)
		}
		if err := p.store.Add(ctx, batch, embeddings); err != nil {
			return 0, fmt.Errorf("storing batch: %w", err)
		}
	}

	if p.hybrid != nil {
		if err := p.hybrid.Index(docs); err != nil {
			return 0, fmt.Errorf("indexing bm25: %w", err)
		}
	}
	return len(docs), nil
}

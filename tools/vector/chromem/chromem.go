// Package chromem implements the vector store on chromem-go, an embedded
// store useful for local runs and tests without a qdrant instance.
package chromem

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/mohammad-safakhou/paperchat/tools/vector/models"
)

type Config struct {
	Collection string
	Path       string // persistence directory, empty for in-memory
}

type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
}

func New(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = "papers"
	}

	var db *chromemgo.DB
	var err error
	if cfg.Path != "" {
		db, err = chromemgo.NewPersistentDB(filepath.Join(cfg.Path, "chromem.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("opening persistent store: %w", err)
		}
	} else {
		db = chromemgo.NewDB()
	}

	// Embeddings are always precomputed by the caller, so the embedding
	// func must never be reached.
	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("no embedder configured, embeddings must be precomputed")
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return &Store{db: db, collection: collection}, nil
}

func (s *Store) Add(ctx context.Context, docs []models.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("got %d documents but %d embeddings", len(docs), len(embeddings))
	}
	for i, d := range docs {
		meta := map[string]string{
			"source": d.Source,
			"page":   strconv.Itoa(d.Page),
		}
		for k, v := range d.Metadata {
			meta[k] = fmt.Sprint(v)
		}
		err := s.collection.AddDocument(ctx, chromemgo.Document{
			ID:        d.ID,
			Content:   d.Text,
			Embedding: embeddings[i],
			Metadata:  meta,
		})
		if err != nil {
			return fmt.Errorf("adding document %s: %w", d.ID, err)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.Document, error) {
	if topK > s.collection.Count() {
		topK = s.collection.Count()
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	docs := make([]models.Document, 0, len(results))
	for _, r := range results {
		doc := models.Document{
			ID:     r.ID,
			Text:   r.Content,
			Source: r.Metadata["source"],
			Score:  float64(r.Similarity),
		}
		if page, err := strconv.Atoi(r.Metadata["page"]); err == nil {
			doc.Page = page
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Package vector selects the vector store backing document retrieval.
package vector

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/paperchat/tools/vector/chromem"
	"github.com/mohammad-safakhou/paperchat/tools/vector/models"
	"github.com/mohammad-safakhou/paperchat/tools/vector/qdrant"
)

// Document aliases the shared document model.
type Document = models.Document

// Store indexes embedded documents and serves nearest-neighbour queries.
type Store interface {
	Add(ctx context.Context, docs []models.Document, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, topK int) ([]models.Document, error)
	Count(ctx context.Context) (int, error)
}

type Provider string

const (
	QdrantProvider  Provider = "qdrant"
	ChromemProvider Provider = "chromem"
)

var ErrUnsupportedProvider = errors.New("unsupported vector provider")

// Config carries settings for whichever backend is selected.
type Config struct {
	Host       string
	Port       int
	Collection string
	VectorSize int
	Distance   string
	Path       string // chromem persistence path, empty for in-memory
}

func NewStore(ctx context.Context, provider Provider, cfg Config) (Store, error) {
	switch provider {
	case QdrantProvider:
		return qdrant.New(ctx, qdrant.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Collection: cfg.Collection,
			VectorSize: cfg.VectorSize,
			Distance:   cfg.Distance,
		})
	case ChromemProvider:
		return chromem.New(chromem.Config{
			Collection: cfg.Collection,
			Path:       cfg.Path,
		})
	default:
		return nil, ErrUnsupportedProvider
	}
}

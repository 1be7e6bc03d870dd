package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/mohammad-safakhou/paperchat/tools/vector"
)

const rrfK = 60 // reciprocal-rank-fusion constant

// HybridRetriever fuses vector search with an in-memory BM25 index using
// reciprocal-rank fusion. The BM25 side is populated at ingest time via
// Index and lives only for the process lifetime.
type HybridRetriever struct {
	dense *Retriever

	mu    sync.RWMutex
	bleve bleve.Index
	docs  map[string]vector.Document
}

func NewHybrid(dense *Retriever) (*HybridRetriever, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bm25 index: %w", err)
	}
	return &HybridRetriever{
		dense: dense,
		bleve: index,
		docs:  map[string]vector.Document{},
	}, nil
}

// Index adds documents to the BM25 side. The dense side is indexed
// separately through the vector store.
func (h *HybridRetriever) Index(docs []vector.Document) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, d := range docs {
		if err := h.bleve.Index(d.ID, map[string]string{"text": d.Text, "source": d.Source}); err != nil {
			return fmt.Errorf("indexing document %s: %w", d.ID, err)
		}
		h.docs[d.ID] = d
	}
	return nil
}

func (h *HybridRetriever) Retrieve(ctx context.Context, query string, topK int) ([]vector.Document, error) {
	dense, err := h.dense.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	sparse, err := h.bm25Search(query, topK)
	if err != nil {
		// BM25 is an enrichment; fall back to the dense ranking alone.
		return dense, nil
	}
	return fuseRRF(dense, sparse, topK), nil
}

func (h *HybridRetriever) bm25Search(q string, k int) ([]vector.Document, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, k*3, 0, false)

	h.mu.RLock()
	res, err := h.bleve.Search(req)
	h.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	var out []vector.Document
	for _, hit := range res.Hits {
		h.mu.RLock()
		doc, ok := h.docs[hit.ID]
		h.mu.RUnlock()
		if !ok {
			continue
		}
		doc.Score = hit.Score
		out = append(out, doc)
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// fuseRRF merges two rankings with reciprocal-rank fusion. The fused score
// replaces the originals so downstream similarity filtering still sees a
// descending ranking.
func fuseRRF(a, b []vector.Document, k int) []vector.Document {
	type agg struct {
		doc   vector.Document
		score float64
	}
	m := map[string]*agg{}
	add := func(list []vector.Document) {
		for rank, d := range list {
			x, ok := m[d.ID]
			if !ok {
				x = &agg{doc: d}
				m[d.ID] = x
			}
			x.score += 1.0 / float64(rrfK+rank+1)
			// Keep the higher original similarity for filtering.
			if d.Score > x.doc.Score {
				x.doc.Score = d.Score
			}
		}
	}
	add(a)
	add(b)

	items := make([]*agg, 0, len(m))
	for _, v := range m {
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].score > items[j].score })

	if k > len(items) {
		k = len(items)
	}
	out := make([]vector.Document, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, items[i].doc)
	}
	return out
}

// Package qdrant implements the vector store against the qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/paperchat/tools/vector/models"
)

type Config struct {
	Host       string
	Port       int
	Collection string
	VectorSize int
	Distance   string
}

type Store struct {
	baseURL    string
	collection string
	client     *http.Client
}

// New connects to qdrant and creates the collection if it does not exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Distance == "" {
		cfg.Distance = "Cosine"
	}
	s := &Store{
		baseURL:    fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		collection: cfg.Collection,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	if err := s.ensureCollection(ctx, cfg.VectorSize, cfg.Distance); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureCollection(ctx context.Context, size int, distance string) error {
	status, _, err := s.do(ctx, http.MethodGet, "/collections/"+s.collection, nil)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{"size": size, "distance": distance},
	}
	status, data, err := s.do(ctx, http.MethodPut, "/collections/"+s.collection, body)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("creating collection: status %d: %s", status, data)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, docs []models.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("got %d documents but %d embeddings", len(docs), len(embeddings))
	}
	points := make([]map[string]any, len(docs))
	for i, d := range docs {
		points[i] = map[string]any{
			"id":     d.ID,
			"vector": embeddings[i],
			"payload": map[string]any{
				"text":     d.Text,
				"source":   d.Source,
				"page":     d.Page,
				"metadata": d.Metadata,
			},
		}
	}
	status, data, err := s.do(ctx, http.MethodPut, "/collections/"+s.collection+"/points?wait=true", map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("upserting points: status %d: %s", status, data)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]models.Document, error) {
	body := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	status, data, err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/search", body)
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("searching points: status %d: %s", status, data)
	}

	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	docs := make([]models.Document, 0, len(resp.Result))
	for _, r := range resp.Result {
		doc := models.Document{
			ID:    fmt.Sprint(r.ID),
			Score: r.Score,
		}
		if v, ok := r.Payload["text"].(string); ok {
			doc.Text = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			doc.Source = v
		}
		if v, ok := r.Payload["page"].(float64); ok {
			doc.Page = int(v)
		}
		if v, ok := r.Payload["metadata"].(map[string]any); ok {
			doc.Metadata = v
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

func (s *Store) Count(ctx context.Context) (int, error) {
	status, data, err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/count", map[string]any{"exact": true})
	if err != nil {
		return 0, fmt.Errorf("counting points: %w", err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("counting points: status %d: %s", status, data)
	}
	var resp countResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("parsing count response: %w", err)
	}
	return resp.Result.Count, nil
}

func (s *Store) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

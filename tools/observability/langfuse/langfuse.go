// Package langfuse is a minimal client for the Langfuse ingestion and prompt
// management APIs.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/paperchat/tools/observability/models"
)

type Config struct {
	Host      string
	PublicKey string
	SecretKey string
	Timeout   time.Duration
}

// Tracer buffers generation events and flushes them in batches to the
// Langfuse ingestion endpoint.
type Tracer struct {
	cfg    Config
	client *http.Client

	mu      sync.Mutex
	pending []ingestionEvent
}

func New(cfg Config) *Tracer {
	if cfg.Host == "" {
		cfg.Host = "https://cloud.langfuse.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	return &Tracer{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type ingestionEvent struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Body      generationBody `json:"body"`
}

type generationBody struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"traceId,omitempty"`
	Name      string         `json:"name"`
	Model     string         `json:"model,omitempty"`
	Input     any            `json:"input,omitempty"`
	Output    any            `json:"output,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	StartTime string         `json:"startTime,omitempty"`
	EndTime   string         `json:"endTime,omitempty"`
}

// TraceGeneration queues a generation event. Delivery failures surface on
// Flush and are only logged.
func (t *Tracer) TraceGeneration(ctx context.Context, gen models.Generation) {
	ev := ingestionEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Type:      "generation-create",
		Body: generationBody{
			ID:        uuid.NewString(),
			Name:      gen.Name,
			Model:     gen.Model,
			Input:     gen.Input,
			Output:    gen.Output,
			SessionID: gen.SessionID,
			Metadata:  gen.Metadata,
		},
	}
	if !gen.StartTime.IsZero() {
		ev.Body.StartTime = gen.StartTime.UTC().Format(time.RFC3339Nano)
	}
	if !gen.EndTime.IsZero() {
		ev.Body.EndTime = gen.EndTime.UTC().Format(time.RFC3339Nano)
	}

	t.mu.Lock()
	t.pending = append(t.pending, ev)
	flush := len(t.pending) >= 20
	t.mu.Unlock()

	if flush {
		if err := t.Flush(ctx); err != nil {
			log.Printf("[TRACE] flush failed: %v", err)
		}
	}
}

// Flush sends all queued events to the ingestion endpoint.
func (t *Tracer) Flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]any{"batch": batch})
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Host+"/api/public/ingestion", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(t.cfg.PublicKey, t.cfg.SecretKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("langfuse ingestion error %d: %s", resp.StatusCode, string(data))
	}
	return nil
}

type promptResponse struct {
	Name    string   `json:"name"`
	Version int      `json:"version"`
	Prompt  string   `json:"prompt"`
	Labels  []string `json:"labels"`
}

// GetPrompt fetches a managed prompt by name, optionally pinned to a version
// or label.
func (t *Tracer) GetPrompt(ctx context.Context, name string, version int, label string) (models.Prompt, error) {
	q := url.Values{}
	if version > 0 {
		q.Set("version", strconv.Itoa(version))
	} else if label != "" {
		q.Set("label", label)
	}
	u := t.cfg.Host + "/api/public/v2/prompts/" + url.PathEscape(name)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Prompt{}, err
	}
	req.SetBasicAuth(t.cfg.PublicKey, t.cfg.SecretKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return models.Prompt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Prompt{}, models.ErrPromptNotFound
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return models.Prompt{}, fmt.Errorf("langfuse prompt error %d: %s", resp.StatusCode, string(data))
	}

	var pr promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return models.Prompt{}, fmt.Errorf("parsing prompt response: %w", err)
	}
	return models.Prompt{Name: pr.Name, Version: pr.Version, Label: label, Text: pr.Prompt}, nil
}

// Package openai implements the provider interface against the OpenAI (or
// any OpenAI-compatible) HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/paperchat/provider/models"
)

// Config carries the client settings resolved from application config.
type Config struct {
	APIKey          string
	BaseURL         string
	CompletionModel string
	EmbeddingModel  string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
}

// Client talks to the chat completions and embeddings endpoints.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates an OpenAI-compatible client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:    Config{APIKey: cfg.APIKey, BaseURL: strings.TrimRight(cfg.BaseURL, "/"), CompletionModel: cfg.CompletionModel, EmbeddingModel: cfg.EmbeddingModel, Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens, Timeout: cfg.Timeout},
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// CompletionModel reports the configured completion model id.
func (c *Client) CompletionModel() string { return c.cfg.CompletionModel }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatToolCallFunc `json:"function"`
}

type chatToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Generate produces text from a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	dec, err := c.complete(ctx, []chatMessage{{Role: models.RoleUser, Content: prompt}}, nil)
	if err != nil {
		return "", err
	}
	return dec.Content, nil
}

// GenerateWithTools runs one tool-calling completion over a transcript.
func (c *Client) GenerateWithTools(ctx context.Context, msgs []models.Message, tools []models.ToolSchema) (models.Decision, error) {
	wire := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := chatMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID, Name: m.Name}
		for _, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Args)
			if err != nil {
				return models.Decision{}, fmt.Errorf("encoding tool args: %w", err)
			}
			cm.ToolCalls = append(cm.ToolCalls, chatToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: chatToolCallFunc{Name: tc.Name, Arguments: string(args)},
			})
		}
		wire = append(wire, cm)
	}

	wireTools := make([]chatTool, 0, len(tools))
	for _, t := range tools {
		wireTools = append(wireTools, chatTool{
			Type:     "function",
			Function: chatFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	return c.complete(ctx, wire, wireTools)
}

func (c *Client) complete(ctx context.Context, msgs []chatMessage, tools []chatTool) (models.Decision, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.CompletionModel,
		Messages:    msgs,
		Tools:       tools,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return models.Decision{}, fmt.Errorf("encoding request: %w", err)
	}

	data, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return models.Decision{}, err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.Decision{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Decision{}, fmt.Errorf("no choices in completion response")
	}

	msg := resp.Choices[0].Message
	dec := models.Decision{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return models.Decision{}, fmt.Errorf("parsing tool arguments for %s: %w", tc.Function.Name, err)
			}
		}
		dec.ToolCalls = append(dec.ToolCalls, models.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args})
	}
	return dec, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed produces one embedding vector per input text.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embeddingRequest{Model: c.cfg.EmbeddingModel, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	data, err := c.post(ctx, "/embeddings", body)
	if err != nil {
		return nil, err
	}
	var resp embeddingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

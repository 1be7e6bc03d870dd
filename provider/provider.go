package provider

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/provider/models"
	openai_provider "github.com/mohammad-safakhou/paperchat/provider/openai"
)

// Client represents different LLM providers.
type Client string

const (
	OpenAI Client = "openai"
)

// Provider is the interface all LLM implementations must satisfy.
type Provider interface {
	// Generate produces text from a single prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateWithTools runs one tool-calling completion over a message
	// transcript and returns the model's decision: final content, or one or
	// more tool invocation requests.
	GenerateWithTools(ctx context.Context, messages []models.Message, tools []models.ToolSchema) (models.Decision, error)
	// Embed produces one embedding vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// CompletionModel reports the configured completion model id, used for
	// trace attribution.
	CompletionModel() string
}

// NewProvider creates an LLM provider from configuration. Providers are
// resolved through this static factory once at startup; the core only ever
// sees the Provider interface.
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return openai_provider.New(openai_provider.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			CompletionModel: cfg.CompletionModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			Temperature:     cfg.Temperature,
			MaxTokens:       cfg.MaxTokens,
			Timeout:         cfg.Timeout,
		}), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}

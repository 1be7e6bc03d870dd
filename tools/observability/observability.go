package observability

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad-safakhou/paperchat/tools/observability/langfuse"
	"github.com/mohammad-safakhou/paperchat/tools/observability/models"
	"github.com/mohammad-safakhou/paperchat/tools/observability/noop"
)

// Tracer records LLM generations and serves managed prompts. TraceGeneration
// is fire-and-forget: failures are logged by the implementation, never
// returned to the caller.
type Tracer interface {
	TraceGeneration(ctx context.Context, gen models.Generation)
	GetPrompt(ctx context.Context, name string, version int, label string) (models.Prompt, error)
	Flush(ctx context.Context) error
}

type Provider string

const (
	LangfuseProvider Provider = "langfuse"
	NoopProvider     Provider = "noop"
)

var ErrUnsupportedProvider = errors.New("unsupported observability provider")

// LangfuseConfig carries credentials for the langfuse backend.
type LangfuseConfig struct {
	Host      string
	PublicKey string
	SecretKey string
	Timeout   time.Duration
}

func NewTracer(provider Provider, cfg LangfuseConfig) (Tracer, error) {
	switch provider {
	case LangfuseProvider:
		return langfuse.New(langfuse.Config{
			Host:      cfg.Host,
			PublicKey: cfg.PublicKey,
			SecretKey: cfg.SecretKey,
			Timeout:   cfg.Timeout,
		}), nil
	case NoopProvider, "":
		return noop.Tracer{}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

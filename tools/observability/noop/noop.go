package noop

import (
	"context"

	"github.com/mohammad-safakhou/paperchat/tools/observability/models"
)

// Tracer discards generations and serves no prompts.
type Tracer struct{}

func (Tracer) TraceGeneration(ctx context.Context, gen models.Generation) {}

func (Tracer) GetPrompt(ctx context.Context, name string, version int, label string) (models.Prompt, error) {
	return models.Prompt{}, models.ErrPromptNotFound
}

func (Tracer) Flush(ctx context.Context) error { return nil }

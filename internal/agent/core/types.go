// Package core implements the four conversation agents: orchestrator,
// clarification, research and synthesis. Each agent takes the shared state,
// mutates it, and hands control back to the workflow engine.
package core

import (
	"context"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/provider/models"
)

// Agent is one node of the conversation graph.
type Agent interface {
	Name() string
	Execute(ctx context.Context, st *state.AgentState) error
}

// LLMProvider is the completion capability the agents depend on.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithTools(ctx context.Context, msgs []models.Message, tools []models.ToolSchema) (models.Decision, error)
	CompletionModel() string
}

// Tool is an external capability the research agent can invoke.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

package core

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/tools/observability"
	obsmodels "github.com/mohammad-safakhou/paperchat/tools/observability/models"
)

// fallbackClarification is emitted when the completion call fails. A turn
// must always end with user-facing text.
const fallbackClarification = "Could you please provide more details about your question?"

// Clarification produces a clarifying question for a vague query and ends
// the turn.
type Clarification struct {
	cfg      config.AgentsConfig
	provider LLMProvider
	tracer   observability.Tracer
	logger   *log.Logger
}

func NewClarification(cfg config.AgentsConfig, provider LLMProvider, tracer observability.Tracer, logger *log.Logger) *Clarification {
	if logger == nil {
		logger = log.New(log.Writer(), "[CLARIFY] ", log.LstdFlags)
	}
	return &Clarification{cfg: cfg, provider: provider, tracer: tracer, logger: logger}
}

func (c *Clarification) Name() string { return state.AgentClarification }

func (c *Clarification) Execute(ctx context.Context, st *state.AgentState) error {
	query := latestUserQuery(st.Messages)
	prompt := resolvePrompt(ctx, c.tracer, c.logger, c.cfg.Clarification, map[string]string{
		"history": formatHistory(st.Window(c.cfg.MaxHistory)),
		"query":   query,
	})

	start := time.Now()
	question, err := c.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(question) == "" {
		if err != nil {
			c.logger.Printf("clarification generation failed, using fallback: %v", err)
		}
		question = fallbackClarification
	} else if c.tracer != nil {
		c.tracer.TraceGeneration(ctx, obsmodels.Generation{
			Name:      "clarification",
			Input:     map[string]any{"query": query},
			Output:    question,
			Model:     c.provider.CompletionModel(),
			SessionID: st.SessionID,
			StartTime: start,
			EndTime:   time.Now(),
		})
	}

	st.AppendAssistant(question)
	st.FinalAnswer = question
	st.NextAgent = state.AgentEnd
	st.LastAgent = state.AgentClarification
	st.Iteration++
	return nil
}

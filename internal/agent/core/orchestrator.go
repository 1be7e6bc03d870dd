package core

import (
	"context"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/tools/observability"
	obsmodels "github.com/mohammad-safakhou/paperchat/tools/observability/models"
)

var orchestratorTracer trace.Tracer = otel.Tracer("paperchat/internal/agent/orchestrator")

// Orchestrator classifies the latest user message as needing clarification
// or ready for research. Three ordered guards make sure a conversation can
// never loop on clarification forever:
//
//  1. a hard cap on consecutive clarification cycles,
//  2. a lookback that detects the user just answered a clarifying question,
//  3. the model decision, which fails safe to research.
type Orchestrator struct {
	cfg      config.AgentsConfig
	provider LLMProvider
	tracer   observability.Tracer
	logger   *log.Logger
}

func NewOrchestrator(cfg config.AgentsConfig, provider LLMProvider, tracer observability.Tracer, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{cfg: cfg, provider: provider, tracer: tracer, logger: logger}
}

func (o *Orchestrator) Name() string { return state.AgentOrchestrator }

func (o *Orchestrator) Execute(ctx context.Context, st *state.AgentState) error {
	ctx, span := orchestratorTracer.Start(ctx, "orchestrator.execute",
		trace.WithAttributes(attribute.String("session.id", st.SessionID)))
	defer span.End()

	st.Iteration++

	// Layer 1: absolute cap, independent of content.
	if st.ClarificationCount >= o.cfg.MaxClarifications {
		o.logger.Printf("clarification cap reached (%d), forcing research", st.ClarificationCount)
		st.NextAgent = state.AgentResearch
		st.ClarificationCount = 0
		st.ClarificationNeeded = false
		span.SetAttributes(attribute.String("route.reason", "clarification_cap"))
		return nil
	}

	// Layer 2: the user just answered a clarifying question. Re-asking is
	// never correct, so skip the model entirely.
	if st.LastAgent == state.AgentClarification && endsWithAssistantThenUser(st.Messages) {
		o.logger.Printf("follow-up after clarification, forcing research")
		st.NextAgent = state.AgentResearch
		st.ClarificationCount = 0
		span.SetAttributes(attribute.String("route.reason", "followup_pattern"))
		return nil
	}

	// Layer 3: ask the model.
	query := latestUserQuery(st.Messages)
	prompt := resolvePrompt(ctx, o.tracer, o.logger, o.cfg.Orchestrator, map[string]string{
		"history": formatHistory(st.Window(o.cfg.MaxHistory)),
		"query":   query,
	})

	start := time.Now()
	decision, err := o.provider.Generate(ctx, prompt)
	if err != nil {
		// Fail safe: never stall a turn on a classification error.
		o.logger.Printf("intent classification failed, defaulting to research: %v", err)
		st.NextAgent = state.AgentResearch
		st.ClarificationCount = 0
		span.SetAttributes(attribute.String("route.reason", "classification_error"))
		return nil
	}

	if o.tracer != nil {
		o.tracer.TraceGeneration(ctx, obsmodels.Generation{
			Name:      "orchestrator_intent",
			Input:     map[string]any{"query": query},
			Output:    decision,
			Model:     o.provider.CompletionModel(),
			SessionID: st.SessionID,
			StartTime: start,
			EndTime:   time.Now(),
		})
	}

	if strings.Contains(strings.ToUpper(decision), "CLARIFICATION") {
		st.NextAgent = state.AgentClarification
		st.ClarificationNeeded = true
		st.ClarificationCount++
		st.MissingContext = append(st.MissingContext, strings.TrimSpace(decision))
		span.SetAttributes(attribute.String("route.reason", "model_clarification"))
	} else {
		st.NextAgent = state.AgentResearch
		st.ClarificationNeeded = false
		st.ClarificationCount = 0
		span.SetAttributes(attribute.String("route.reason", "model_research"))
	}
	return nil
}

// endsWithAssistantThenUser reports whether the two most recent messages are
// an assistant message followed by a user message.
func endsWithAssistantThenUser(msgs []state.Message) bool {
	if len(msgs) < 2 {
		return false
	}
	return msgs[len(msgs)-2].Role == state.RoleAssistant && msgs[len(msgs)-1].Role == state.RoleUser
}

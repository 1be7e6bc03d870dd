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

// fallbackSynthesis is the answer of last resort when both the completion
// call and the research output are unusable.
const fallbackSynthesis = "I was unable to produce an answer to your question. Please try again."

// Synthesis combines the research observations and findings into the final
// user-facing answer and scores its confidence.
type Synthesis struct {
	cfg      config.AgentsConfig
	provider LLMProvider
	tracer   observability.Tracer
	logger   *log.Logger
}

func NewSynthesis(cfg config.AgentsConfig, provider LLMProvider, tracer observability.Tracer, logger *log.Logger) *Synthesis {
	if logger == nil {
		logger = log.New(log.Writer(), "[SYNTH] ", log.LstdFlags)
	}
	return &Synthesis{cfg: cfg, provider: provider, tracer: tracer, logger: logger}
}

func (s *Synthesis) Name() string { return state.AgentSynthesis }

func (s *Synthesis) Execute(ctx context.Context, st *state.AgentState) error {
	query := latestUserQuery(st.Messages)
	prompt := resolvePrompt(ctx, s.tracer, s.logger, s.cfg.Synthesis, map[string]string{
		"query":        query,
		"observations": strings.Join(st.Context.Observations, "\n\n"),
		"findings":     st.Context.FinalOutput,
	})

	start := time.Now()
	answer, err := s.provider.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			s.logger.Printf("synthesis generation failed, falling back to research output: %v", err)
		}
		answer = st.Context.FinalOutput
		if strings.TrimSpace(answer) == "" {
			answer = fallbackSynthesis
		}
		st.AppendAssistant(answer)
		st.FinalAnswer = answer
		st.SetConfidence(0.0)
		st.NextAgent = state.AgentEnd
		st.LastAgent = state.AgentSynthesis
		st.Iteration++
		return nil
	}

	if s.tracer != nil {
		s.tracer.TraceGeneration(ctx, obsmodels.Generation{
			Name:      "synthesis",
			Input:     map[string]any{"query": query, "observations": len(st.Context.Observations)},
			Output:    answer,
			Model:     s.provider.CompletionModel(),
			SessionID: st.SessionID,
			StartTime: start,
			EndTime:   time.Now(),
		})
	}

	st.AppendAssistant(answer)
	st.FinalAnswer = answer
	st.SetConfidence(confidenceFor(len(st.Context.Observations)))
	st.NextAgent = state.AgentEnd
	st.LastAgent = state.AgentSynthesis
	st.Iteration++
	return nil
}

// confidenceFor maps evidence volume to a confidence score. A coarse step
// function, not a calibrated probability.
func confidenceFor(observations int) float64 {
	switch {
	case observations <= 0:
		return 0.0
	case observations == 1:
		return 0.6
	case observations == 2:
		return 0.8
	default:
		return 0.95
	}
}

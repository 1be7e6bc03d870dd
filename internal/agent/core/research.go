package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/paperchat/provider/models"
	"github.com/mohammad-safakhou/paperchat/tools/observability"
	obsmodels "github.com/mohammad-safakhou/paperchat/tools/observability/models"
)

var researchTracer trace.Tracer = otel.Tracer("paperchat/internal/agent/research")

// fallbackResearch stands in for findings when the tool loop fails outright.
const fallbackResearch = "Research could not be completed due to an internal error."

// Research runs a sequential tool loop: the model decides which tool to call
// next, sees its output, and repeats until it produces a final answer or the
// iteration bound is hit. One tool call at a time; tool selection depends on
// seeing each tool's output before the next decision.
type Research struct {
	cfg      config.AgentsConfig
	provider LLMProvider
	tools    []Tool
	tracer   observability.Tracer
	logger   *log.Logger
}

func NewResearch(cfg config.AgentsConfig, provider LLMProvider, tools []Tool, tracer observability.Tracer, logger *log.Logger) *Research {
	if logger == nil {
		logger = log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags)
	}
	return &Research{cfg: cfg, provider: provider, tools: tools, tracer: tracer, logger: logger}
}

func (r *Research) Name() string { return state.AgentResearch }

func (r *Research) Execute(ctx context.Context, st *state.AgentState) error {
	ctx, span := researchTracer.Start(ctx, "research.execute",
		trace.WithAttributes(attribute.String("session.id", st.SessionID)))
	defer span.End()

	// Each research run starts with a fresh evidence set; observations from
	// earlier turns do not carry over.
	st.Context.Observations = []string{}
	st.Context.ToolHistory = []string{}
	st.Context.FinalOutput = ""

	query := latestUserQuery(st.Messages)
	system := resolvePrompt(ctx, r.tracer, r.logger, r.cfg.Research, map[string]string{
		"history": formatHistory(st.Window(r.cfg.MaxHistory)),
		"query":   query,
	})

	schemas := make([]models.ToolSchema, 0, len(r.tools))
	byName := make(map[string]Tool, len(r.tools))
	for _, t := range r.tools {
		schemas = append(schemas, models.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
		byName[t.Name()] = t
	}

	transcript := []models.Message{models.System(system), models.Human(query)}
	start := time.Now()

	final, failed := r.runToolLoop(ctx, st, transcript, schemas, byName)
	if failed {
		st.Context.Observations = append(st.Context.Observations, "research aborted: tool loop failed")
		final = fallbackResearch
	}

	if r.tracer != nil {
		r.tracer.TraceGeneration(ctx, obsmodels.Generation{
			Name:      "agent_research",
			Input:     map[string]any{"query": query},
			Output:    final,
			Model:     r.provider.CompletionModel(),
			SessionID: st.SessionID,
			Metadata: map[string]any{
				"tools_used":   st.Context.ToolHistory,
				"observations": len(st.Context.Observations),
			},
			StartTime: start,
			EndTime:   time.Now(),
		})
	}
	span.SetAttributes(
		attribute.StringSlice("tools.used", st.Context.ToolHistory),
		attribute.Int("observations", len(st.Context.Observations)),
	)

	st.Context.FinalOutput = final
	st.NextAgent = state.AgentSynthesis
	st.LastAgent = state.AgentResearch
	st.Iteration++
	return nil
}

// runToolLoop drives the model/tool exchange. It returns the final answer
// text and whether the loop failed outright.
func (r *Research) runToolLoop(ctx context.Context, st *state.AgentState, transcript []models.Message, schemas []models.ToolSchema, byName map[string]Tool) (string, bool) {
	var lastContent string

	for i := 0; i < r.cfg.MaxToolIterations; i++ {
		decision, err := r.provider.GenerateWithTools(ctx, transcript, schemas)
		if err != nil {
			r.logger.Printf("tool loop completion failed: %v", err)
			return "", true
		}

		if len(decision.ToolCalls) == 0 {
			// Final answer: the only message from the loop that reaches the
			// conversation transcript.
			if strings.TrimSpace(decision.Content) == "" {
				break
			}
			st.AppendAssistant(decision.Content)
			return decision.Content, false
		}
		lastContent = decision.Content

		assistant := models.AI(decision.Content)
		assistant.ToolCalls = decision.ToolCalls
		transcript = append(transcript, assistant)

		for _, call := range decision.ToolCalls {
			output := r.invokeTool(ctx, st, byName, call)
			transcript = append(transcript, models.ToolMsg(call.ID, call.Name, output))
		}
	}

	// Iteration bound reached without a final answer; fall back to the last
	// thing the model said.
	if strings.TrimSpace(lastContent) == "" {
		lastContent = "Research finished without a conclusive answer."
	}
	st.AppendAssistant(lastContent)
	return lastContent, false
}

func (r *Research) invokeTool(ctx context.Context, st *state.AgentState, byName map[string]Tool, call models.ToolCall) string {
	tool, ok := byName[call.Name]
	if !ok {
		obs := fmt.Sprintf("requested unknown tool %q", call.Name)
		st.Context.Observations = append(st.Context.Observations, obs)
		return "Error: unknown tool " + call.Name
	}

	recordToolUse(st, call.Name)
	telemetry.ToolInvocations.WithLabelValues(call.Name).Inc()

	output, err := tool.Execute(ctx, call.Args)
	if err != nil {
		r.logger.Printf("tool %s failed: %v", call.Name, err)
		obs := fmt.Sprintf("%s failed: %v", call.Name, err)
		st.Context.Observations = append(st.Context.Observations, obs)
		return "Error: " + err.Error()
	}

	st.Context.Observations = append(st.Context.Observations, fmt.Sprintf("%s: %s", call.Name, output))
	return output
}

// recordToolUse appends to the tool history, deduplicated by name in
// first-use order.
func recordToolUse(st *state.AgentState, name string) {
	for _, used := range st.Context.ToolHistory {
		if used == name {
			return
		}
	}
	st.Context.ToolHistory = append(st.Context.ToolHistory, name)
}

// Package graph implements the workflow engine: it compiles the agent graph,
// drives a conversation turn node-by-node until a terminal state, and
// checkpoints the state after every node so a resumed session reflects the
// latest progress exactly.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/paperchat/internal/agent/core"
	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
)

var graphTracer trace.Tracer = otel.Tracer("paperchat/internal/agent/graph")

// ErrCheckpointerNotConfigured is returned by thread-management operations
// when the workflow was built without a checkpoint store.
var ErrCheckpointerNotConfigured = errors.New("checkpoint store not configured")

// maxNodeExecutions is a coarse safety cap on agent-node executions per
// turn, on top of the orchestrator's own loop guards.
const maxNodeExecutions = 16

// Workflow wires the four agents into a directed graph:
//
//	orchestrator -> {clarification | research}
//	clarification -> end
//	research -> synthesis
//	synthesis -> end
//
// The graph has no back-edges; repeated clarification happens only because
// each new user turn starts again at the orchestrator.
type Workflow struct {
	nodes  map[string]core.Agent
	saver  memory.Saver
	logger *log.Logger
}

// New compiles the workflow. saver may be nil, in which case persistence is
// disabled and thread management degrades per ThreadExists/GetThreadState.
func New(orchestrator, clarification, research, synthesis core.Agent, saver memory.Saver, logger *log.Logger) *Workflow {
	if logger == nil {
		logger = log.New(log.Writer(), "[GRAPH] ", log.LstdFlags)
	}
	return &Workflow{
		nodes: map[string]core.Agent{
			state.AgentOrchestrator:  orchestrator,
			state.AgentClarification: clarification,
			state.AgentResearch:      research,
			state.AgentSynthesis:     synthesis,
		},
		saver:  saver,
		logger: logger,
	}
}

// Invoke drives the state through the graph to a terminal node and returns
// the final state. The state is checkpointed after each node so partial
// progress survives a crash mid-graph. Checkpoint write failures are logged
// and counted, never allowed to abort the turn.
func (w *Workflow) Invoke(ctx context.Context, st *state.AgentState, threadID string) (*state.AgentState, error) {
	ctx, span := graphTracer.Start(ctx, "workflow.invoke",
		trace.WithAttributes(attribute.String("thread.id", threadID)))
	defer span.End()

	turnStart := time.Now()
	executions := 0

	for st.NextAgent != state.AgentEnd {
		if executions >= maxNodeExecutions {
			return nil, fmt.Errorf("workflow exceeded %d node executions on thread %s", maxNodeExecutions, threadID)
		}
		node, ok := w.nodes[st.NextAgent]
		if !ok {
			return nil, fmt.Errorf("unknown agent %q on thread %s", st.NextAgent, threadID)
		}
		executions++

		nodeStart := time.Now()
		nodeCtx, nodeSpan := graphTracer.Start(ctx, "node."+node.Name())
		err := node.Execute(nodeCtx, st)
		nodeSpan.End()
		if err != nil {
			// Agents are fail-open; an error here is a programming bug, not
			// a capability failure.
			return nil, fmt.Errorf("agent %s: %w", node.Name(), err)
		}

		telemetry.NodeExecutions.WithLabelValues(node.Name()).Inc()
		telemetry.NodeDuration.WithLabelValues(node.Name()).Observe(time.Since(nodeStart).Seconds())

		w.checkpoint(ctx, threadID, st)
	}

	telemetry.Turns.WithLabelValues(st.LastAgent).Inc()
	telemetry.TurnDuration.Observe(time.Since(turnStart).Seconds())
	return st, nil
}

func (w *Workflow) checkpoint(ctx context.Context, threadID string, st *state.AgentState) {
	if w.saver == nil {
		return
	}
	if err := w.saver.Put(ctx, threadID, st); err != nil {
		w.logger.Printf("checkpoint write failed for thread %s: %v", threadID, err)
		telemetry.CheckpointFailures.Inc()
	}
}

// ThreadExists reports whether a thread has a persisted checkpoint. Without
// a checkpoint store it is always false rather than an error.
func (w *Workflow) ThreadExists(ctx context.Context, threadID string) (bool, error) {
	if w.saver == nil {
		return false, nil
	}
	return w.saver.Exists(ctx, threadID)
}

// GetThreadState loads the latest checkpoint for a thread.
func (w *Workflow) GetThreadState(ctx context.Context, threadID string) (*state.AgentState, error) {
	if w.saver == nil {
		return nil, ErrCheckpointerNotConfigured
	}
	return w.saver.Get(ctx, threadID)
}

// DeleteThread removes all persisted state for a thread.
func (w *Workflow) DeleteThread(ctx context.Context, threadID string) error {
	if w.saver == nil {
		return ErrCheckpointerNotConfigured
	}
	return w.saver.Delete(ctx, threadID)
}

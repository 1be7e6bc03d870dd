package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/memory/inmemory"
)

// scriptedAgent routes to a fixed next agent and optionally appends output.
type scriptedAgent struct {
	name     string
	next     string
	answer   string
	executed int
}

func (a *scriptedAgent) Name() string { return a.name }

func (a *scriptedAgent) Execute(ctx context.Context, st *state.AgentState) error {
	a.executed++
	st.Iteration++
	st.NextAgent = a.next
	st.LastAgent = a.name
	if a.answer != "" {
		st.AppendAssistant(a.answer)
		st.FinalAnswer = a.answer
	}
	return nil
}

func TestInvokeResearchPath(t *testing.T) {
	orch := &scriptedAgent{name: state.AgentOrchestrator, next: state.AgentResearch}
	clar := &scriptedAgent{name: state.AgentClarification, next: state.AgentEnd}
	res := &scriptedAgent{name: state.AgentResearch, next: state.AgentSynthesis}
	syn := &scriptedAgent{name: state.AgentSynthesis, next: state.AgentEnd, answer: "final"}

	wf := New(orch, clar, res, syn, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("q")}, "s1")

	final, err := wf.Invoke(context.Background(), st, "s1")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if final.FinalAnswer != "final" {
		t.Fatalf("unexpected answer: %q", final.FinalAnswer)
	}
	if orch.executed != 1 || res.executed != 1 || syn.executed != 1 || clar.executed != 0 {
		t.Fatalf("unexpected node executions: orch=%d clar=%d res=%d syn=%d",
			orch.executed, clar.executed, res.executed, syn.executed)
	}
}

func TestInvokeClarificationPath(t *testing.T) {
	orch := &scriptedAgent{name: state.AgentOrchestrator, next: state.AgentClarification}
	clar := &scriptedAgent{name: state.AgentClarification, next: state.AgentEnd, answer: "which paper?"}
	res := &scriptedAgent{name: state.AgentResearch, next: state.AgentSynthesis}
	syn := &scriptedAgent{name: state.AgentSynthesis, next: state.AgentEnd}

	wf := New(orch, clar, res, syn, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("tell me more")}, "s1")

	final, err := wf.Invoke(context.Background(), st, "s1")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if final.FinalAnswer != "which paper?" {
		t.Fatalf("unexpected answer: %q", final.FinalAnswer)
	}
	if res.executed != 0 || syn.executed != 0 {
		t.Fatalf("research path must not run on clarification: res=%d syn=%d", res.executed, syn.executed)
	}
}

// stuckAgent never routes toward end.
type stuckAgent struct{ name string }

func (a *stuckAgent) Name() string { return a.name }

func (a *stuckAgent) Execute(ctx context.Context, st *state.AgentState) error {
	st.NextAgent = state.AgentOrchestrator
	return nil
}

func TestInvokeBoundsNodeExecutions(t *testing.T) {
	orch := &stuckAgent{name: state.AgentOrchestrator}
	other := &scriptedAgent{name: state.AgentClarification, next: state.AgentEnd}

	wf := New(orch, other, other, other, nil, nil)
	st := state.NewInitialState(nil, "s1")

	if _, err := wf.Invoke(context.Background(), st, "s1"); err == nil {
		t.Fatalf("expected error for runaway graph")
	}
}

func TestInvokeCheckpointsAfterEachNode(t *testing.T) {
	saver := inmemory.New()
	orch := &scriptedAgent{name: state.AgentOrchestrator, next: state.AgentResearch}
	clar := &scriptedAgent{name: state.AgentClarification, next: state.AgentEnd}
	res := &scriptedAgent{name: state.AgentResearch, next: state.AgentSynthesis}
	syn := &scriptedAgent{name: state.AgentSynthesis, next: state.AgentEnd, answer: "done"}

	wf := New(orch, clar, res, syn, saver, nil)
	st := state.NewInitialState([]state.Message{state.Human("q")}, "thread-1")

	if _, err := wf.Invoke(context.Background(), st, "thread-1"); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	got, err := wf.GetThreadState(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("get thread state: %v", err)
	}
	if got.FinalAnswer != "done" || got.NextAgent != state.AgentEnd {
		t.Fatalf("checkpoint does not reflect final state: %+v", got)
	}
	if got.Iteration != 3 {
		t.Fatalf("expected 3 node iterations in checkpoint, got %d", got.Iteration)
	}
}

func TestThreadManagementWithoutSaver(t *testing.T) {
	wf := New(&stuckAgent{}, &stuckAgent{}, &stuckAgent{}, &stuckAgent{}, nil, nil)

	ok, err := wf.ThreadExists(context.Background(), "s1")
	if err != nil || ok {
		t.Fatalf("expected false without saver: ok=%v err=%v", ok, err)
	}
	if _, err := wf.GetThreadState(context.Background(), "s1"); !errors.Is(err, ErrCheckpointerNotConfigured) {
		t.Fatalf("expected ErrCheckpointerNotConfigured, got %v", err)
	}
	if err := wf.DeleteThread(context.Background(), "s1"); !errors.Is(err, ErrCheckpointerNotConfigured) {
		t.Fatalf("expected ErrCheckpointerNotConfigured, got %v", err)
	}
}

func TestThreadLifecycleWithSaver(t *testing.T) {
	saver := inmemory.New()
	orch := &scriptedAgent{name: state.AgentOrchestrator, next: state.AgentClarification}
	clar := &scriptedAgent{name: state.AgentClarification, next: state.AgentEnd, answer: "q?"}
	wf := New(orch, clar, clar, clar, saver, nil)

	st := state.NewInitialState([]state.Message{state.Human("hm")}, "t1")
	if _, err := wf.Invoke(context.Background(), st, "t1"); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	ok, err := wf.ThreadExists(context.Background(), "t1")
	if err != nil || !ok {
		t.Fatalf("expected thread to exist: ok=%v err=%v", ok, err)
	}
	if err := wf.DeleteThread(context.Background(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = wf.ThreadExists(context.Background(), "t1")
	if err != nil || ok {
		t.Fatalf("expected thread gone: ok=%v err=%v", ok, err)
	}
}

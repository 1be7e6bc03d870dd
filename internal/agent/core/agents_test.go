package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/provider/models"
)

type fakeProvider struct {
	generate      func(prompt string) (string, error)
	generateTools func(msgs []models.Message, tools []models.ToolSchema) (models.Decision, error)
	generateCalls int
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.generateCalls++
	if f.generate == nil {
		return "", errors.New("generate not stubbed")
	}
	return f.generate(prompt)
}

func (f *fakeProvider) GenerateWithTools(ctx context.Context, msgs []models.Message, tools []models.ToolSchema) (models.Decision, error) {
	if f.generateTools == nil {
		return models.Decision{}, errors.New("tool generation not stubbed")
	}
	return f.generateTools(msgs, tools)
}

func (f *fakeProvider) CompletionModel() string { return "fake-model" }

type fakeTool struct {
	name    string
	execute func(args map[string]any) (string, error)
	calls   int
}

func (f *fakeTool) Name() string               { return f.name }
func (f *fakeTool) Description() string        { return "fake tool" }
func (f *fakeTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (f *fakeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	f.calls++
	return f.execute(args)
}

func agentsConfig() config.AgentsConfig {
	return config.AgentsConfig{
		MaxHistory:        10,
		MaxClarifications: 2,
		MaxToolIterations: 5,
	}
}

func TestOrchestratorCounterGuardForcesResearch(t *testing.T) {
	provider := &fakeProvider{generate: func(string) (string, error) {
		return "CLARIFICATION", nil
	}}
	orch := NewOrchestrator(agentsConfig(), provider, nil, nil)

	st := state.NewInitialState([]state.Message{state.Human("tell me more")}, "s1")
	st.ClarificationCount = 2

	if err := orch.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.NextAgent != state.AgentResearch {
		t.Fatalf("expected research, got %s", st.NextAgent)
	}
	if st.ClarificationCount != 0 {
		t.Fatalf("expected counter reset, got %d", st.ClarificationCount)
	}
	if provider.generateCalls != 0 {
		t.Fatalf("counter guard must not call the model, got %d calls", provider.generateCalls)
	}
}

func TestOrchestratorFollowUpGuardSkipsModel(t *testing.T) {
	provider := &fakeProvider{generate: func(string) (string, error) {
		return "CLARIFICATION", nil
	}}
	orch := NewOrchestrator(agentsConfig(), provider, nil, nil)

	st := state.NewInitialState([]state.Message{
		state.Human("tell me more about it"),
		state.AI("Which paper do you mean?"),
		state.Human("the attention paper by Vaswani"),
	}, "s1")
	st.LastAgent = state.AgentClarification
	st.ClarificationCount = 1

	if err := orch.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.NextAgent != state.AgentResearch {
		t.Fatalf("expected research, got %s", st.NextAgent)
	}
	if st.ClarificationCount != 0 {
		t.Fatalf("expected counter reset, got %d", st.ClarificationCount)
	}
	if provider.generateCalls != 0 {
		t.Fatalf("follow-up guard must not call the model, got %d calls", provider.generateCalls)
	}
}

func TestOrchestratorModelDecision(t *testing.T) {
	cases := []struct {
		name     string
		decision string
		err      error
		want     string
		count    int
	}{
		{"clarification keyword", "clarification: the query is vague", nil, state.AgentClarification, 1},
		{"research decision", "RESEARCH", nil, state.AgentResearch, 0},
		{"completion error fails safe", "", errors.New("boom"), state.AgentResearch, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeProvider{generate: func(string) (string, error) {
				return tc.decision, tc.err
			}}
			orch := NewOrchestrator(agentsConfig(), provider, nil, nil)
			st := state.NewInitialState([]state.Message{state.Human("what is attention?")}, "s1")

			if err := orch.Execute(context.Background(), st); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if st.NextAgent != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, st.NextAgent)
			}
			if st.ClarificationCount != tc.count {
				t.Fatalf("expected clarification count %d, got %d", tc.count, st.ClarificationCount)
			}
			if st.Iteration != 1 {
				t.Fatalf("expected iteration 1, got %d", st.Iteration)
			}
		})
	}
}

func TestClarificationAppendsQuestionAndEnds(t *testing.T) {
	provider := &fakeProvider{generate: func(string) (string, error) {
		return "Which paper are you asking about?", nil
	}}
	agent := NewClarification(agentsConfig(), provider, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("tell me more about it")}, "s1")

	if err := agent.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.FinalAnswer != "Which paper are you asking about?" {
		t.Fatalf("unexpected final answer: %q", st.FinalAnswer)
	}
	if st.NextAgent != state.AgentEnd || st.LastAgent != state.AgentClarification {
		t.Fatalf("unexpected routing: next=%s last=%s", st.NextAgent, st.LastAgent)
	}
	last := st.Messages[len(st.Messages)-1]
	if last.Role != state.RoleAssistant || last.Content != st.FinalAnswer {
		t.Fatalf("clarifying question not appended to messages")
	}
}

func TestClarificationFailsOpen(t *testing.T) {
	provider := &fakeProvider{generate: func(string) (string, error) {
		return "", errors.New("provider down")
	}}
	agent := NewClarification(agentsConfig(), provider, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("hm")}, "s1")

	if err := agent.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.FinalAnswer == "" {
		t.Fatalf("expected fallback answer")
	}
	if st.NextAgent != state.AgentEnd {
		t.Fatalf("expected end, got %s", st.NextAgent)
	}
}

func TestResearchToolLoopRecordsHistoryInFirstUseOrder(t *testing.T) {
	pdf := &fakeTool{name: "pdf_retrieval", execute: func(map[string]any) (string, error) {
		return noRelevantDocuments, nil
	}}
	web := &fakeTool{name: "web_search", execute: func(map[string]any) (string, error) {
		return "[Result 1] Attention Is All You Need", nil
	}}

	step := 0
	provider := &fakeProvider{generateTools: func(msgs []models.Message, tools []models.ToolSchema) (models.Decision, error) {
		step++
		switch step {
		case 1:
			return models.Decision{ToolCalls: []models.ToolCall{{ID: "1", Name: "pdf_retrieval", Args: map[string]any{"query": "attention"}}}}, nil
		case 2:
			return models.Decision{ToolCalls: []models.ToolCall{{ID: "2", Name: "web_search", Args: map[string]any{"query": "attention paper"}}}}, nil
		case 3:
			return models.Decision{ToolCalls: []models.ToolCall{{ID: "3", Name: "pdf_retrieval", Args: map[string]any{"query": "transformer"}}}}, nil
		default:
			return models.Decision{Content: "The paper introduces the transformer architecture."}, nil
		}
	}}

	agent := NewResearch(agentsConfig(), provider, []Tool{pdf, web}, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("what does the attention paper propose?")}, "s1")

	if err := agent.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(st.Context.ToolHistory) != 2 || st.Context.ToolHistory[0] != "pdf_retrieval" || st.Context.ToolHistory[1] != "web_search" {
		t.Fatalf("unexpected tool history: %v", st.Context.ToolHistory)
	}
	if len(st.Context.Observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(st.Context.Observations))
	}
	if st.Context.FinalOutput != "The paper introduces the transformer architecture." {
		t.Fatalf("unexpected final output: %q", st.Context.FinalOutput)
	}
	if st.NextAgent != state.AgentSynthesis || st.LastAgent != state.AgentResearch {
		t.Fatalf("unexpected routing: next=%s last=%s", st.NextAgent, st.LastAgent)
	}

	// Only the final answer reaches the conversation transcript.
	if len(st.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(st.Messages))
	}
	last := st.Messages[len(st.Messages)-1]
	if last.Role != state.RoleAssistant || strings.Contains(last.Content, "Result 1") {
		t.Fatalf("tool scaffolding leaked into transcript: %+v", last)
	}
}

func TestResearchIterationBoundFallsBackToLastMessage(t *testing.T) {
	pdf := &fakeTool{name: "pdf_retrieval", execute: func(map[string]any) (string, error) {
		return "some passage", nil
	}}
	provider := &fakeProvider{generateTools: func([]models.Message, []models.ToolSchema) (models.Decision, error) {
		return models.Decision{
			Content:   "still digging",
			ToolCalls: []models.ToolCall{{ID: "x", Name: "pdf_retrieval", Args: map[string]any{"query": "q"}}},
		}, nil
	}}

	cfg := agentsConfig()
	cfg.MaxToolIterations = 3
	agent := NewResearch(cfg, provider, []Tool{pdf}, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("q")}, "s1")

	if err := agent.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if pdf.calls != 3 {
		t.Fatalf("expected 3 tool calls, got %d", pdf.calls)
	}
	if st.Context.FinalOutput != "still digging" {
		t.Fatalf("expected last model message as fallback, got %q", st.Context.FinalOutput)
	}
	if st.NextAgent != state.AgentSynthesis {
		t.Fatalf("expected synthesis, got %s", st.NextAgent)
	}
}

func TestResearchFailsOpenOnCompletionError(t *testing.T) {
	provider := &fakeProvider{generateTools: func([]models.Message, []models.ToolSchema) (models.Decision, error) {
		return models.Decision{}, errors.New("provider down")
	}}
	agent := NewResearch(agentsConfig(), provider, nil, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("q")}, "s1")

	if err := agent.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.Context.FinalOutput == "" {
		t.Fatalf("expected failure notice in final output")
	}
	if st.NextAgent != state.AgentSynthesis {
		t.Fatalf("research must still route to synthesis, got %s", st.NextAgent)
	}
	if len(st.Context.Observations) == 0 {
		t.Fatalf("expected synthetic failure observation")
	}
}

func TestSynthesisConfidenceSteps(t *testing.T) {
	cases := []struct {
		observations int
		want         float64
	}{
		{0, 0.0},
		{1, 0.6},
		{2, 0.8},
		{3, 0.95},
		{7, 0.95},
	}
	for _, tc := range cases {
		provider := &fakeProvider{generate: func(string) (string, error) {
			return "final answer", nil
		}}
		agent := NewSynthesis(agentsConfig(), provider, nil, nil)
		st := state.NewInitialState([]state.Message{state.Human("q")}, "s1")
		for i := 0; i < tc.observations; i++ {
			st.Context.Observations = append(st.Context.Observations, "obs")
		}

		if err := agent.Execute(context.Background(), st); err != nil {
			t.Fatalf("execute: %v", err)
		}
		if st.ConfidenceScore == nil || *st.ConfidenceScore != tc.want {
			t.Fatalf("observations=%d: expected confidence %v, got %v", tc.observations, tc.want, st.ConfidenceScore)
		}
	}
}

func TestSynthesisFallsBackToResearchOutput(t *testing.T) {
	provider := &fakeProvider{generate: func(string) (string, error) {
		return "", errors.New("provider down")
	}}
	agent := NewSynthesis(agentsConfig(), provider, nil, nil)
	st := state.NewInitialState([]state.Message{state.Human("q")}, "s1")
	st.Context.FinalOutput = "raw research findings"
	st.Context.Observations = []string{"a", "b", "c"}

	if err := agent.Execute(context.Background(), st); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.FinalAnswer != "raw research findings" {
		t.Fatalf("expected verbatim research output, got %q", st.FinalAnswer)
	}
	if st.ConfidenceScore == nil || *st.ConfidenceScore != 0.0 {
		t.Fatalf("expected zero confidence on fallback, got %v", st.ConfidenceScore)
	}
	if st.NextAgent != state.AgentEnd {
		t.Fatalf("expected end, got %s", st.NextAgent)
	}
}

// Package state defines the shared record threaded through every node of the
// agent graph. One AgentState exists per in-flight conversation turn; agents
// mutate it in place and the workflow engine checkpoints it after each node.
package state

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. Messages are append-only: once
// created they are never mutated, and merges always append in arrival order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Human creates a user message.
func Human(content string) Message { return Message{Role: RoleUser, Content: content} }

// AI creates an assistant message.
func AI(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Routing targets stored in AgentState.NextAgent and read by the workflow
// engine to pick the next node.
const (
	AgentOrchestrator  = "orchestrator"
	AgentClarification = "clarification"
	AgentResearch      = "research"
	AgentSynthesis     = "synthesis"
	AgentEnd           = "end"
)

// ResearchContext accumulates intermediate results during the research phase.
// It is owned by the research agent and read by synthesis.
type ResearchContext struct {
	Observations []string `json:"observations"`
	ToolHistory  []string `json:"tool_history"`
	FinalOutput  string   `json:"final_output,omitempty"`
}

// AgentState flows through the whole graph execution, accumulating context
// and decisions from each agent.
type AgentState struct {
	// Core conversation.
	Messages  []Message `json:"messages"`
	SessionID string    `json:"session_id"`

	// Routing state.
	NextAgent string `json:"next_agent"`
	LastAgent string `json:"last_agent,omitempty"`
	Iteration int    `json:"iteration"`

	// Research state.
	Context ResearchContext `json:"context"`

	// Clarification state.
	ClarificationNeeded bool     `json:"clarification_needed"`
	MissingContext      []string `json:"missing_context,omitempty"`
	ClarificationCount  int      `json:"clarification_count"`

	// Output.
	FinalAnswer     string   `json:"final_answer,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

// NewInitialState creates the state for a fresh graph execution. Pure
// construction, no error paths.
func NewInitialState(messages []Message, sessionID string) *AgentState {
	return &AgentState{
		Messages:  messages,
		SessionID: sessionID,
		NextAgent: AgentOrchestrator,
		Iteration: 0,
		Context: ResearchContext{
			Observations: []string{},
			ToolHistory:  []string{},
		},
		ClarificationNeeded: false,
		MissingContext:      []string{},
		ClarificationCount:  0,
	}
}

// AppendUser appends a user message, as happens when a persisted thread is
// resumed with a new turn.
func (s *AgentState) AppendUser(content string) {
	s.Messages = append(s.Messages, Human(content))
}

// AppendAssistant appends an assistant message.
func (s *AgentState) AppendAssistant(content string) {
	s.Messages = append(s.Messages, AI(content))
}

// Window returns the most recent max messages, bounding prompt size. A
// non-positive max returns the full history.
func (s *AgentState) Window(max int) []Message {
	if max <= 0 || len(s.Messages) <= max {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-max:]
}

// SetConfidence records the confidence score for the final answer.
func (s *AgentState) SetConfidence(score float64) {
	s.ConfidenceScore = &score
}

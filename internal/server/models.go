package server

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse carries the final answer of one conversation turn.
type ChatResponse struct {
	Answer       string   `json:"answer"`
	SessionID    string   `json:"session_id"`
	MessageCount int      `json:"message_count"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Agent        string   `json:"agent"`
	ToolHistory  []string `json:"tool_history,omitempty"`
}

// MemoryResponse is the persisted conversation for one session.
type MemoryResponse struct {
	SessionID    string          `json:"session_id"`
	Messages     []MemoryMessage `json:"messages"`
	MessageCount int             `json:"message_count"`
}

type MemoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

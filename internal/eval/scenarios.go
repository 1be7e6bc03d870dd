// Package eval replays fixed conversation scenarios against a running chat
// API and scores the observed workflow structurally: which agent answered,
// which tools ran, whether clarification fired when it should.
package eval

// Expectation describes the workflow shape a scenario should produce.
type Expectation struct {
	Agent                 string   // agent expected to produce the final answer
	ToolsShouldInclude    []string
	ToolsShouldExclude    []string
	ClarificationExpected bool
}

// Scenario is one replayable conversation.
type Scenario struct {
	ID          string
	Name        string
	Query       string
	Expected    Expectation
	Description string
}

// Scenarios is the fixed suite, mirroring the four workflow shapes: vague
// query, paper-covered query, multi-tool research, and out-of-scope query.
func Scenarios() []Scenario {
	return []Scenario{
		{
			ID:    "1-clarification",
			Name:  "Ambiguous Quantifier",
			Query: "How many examples are enough for good accuracy?",
			Expected: Expectation{
				Agent:                 "clarification",
				ToolsShouldExclude:    []string{"pdf_retrieval", "web_search"},
				ClarificationExpected: true,
			},
			Description: "Vague quantifiers should trigger clarification, not research.",
		},
		{
			ID:    "2-pdf-only",
			Name:  "Paper-Covered Question",
			Query: "What attention mechanism does the transformer paper propose?",
			Expected: Expectation{
				Agent:              "synthesis",
				ToolsShouldInclude: []string{"pdf_retrieval"},
				ToolsShouldExclude: []string{"web_search"},
			},
			Description: "Questions covered by the indexed papers should resolve from retrieval alone.",
		},
		{
			ID:    "3-autonomous",
			Name:  "Multi-Tool Research",
			Query: "How does the transformer paper's approach compare to current state-of-the-art models?",
			Expected: Expectation{
				Agent:              "synthesis",
				ToolsShouldInclude: []string{"pdf_retrieval", "web_search"},
			},
			Description: "Comparative questions need both the papers and current web results.",
		},
		{
			ID:    "4-out-of-scope",
			Name:  "Out-of-Scope Query",
			Query: "What did OpenAI release this month?",
			Expected: Expectation{
				Agent:              "synthesis",
				ToolsShouldInclude: []string{"web_search"},
			},
			Description: "Time-sensitive queries outside the papers should fall through to web search.",
		},
	}
}

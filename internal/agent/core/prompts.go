package core

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/mohammad-safakhou/paperchat/config"
	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/tools/observability"
	obsmodels "github.com/mohammad-safakhou/paperchat/tools/observability/models"
)

// Built-in prompt templates, used when the prompt store has no managed
// version of a prompt.
const (
	orchestratorPromptTemplate = `You are an intent classifier for a research assistant that answers questions about indexed papers.

Conversation so far:
{{history}}

Latest user message:
{{query}}

Decide whether the assistant has enough context to research an answer. If the message is vague, ambiguous, or refers to something not identifiable from the conversation, respond with the single word CLARIFICATION and a short note of what is missing. Otherwise respond with RESEARCH.`

	clarificationPromptTemplate = `You are a helpful research assistant. The user's request is too vague to research yet.

Conversation so far:
{{history}}

Latest user message:
{{query}}

Ask one short, specific clarifying question that would let you research the request. Respond with the question only.`

	researchPromptTemplate = `You are a research agent with access to tools. Answer the user's question by gathering evidence.

Use pdf_retrieval to search the indexed papers first. If it reports no relevant documents, try web_search. Call tools one at a time and stop calling tools once you have enough evidence, then write your findings as plain text.

Conversation so far:
{{history}}

Question:
{{query}}`

	synthesisPromptTemplate = `You are a research assistant writing the final answer for the user.

Question:
{{query}}

Evidence gathered during research:
{{observations}}

Research notes:
{{findings}}

Write a clear, direct answer grounded in the evidence. If the evidence is weak or missing, say so honestly instead of inventing details.`
)

var builtinPrompts = map[string]string{
	"orchestrator_intent": orchestratorPromptTemplate,
	"clarification":       clarificationPromptTemplate,
	"agent_research":      researchPromptTemplate,
	"synthesis":           synthesisPromptTemplate,
}

// resolvePrompt fetches a managed prompt from the tracer backend, falling
// back to the built-in template when the store has none.
func resolvePrompt(ctx context.Context, tracer observability.Tracer, logger *log.Logger, cfg config.AgentConfig, vars map[string]string) string {
	if tracer != nil && cfg.PromptID != "" {
		p, err := tracer.GetPrompt(ctx, cfg.PromptID, cfg.PromptVersion, cfg.PromptLabel)
		if err == nil {
			return p.Compile(vars)
		}
		if !errors.Is(err, obsmodels.ErrPromptNotFound) && logger != nil {
			logger.Printf("prompt %s unavailable, using built-in: %v", cfg.PromptID, err)
		}
	}
	return obsmodels.Prompt{Text: builtinPrompts[cfg.PromptID]}.Compile(vars)
}

// formatHistory renders a message window as alternating User/Assistant lines.
func formatHistory(msgs []state.Message) string {
	if len(msgs) == 0 {
		return "No previous conversation."
	}
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch m.Role {
		case state.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}

// latestUserQuery returns the content of the most recent user message.
func latestUserQuery(msgs []state.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == state.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

package models

import (
	"errors"
	"strings"
	"time"
)

// Generation describes one LLM call for trace emission.
type Generation struct {
	Name      string
	Input     any
	Output    any
	Model     string
	SessionID string
	Metadata  map[string]any
	StartTime time.Time
	EndTime   time.Time
}

// Prompt is a managed prompt template resolved from the tracing backend.
type Prompt struct {
	Name    string
	Version int
	Label   string
	Text    string
}

// Compile substitutes {{var}} placeholders in the prompt text.
func (p Prompt) Compile(vars map[string]string) string {
	out := p.Text
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// ErrPromptNotFound is returned by GetPrompt when the backend has no prompt
// under the requested name; callers fall back to built-in templates.
var ErrPromptNotFound = errors.New("prompt not found")

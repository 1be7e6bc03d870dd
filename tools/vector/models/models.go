package models

// Document is one indexed chunk of a paper, scored when returned from a
// search.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Source   string         `json:"source"`
	Page     int            `json:"page"`
	Score    float64        `json:"score,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

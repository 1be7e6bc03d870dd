package models

// Result is one ranked web search hit. Content is filled in only when page
// fetching is enabled.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content,omitempty"`
}

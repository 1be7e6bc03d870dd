package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Result is the scored outcome of one scenario.
type Result struct {
	Scenario Scenario
	Passed   bool
	Failures []string
	Answer   string
	Agent    string
	Tools    []string
	Elapsed  time.Duration
}

// chatResponse mirrors the API's chat payload.
type chatResponse struct {
	Answer      string   `json:"answer"`
	SessionID   string   `json:"session_id"`
	Confidence  *float64 `json:"confidence"`
	Agent       string   `json:"agent"`
	ToolHistory []string `json:"tool_history"`
}

// Harness replays scenarios against a live chat API.
type Harness struct {
	BaseURL string
	Client  *http.Client
	Logger  *log.Logger
}

func NewHarness(baseURL string) *Harness {
	return &Harness{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 120 * time.Second},
		Logger:  log.New(log.Writer(), "[EVAL] ", log.LstdFlags),
	}
}

// Run executes every scenario in order and returns their results.
func (h *Harness) Run(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		res, err := h.runOne(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.ID, err)
		}
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		h.Logger.Printf("%s %s (%s) agent=%s tools=%v", status, sc.ID, res.Elapsed.Round(time.Millisecond), res.Agent, res.Tools)
		results = append(results, res)
	}
	return results, nil
}

func (h *Harness) runOne(ctx context.Context, sc Scenario) (Result, error) {
	body, err := json.Marshal(map[string]string{"message": sc.Query})
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("chat API status %d: %s", resp.StatusCode, data)
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return Result{}, fmt.Errorf("parsing chat response: %w", err)
	}

	res := Result{
		Scenario: sc,
		Answer:   chat.Answer,
		Agent:    chat.Agent,
		Tools:    chat.ToolHistory,
		Elapsed:  time.Since(start),
	}
	res.Failures = score(sc.Expected, chat)
	res.Passed = len(res.Failures) == 0
	return res, nil
}

// score checks the observed workflow against the expectation.
func score(want Expectation, got chatResponse) []string {
	var failures []string

	if strings.TrimSpace(got.Answer) == "" {
		failures = append(failures, "answer is empty")
	}
	if want.Agent != "" && got.Agent != want.Agent {
		failures = append(failures, fmt.Sprintf("expected agent %s, got %s", want.Agent, got.Agent))
	}
	if want.ClarificationExpected && !strings.Contains(got.Answer, "?") {
		failures = append(failures, "expected a clarifying question")
	}

	used := map[string]bool{}
	for _, tool := range got.ToolHistory {
		used[tool] = true
	}
	for _, tool := range want.ToolsShouldInclude {
		if !used[tool] {
			failures = append(failures, fmt.Sprintf("expected tool %s to run", tool))
		}
	}
	for _, tool := range want.ToolsShouldExclude {
		if used[tool] {
			failures = append(failures, fmt.Sprintf("tool %s must not run", tool))
		}
	}
	return failures
}

// Summarize reports the pass rate over a run.
func Summarize(results []Result) (passed int, total int) {
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return passed, len(results)
}

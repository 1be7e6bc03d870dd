package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
)

// handleChat runs one conversation turn. A missing session id starts a new
// thread; an existing one resumes from its latest checkpoint.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	ctx := c.Request().Context()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var st *state.AgentState
	exists, err := s.workflow.ThreadExists(ctx, sessionID)
	if err != nil {
		s.logger.Printf("thread lookup failed for %s, starting fresh: %v", sessionID, err)
		exists = false
	}
	if exists {
		prior, err := s.workflow.GetThreadState(ctx, sessionID)
		if err != nil {
			s.logger.Printf("thread load failed for %s, starting fresh: %v", sessionID, err)
		} else {
			st = prior
			st.AppendUser(req.Message)
			// Each new user turn re-enters the graph at the orchestrator.
			st.NextAgent = state.AgentOrchestrator
			st.FinalAnswer = ""
			st.ConfidenceScore = nil
		}
	}
	if st == nil {
		st = state.NewInitialState([]state.Message{state.Human(req.Message)}, sessionID)
	}

	final, err := s.workflow.Invoke(ctx, st, sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "conversation turn failed")
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Answer:       final.FinalAnswer,
		SessionID:    sessionID,
		MessageCount: len(final.Messages),
		Confidence:   final.ConfidenceScore,
		Agent:        final.LastAgent,
		ToolHistory:  final.Context.ToolHistory,
	})
}

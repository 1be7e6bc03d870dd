package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/paperchat/internal/agent/graph"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
)

// handleGetMemory returns the persisted conversation for a session.
func (s *Server) handleGetMemory(c echo.Context) error {
	sessionID := c.Param("session_id")

	st, err := s.workflow.GetThreadState(c.Request().Context(), sessionID)
	if errors.Is(err, memory.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	if errors.Is(err, graph.ErrCheckpointerNotConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "session persistence is not enabled")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load session")
	}

	msgs := make([]MemoryMessage, len(st.Messages))
	for i, m := range st.Messages {
		msgs[i] = MemoryMessage{Role: string(m.Role), Content: m.Content}
	}
	return c.JSON(http.StatusOK, MemoryResponse{
		SessionID:    sessionID,
		Messages:     msgs,
		MessageCount: len(msgs),
	})
}

// handleDeleteMemory clears all persisted state for a session.
func (s *Server) handleDeleteMemory(c echo.Context) error {
	sessionID := c.Param("session_id")

	exists, err := s.workflow.ThreadExists(c.Request().Context(), sessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check session")
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	if err := s.workflow.DeleteThread(c.Request().Context(), sessionID); err != nil {
		if errors.Is(err, graph.ErrCheckpointerNotConfigured) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "session persistence is not enabled")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete session")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "session_id": sessionID})
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/services"
)

type SessionHandler struct {
	coordinator *services.Coordinator
}

func NewSessionHandler(coordinator *services.Coordinator) *SessionHandler {
	return &SessionHandler{
		coordinator: coordinator,
	}
}

// Login - create a session for a display name
func (h *SessionHandler) Login(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		// Optional: a previous session on the same connection, replaced
		// instead of duplicated.
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session, err := h.coordinator.Login(req.Name, req.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id": session.ID,
		"name":       session.Name,
		"channel":    realtime.SessionChannel(session.ID),
	})
}

// Logout - destroy the session, leaving queue and desk cleanly
func (h *SessionHandler) Logout(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	h.coordinator.Logout(req.SessionID)
	return c.JSON(http.StatusOK, map[string]any{"message": "logged out"})
}

// History - the session's match history, oldest first
func (h *SessionHandler) History(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id required"})
	}

	history, err := h.coordinator.History(sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"history": history})
}

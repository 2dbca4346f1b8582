package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"tournament-desk/internal/services"
)

type MatchHandler struct {
	coordinator *services.Coordinator
}

func NewMatchHandler(coordinator *services.Coordinator) *MatchHandler {
	return &MatchHandler{
		coordinator: coordinator,
	}
}

// FindOpponent - enter the matchmaking queue; pairing may fire at once,
// in which case the match_found event lands on the session channel
// before this response does.
func (h *MatchHandler) FindOpponent(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.coordinator.FindOpponent(req.SessionID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "waiting for opponent"})
}

// CancelSearch - leave the queue; a no-op when the entry is gone
func (h *MatchHandler) CancelSearch(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.coordinator.CancelSearch(req.SessionID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "search cancelled"})
}

// ReportWin - the reporter declares themselves winner of their desk
func (h *MatchHandler) ReportWin(c echo.Context) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.coordinator.ReportWin(req.SessionID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "result recorded"})
}

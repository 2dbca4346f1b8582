package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"

	"tournament-desk/internal/status"
)

// errorResponse maps the coordinator's error taxonomy onto HTTP codes.
// Every rejection goes back only to the originating caller; the shared
// state is untouched by the time an error reaches here.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, status.ErrInvalidName),
		errors.Is(err, status.ErrInsufficientPool):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, status.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, status.ErrDeskNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, status.ErrAlreadyQueued),
		errors.Is(err, status.ErrAlreadyInMatch),
		errors.Is(err, status.ErrAlreadyResolved),
		errors.Is(err, status.ErrNotParticipant):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		slog.Error("unexpected handler error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/services"
	"tournament-desk/internal/status"
)

type AdminHandler struct {
	coordinator *services.Coordinator
	lottery     *services.LotteryService
}

func NewAdminHandler(coordinator *services.Coordinator, lottery *services.LotteryService) *AdminHandler {
	return &AdminHandler{
		coordinator: coordinator,
		lottery:     lottery,
	}
}

// Login - present the shared secret, receive an admin id and channel
func (h *AdminHandler) Login(c echo.Context) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	adminID, err := h.coordinator.AdminLogin(req.Password)
	if err != nil {
		return errorResponse(c, err)
	}
	// A fresh admin view starts from full snapshots: the coordinator
	// already pushed the desk list, the draw log follows here.
	h.lottery.SyncAdmin(adminID)

	return c.JSON(http.StatusOK, map[string]any{
		"admin_id": adminID,
		"channel":  realtime.AdminChannel(adminID),
	})
}

// Logout - drop the admin connection
func (h *AdminHandler) Logout(c echo.Context) error {
	var req struct {
		AdminID string `json:"admin_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	h.coordinator.AdminLogout(req.AdminID)
	return c.JSON(http.StatusOK, map[string]any{"message": "logged out"})
}

// Desks - snapshot of every active desk, ordered by number
func (h *AdminHandler) Desks(c echo.Context) error {
	adminID := c.QueryParam("admin_id")

	desks, err := h.coordinator.DeskList(adminID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"desks": desks})
}

// ReportWin - force-resolve any active desk naming either participant
func (h *AdminHandler) ReportWin(c echo.Context) error {
	var req struct {
		AdminID         string `json:"admin_id"`
		DeskNum         int    `json:"desk_num"`
		WinnerSessionID string `json:"winner_session_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.coordinator.AdminReportWin(req.AdminID, req.DeskNum, req.WinnerSessionID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "result recorded"})
}

// DrawLottery - draw winners from the supplied pool and broadcast
func (h *AdminHandler) DrawLottery(c echo.Context) error {
	var req struct {
		AdminID string   `json:"admin_id"`
		Title   string   `json:"title"`
		Pool    []string `json:"pool"`
		Count   int      `json:"count"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if !h.coordinator.IsAdmin(req.AdminID) {
		return errorResponse(c, status.ErrUnauthorized)
	}

	record, err := h.lottery.Draw(req.Title, req.Pool, req.Count)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

// Lotteries - the append-only draw log, oldest first
func (h *AdminHandler) Lotteries(c echo.Context) error {
	adminID := c.QueryParam("admin_id")
	if !h.coordinator.IsAdmin(adminID) {
		return errorResponse(c, status.ErrUnauthorized)
	}
	return c.JSON(http.StatusOK, map[string]any{"records": h.lottery.History()})
}

package services

import (
	"log/slog"
	"sort"
	"time"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/status"
	"tournament-desk/models"
	"tournament-desk/monitoring"
)

// openDeskLocked seats two live sessions at the next desk number,
// notifies both players and every admin. The desk stores name/id copies
// so it outlives either session disconnecting.
func (c *Coordinator) openDeskLocked(a, b *models.UserSession) {
	num := c.nextDeskNum
	c.nextDeskNum++

	desk := &models.Desk{
		Num:      num,
		Player1:  models.DeskPlayer{SessionID: a.ID, Name: a.Name},
		Player2:  models.DeskPlayer{SessionID: b.ID, Name: b.Name},
		Status:   models.DeskStatusActive,
		OpenedAt: time.Now(),
	}
	c.desks[num] = desk
	c.deskBySession[a.ID] = num
	c.deskBySession[b.ID] = num
	c.lastDesk[a.ID] = num
	c.lastDesk[b.ID] = num

	monitoring.SetActiveDesks(len(c.desks))
	slog.Info("desk opened", "desk_num", num, "player1", a.Name, "player2", b.Name)

	c.publisher.Publish(realtime.SessionChannel(a.ID), map[string]any{
		"type":          "match_found",
		"desk_num":      num,
		"opponent_name": b.Name,
	})
	c.publisher.Publish(realtime.SessionChannel(b.ID), map[string]any{
		"type":          "match_found",
		"desk_num":      num,
		"opponent_name": a.Name,
	})
	for _, channel := range c.adminChannelsLocked() {
		c.publisher.Publish(channel, map[string]any{
			"type": "desk_opened",
			"desk": *desk,
		})
	}
}

// ReportWin resolves the reporter's desk with the reporter as winner.
func (c *Coordinator) ReportWin(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[sessionID]; !ok {
		monitoring.TrackOperation("report_win", "rejected")
		return status.ErrUnauthorized
	}

	deskNum, seated := c.deskBySession[sessionID]
	if !seated {
		monitoring.TrackOperation("report_win", "rejected")
		// A second report lands here after the first one (or an admin,
		// or a forfeit) already removed the desk.
		if lastNum, had := c.lastDesk[sessionID]; had {
			if _, done := c.resolvedDesks[lastNum]; done {
				return status.ErrAlreadyResolved
			}
		}
		return status.ErrDeskNotFound
	}

	if err := c.closeDeskLocked(deskNum, sessionID, models.CloseReported); err != nil {
		monitoring.TrackOperation("report_win", "rejected")
		return err
	}
	monitoring.TrackOperation("report_win", "ok")
	return nil
}

// AdminReportWin resolves any active desk naming either participant as
// winner. It follows the identical close path as a player report and
// only skips the reporter-must-participate check.
func (c *Coordinator) AdminReportWin(adminID string, deskNum int, winnerSessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isAdminLocked(adminID) {
		monitoring.TrackOperation("admin_report_win", "rejected")
		return status.ErrUnauthorized
	}

	if err := c.closeDeskLocked(deskNum, winnerSessionID, models.CloseAdmin); err != nil {
		monitoring.TrackOperation("admin_report_win", "rejected")
		return err
	}
	monitoring.TrackOperation("admin_report_win", "ok")
	return nil
}

// closeDeskLocked marks the desk resolved, removes it from the ledger
// and applies the result to both histories in the same critical
// section. A desk number can be closed exactly once.
func (c *Coordinator) closeDeskLocked(deskNum int, winnerSessionID string, reason models.CloseReason) error {
	if _, done := c.resolvedDesks[deskNum]; done {
		return status.ErrAlreadyResolved
	}
	desk, ok := c.desks[deskNum]
	if !ok {
		return status.ErrDeskNotFound
	}
	if !desk.HasPlayer(winnerSessionID) {
		return status.ErrNotParticipant
	}

	winner := desk.Player1
	if desk.Player2.SessionID == winnerSessionID {
		winner = desk.Player2
	}
	loser, _ := desk.Opponent(winnerSessionID)

	desk.Status = models.DeskStatusResolved
	delete(c.desks, deskNum)
	delete(c.deskBySession, desk.Player1.SessionID)
	delete(c.deskBySession, desk.Player2.SessionID)
	c.resolvedDesks[deskNum] = struct{}{}

	// The desk snapshot carries the names, so a disconnected side still
	// resolves; only connected sessions collect history entries.
	if session, ok := c.sessions[winner.SessionID]; ok {
		session.Wins++
		session.History = append(session.History, models.HistoryEntry{
			Opponent: loser.Name,
			Result:   models.ResultWin,
		})
	}
	if session, ok := c.sessions[loser.SessionID]; ok {
		session.History = append(session.History, models.HistoryEntry{
			Opponent: winner.Name,
			Result:   models.ResultLoss,
		})
	}

	closed := map[string]any{
		"type":              "desk_closed",
		"desk_num":          deskNum,
		"winner_session_id": winner.SessionID,
		"winner_name":       winner.Name,
		"reason":            string(reason),
	}
	c.publisher.Publish(realtime.SessionChannel(desk.Player1.SessionID), closed)
	c.publisher.Publish(realtime.SessionChannel(desk.Player2.SessionID), closed)
	for _, channel := range c.adminChannelsLocked() {
		c.publisher.Publish(channel, closed)
	}

	monitoring.SetActiveDesks(len(c.desks))
	monitoring.TrackDeskResolution(string(reason))
	slog.Info("desk resolved",
		"desk_num", deskNum,
		"winner", winner.Name,
		"reason", string(reason),
	)
	return nil
}

// DeskList returns a snapshot of every active desk, ordered by number.
func (c *Coordinator) DeskList(adminID string) ([]models.Desk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isAdminLocked(adminID) {
		return nil, status.ErrUnauthorized
	}
	return c.deskSnapshotLocked(), nil
}

func (c *Coordinator) deskSnapshotLocked() []models.Desk {
	desks := make([]models.Desk, 0, len(c.desks))
	for _, desk := range c.desks {
		desks = append(desks, *desk)
	}
	sort.Slice(desks, func(i, j int) bool { return desks[i].Num < desks[j].Num })
	return desks
}

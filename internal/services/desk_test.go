package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/status"
	"tournament-desk/models"
)

func pairUp(t *testing.T, c *Coordinator, a, b *models.UserSession) {
	t.Helper()
	require.NoError(t, c.FindOpponent(a.ID))
	require.NoError(t, c.FindOpponent(b.ID))
}

func TestReportWin_AppliesResultToBothHistories(t *testing.T) {
	c, pub := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	pairUp(t, c, a, b)

	require.NoError(t, c.ReportWin(a.ID))

	winnerHistory, err := c.History(a.ID)
	require.NoError(t, err)
	require.Len(t, winnerHistory, 1)
	assert.Equal(t, models.HistoryEntry{Opponent: "bob", Result: models.ResultWin}, winnerHistory[0])

	loserHistory, err := c.History(b.ID)
	require.NoError(t, err)
	require.Len(t, loserHistory, 1)
	assert.Equal(t, models.HistoryEntry{Opponent: "alice", Result: models.ResultLoss}, loserHistory[0])

	closed := pub.ofType("desk_closed")
	require.Len(t, closed, 2) // one per player channel, no admins connected
	for _, event := range closed {
		assert.Equal(t, 1, event.Message["desk_num"])
		assert.Equal(t, a.ID, event.Message["winner_session_id"])
		assert.Equal(t, "reported", event.Message["reason"])
	}
}

func TestReportWin_SecondReportAlreadyResolved(t *testing.T) {
	c, _ := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	pairUp(t, c, a, b)

	require.NoError(t, c.ReportWin(a.ID))
	assert.ErrorIs(t, c.ReportWin(b.ID), status.ErrAlreadyResolved)
	assert.ErrorIs(t, c.ReportWin(a.ID), status.ErrAlreadyResolved)

	// The failed reports left no trace in either history.
	winnerHistory, err := c.History(a.ID)
	require.NoError(t, err)
	assert.Len(t, winnerHistory, 1)
	loserHistory, err := c.History(b.ID)
	require.NoError(t, err)
	assert.Len(t, loserHistory, 1)
}

func TestReportWin_NotSeated(t *testing.T) {
	c, _ := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	assert.ErrorIs(t, c.ReportWin(a.ID), status.ErrDeskNotFound)
	assert.ErrorIs(t, c.ReportWin("NOPE"), status.ErrUnauthorized)
}

func TestDisconnect_ForfeitsToRemainingPlayer(t *testing.T) {
	c, pub := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	pairUp(t, c, a, b)

	c.Disconnect(b.ID)

	closedForA := 0
	for _, event := range pub.onChannel(realtime.SessionChannel(a.ID)) {
		if event.Message["type"] == "desk_closed" {
			closedForA++
			assert.Equal(t, a.ID, event.Message["winner_session_id"])
			assert.Equal(t, "forfeit", event.Message["reason"])
		}
	}
	assert.Equal(t, 1, closedForA)

	history, err := c.History(a.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryEntry{Opponent: "bob", Result: models.ResultWin}, history[0])

	// The leaver's session is gone and collected no loss entry.
	_, err = c.History(b.ID)
	assert.ErrorIs(t, err, status.ErrUnauthorized)
}

func TestDisconnect_DuplicateDeliveryIsIdempotent(t *testing.T) {
	c, pub := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	pairUp(t, c, a, b)

	c.Disconnect(b.ID)
	c.Disconnect(b.ID)

	assert.Len(t, pub.ofType("desk_closed"), 2) // the two player channels, once each

	history, err := c.History(a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDisconnect_WhileQueuedLeavesQueueClean(t *testing.T) {
	c, pub := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	require.NoError(t, c.FindOpponent(a.ID))
	c.Disconnect(a.ID)

	b := mustLogin(t, c, "bob")
	d := mustLogin(t, c, "carol")
	pairUp(t, c, b, d)

	// The disconnected session never got matched.
	assert.Empty(t, pub.onChannel(realtime.SessionChannel(a.ID)))
	assert.Len(t, pub.ofType("match_found"), 2)
}

func TestAdminReportWin_BypassesReporterCheck(t *testing.T) {
	c, _ := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	pairUp(t, c, a, b)

	adminID, err := c.AdminLogin(testAdminSecret)
	require.NoError(t, err)

	// Naming player2 as winner works the same as player1.
	require.NoError(t, c.AdminReportWin(adminID, 1, b.ID))

	history, err := c.History(b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ResultWin, history[0].Result)

	desks, err := c.DeskList(adminID)
	require.NoError(t, err)
	assert.Empty(t, desks)
}

func TestAdminReportWin_Errors(t *testing.T) {
	c, _ := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	stranger := mustLogin(t, c, "mallory")
	pairUp(t, c, a, b)

	adminID, err := c.AdminLogin(testAdminSecret)
	require.NoError(t, err)

	assert.ErrorIs(t, c.AdminReportWin("NOPE", 1, a.ID), status.ErrUnauthorized)
	assert.ErrorIs(t, c.AdminReportWin(adminID, 99, a.ID), status.ErrDeskNotFound)
	assert.ErrorIs(t, c.AdminReportWin(adminID, 1, stranger.ID), status.ErrNotParticipant)

	require.NoError(t, c.AdminReportWin(adminID, 1, a.ID))
	assert.ErrorIs(t, c.AdminReportWin(adminID, 1, a.ID), status.ErrAlreadyResolved)
}

func TestDeskNumbers_MonotonicNeverReused(t *testing.T) {
	c, pub := newTestCoordinator()

	a := mustLogin(t, c, "alice")
	b := mustLogin(t, c, "bob")
	pairUp(t, c, a, b)
	require.NoError(t, c.ReportWin(a.ID))

	pairUp(t, c, a, b)

	nums := make([]int, 0, 2)
	for _, event := range pub.onChannel(realtime.SessionChannel(a.ID)) {
		if event.Message["type"] == "match_found" {
			nums = append(nums, event.Message["desk_num"].(int))
		}
	}
	assert.Equal(t, []int{1, 2}, nums)
}

func TestDeskList_RequiresAdmin(t *testing.T) {
	c, _ := newTestCoordinator()

	_, err := c.DeskList("NOPE")
	assert.ErrorIs(t, err, status.ErrUnauthorized)
}

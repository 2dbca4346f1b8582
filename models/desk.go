package models

import (
	"time"
)

type DeskStatus string

const (
	DeskStatusActive   DeskStatus = "active"
	DeskStatusResolved DeskStatus = "resolved"
)

// CloseReason says how a desk got resolved.
type CloseReason string

const (
	CloseReported CloseReason = "reported" // winner reported the result themselves
	CloseForfeit  CloseReason = "forfeit"  // opponent disconnected mid-match
	CloseAdmin    CloseReason = "admin"    // an admin forced the result
)

// DeskPlayer is a snapshot of a participant taken when the desk opens.
// It is a copy, not a reference: the desk must survive the underlying
// session disconnecting so the forfeit path can still resolve it.
type DeskPlayer struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

// Desk is one match between two players, identified by a number that is
// never reused for the process lifetime.
type Desk struct {
	Num      int        `json:"desk_num"`
	Player1  DeskPlayer `json:"player1"`
	Player2  DeskPlayer `json:"player2"`
	Status   DeskStatus `json:"status"`
	OpenedAt time.Time  `json:"opened_at"`
}

// HasPlayer reports whether the session is seated at this desk.
func (d *Desk) HasPlayer(sessionID string) bool {
	return d.Player1.SessionID == sessionID || d.Player2.SessionID == sessionID
}

// Opponent returns the other seat relative to sessionID.
func (d *Desk) Opponent(sessionID string) (DeskPlayer, bool) {
	switch sessionID {
	case d.Player1.SessionID:
		return d.Player2, true
	case d.Player2.SessionID:
		return d.Player1, true
	}
	return DeskPlayer{}, false
}

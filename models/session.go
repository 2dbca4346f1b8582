package models

import (
	"time"
)

const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// HistoryEntry is one finished match from a player's point of view.
type HistoryEntry struct {
	Opponent string `json:"opponent"`
	Result   string `json:"result"` // win, loss
}

// UserSession is one connected participant. It lives exactly as long as
// the connection: created on login, destroyed on logout or disconnect.
type UserSession struct {
	ID         string         `json:"session_id"`
	Name       string         `json:"name"`
	Wins       int            `json:"wins"`
	History    []HistoryEntry `json:"history"` // append-only, oldest first
	LoggedInAt time.Time      `json:"logged_in_at"`
}

package models

import (
	"time"
)

// QueueEntry is a session waiting for an opponent. JoinedAt is the
// FIFO tie-breaker: oldest waiters are matched first.
type QueueEntry struct {
	SessionID string    `json:"session_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

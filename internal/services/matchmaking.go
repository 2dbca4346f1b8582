package services

import (
	"log/slog"
	"time"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/status"
	"tournament-desk/models"
	"tournament-desk/monitoring"
)

// FindOpponent puts the session into the matchmaking queue and runs the
// pairing pass. A session can hold at most one queue entry and cannot
// queue while seated at a desk.
func (c *Coordinator) FindOpponent(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[sessionID]; !ok {
		monitoring.TrackOperation("find_opponent", "rejected")
		return status.ErrUnauthorized
	}
	if _, ok := c.queued[sessionID]; ok {
		monitoring.TrackOperation("find_opponent", "rejected")
		return status.ErrAlreadyQueued
	}
	if _, ok := c.deskBySession[sessionID]; ok {
		monitoring.TrackOperation("find_opponent", "rejected")
		return status.ErrAlreadyInMatch
	}

	c.queue = append(c.queue, models.QueueEntry{
		SessionID: sessionID,
		JoinedAt:  time.Now(),
	})
	c.queued[sessionID] = struct{}{}
	monitoring.TrackOperation("find_opponent", "ok")
	slog.Info("session queued", "session_id", sessionID, "queue_length", len(c.queue))

	c.matchLocked()
	return nil
}

// matchLocked pairs the two oldest waiters until fewer than two remain.
// Pairing is all-or-nothing: if a popped entry's session vanished, the
// survivor goes back to the FRONT of the queue so it keeps its wait
// priority, and the pass continues.
func (c *Coordinator) matchLocked() {
	for len(c.queue) >= 2 {
		first, second := c.queue[0], c.queue[1]
		c.queue = c.queue[2:]
		delete(c.queued, first.SessionID)
		delete(c.queued, second.SessionID)

		a, aliveA := c.sessions[first.SessionID]
		b, aliveB := c.sessions[second.SessionID]
		switch {
		case aliveA && aliveB:
			c.openDeskLocked(a, b)
		case aliveA:
			c.requeueFrontLocked(first)
		case aliveB:
			c.requeueFrontLocked(second)
		}
	}
	monitoring.SetQueueLength(len(c.queue))
}

func (c *Coordinator) requeueFrontLocked(entry models.QueueEntry) {
	c.queue = append([]models.QueueEntry{entry}, c.queue...)
	c.queued[entry.SessionID] = struct{}{}
}

// CancelSearch removes the session's queue entry. Cancelling when no
// entry exists is not an error: the opponent may have been found a
// moment earlier and that race must resolve cleanly.
func (c *Coordinator) CancelSearch(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[sessionID]; !ok {
		monitoring.TrackOperation("cancel_search", "rejected")
		return status.ErrUnauthorized
	}
	if _, ok := c.queued[sessionID]; !ok {
		monitoring.TrackOperation("cancel_search", "noop")
		return nil
	}

	c.removeQueueEntryLocked(sessionID)
	monitoring.SetQueueLength(len(c.queue))
	monitoring.TrackOperation("cancel_search", "ok")
	slog.Info("session left queue", "session_id", sessionID)

	c.publisher.Publish(realtime.SessionChannel(sessionID), map[string]any{
		"type": "queue_cancelled",
	})
	return nil
}

func (c *Coordinator) removeQueueEntryLocked(sessionID string) {
	delete(c.queued, sessionID)
	for i, entry := range c.queue {
		if entry.SessionID == sessionID {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

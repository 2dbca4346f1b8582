package services

import (
	"crypto/subtle"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"tournament-desk/internal/realtime"
	"tournament-desk/internal/status"
	"tournament-desk/models"
	"tournament-desk/monitoring"
	"tournament-desk/utils"
)

// Coordinator owns all live tournament state: the session registry, the
// matchmaking queue, the desk ledger and the admin set. Every mutation
// runs as a short critical section under one mutex, so no operation can
// observe another one half-applied. Outbound events are published while
// the mutation is still being applied, which keeps fan-out in mutation
// order; the publisher itself must not block.
type Coordinator struct {
	publisher   realtime.Publisher
	adminSecret string

	mu            sync.Mutex
	sessions      map[string]*models.UserSession
	admins        map[string]struct{}
	queue         []models.QueueEntry
	queued        map[string]struct{}
	desks         map[int]*models.Desk
	deskBySession map[string]int
	lastDesk      map[string]int // most recent desk a session sat at
	resolvedDesks map[int]struct{}
	nextDeskNum   int
}

func NewCoordinator(publisher realtime.Publisher, adminSecret string) *Coordinator {
	return &Coordinator{
		publisher:     publisher,
		adminSecret:   adminSecret,
		sessions:      make(map[string]*models.UserSession),
		admins:        make(map[string]struct{}),
		queued:        make(map[string]struct{}),
		desks:         make(map[int]*models.Desk),
		deskBySession: make(map[string]int),
		lastDesk:      make(map[string]int),
		resolvedDesks: make(map[int]struct{}),
		// Desk numbers are a monotonic counter, never reused for the
		// process lifetime.
		nextDeskNum: 1,
	}
}

// Login creates a session for a display name. When prevSessionID names
// an existing session the old one is torn down first, so a re-login on
// the same connection replaces rather than duplicates.
func (c *Coordinator) Login(name, prevSessionID string) (*models.UserSession, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		monitoring.TrackOperation("login", "rejected")
		return nil, status.ErrInvalidName
	}

	id, err := utils.GenerateCode(16)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prevSessionID != "" {
		c.destroySessionLocked(prevSessionID)
	}

	session := &models.UserSession{
		ID:         id,
		Name:       trimmed,
		History:    []models.HistoryEntry{},
		LoggedInAt: time.Now(),
	}
	c.sessions[id] = session

	monitoring.SetSessionsOnline(len(c.sessions))
	monitoring.TrackOperation("login", "ok")
	slog.Info("session logged in", "session_id", id, "name", trimmed)

	snapshot := *session
	return &snapshot, nil
}

// Logout destroys the session. Unknown ids are a no-op.
func (c *Coordinator) Logout(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroySessionLocked(sessionID)
	monitoring.TrackOperation("logout", "ok")
}

// Disconnect is the transport-driven twin of Logout, fed by presence
// events. It must stay idempotent: the transport may deliver the same
// leave twice.
func (c *Coordinator) Disconnect(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroySessionLocked(sessionID)
}

// destroySessionLocked removes the session together with its queue
// entry and, if it was mid-match, forfeits the desk to the remaining
// player. The session is deleted before the desk closes so the leaver
// collects no loss entry.
func (c *Coordinator) destroySessionLocked(sessionID string) {
	session, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	delete(c.sessions, sessionID)

	if _, waiting := c.queued[sessionID]; waiting {
		c.removeQueueEntryLocked(sessionID)
		monitoring.SetQueueLength(len(c.queue))
	}

	if deskNum, seated := c.deskBySession[sessionID]; seated {
		if desk, ok := c.desks[deskNum]; ok {
			if remaining, ok := desk.Opponent(sessionID); ok {
				if err := c.closeDeskLocked(deskNum, remaining.SessionID, models.CloseForfeit); err != nil {
					slog.Warn("forfeit close failed", "desk_num", deskNum, "error", err)
				}
			}
		}
	}

	delete(c.lastDesk, sessionID)
	monitoring.SetSessionsOnline(len(c.sessions))
	slog.Info("session destroyed", "session_id", sessionID, "name", session.Name)
}

// AdminLogin grants an admin connection when the shared secret matches.
// The compare is constant time and the failure reveals nothing about
// which part of the secret was wrong. A fresh admin immediately gets a
// desk list snapshot on its channel.
func (c *Coordinator) AdminLogin(password string) (string, error) {
	if c.adminSecret == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(c.adminSecret)) != 1 {
		monitoring.TrackOperation("admin_login", "rejected")
		return "", status.ErrUnauthorized
	}

	id, err := utils.GenerateCode(16)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.admins[id] = struct{}{}
	monitoring.SetAdminsOnline(len(c.admins))
	monitoring.TrackOperation("admin_login", "ok")
	slog.Info("admin logged in", "admin_id", id)

	c.publisher.Publish(realtime.AdminChannel(id), map[string]any{
		"type":  "desk_list",
		"desks": c.deskSnapshotLocked(),
	})
	return id, nil
}

// AdminLogout drops the admin connection. Unknown ids are a no-op.
func (c *Coordinator) AdminLogout(adminID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.admins, adminID)
	monitoring.SetAdminsOnline(len(c.admins))
}

// History returns the session's match history, oldest entry first.
func (c *Coordinator) History(sessionID string) ([]models.HistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, status.ErrUnauthorized
	}
	history := make([]models.HistoryEntry, len(session.History))
	copy(history, session.History)
	return history, nil
}

// BroadcastChannels lists every channel a global event should reach:
// the lobby, each session and each admin. The list is computed at call
// time from current membership, never cached, so disconnected listeners
// fall off on their own.
func (c *Coordinator) BroadcastChannels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels := make([]string, 0, len(c.sessions)+len(c.admins)+1)
	channels = append(channels, realtime.LobbyChannel)
	for id := range c.sessions {
		channels = append(channels, realtime.SessionChannel(id))
	}
	channels = append(channels, c.adminChannelsLocked()...)
	return channels
}

// IsAdmin reports whether the id belongs to an authorized admin
// connection.
func (c *Coordinator) IsAdmin(adminID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isAdminLocked(adminID)
}

func (c *Coordinator) isAdminLocked(adminID string) bool {
	_, ok := c.admins[adminID]
	return ok
}

func (c *Coordinator) adminChannelsLocked() []string {
	channels := make([]string, 0, len(c.admins))
	for id := range c.admins {
		channels = append(channels, realtime.AdminChannel(id))
	}
	sort.Strings(channels)
	return channels
}

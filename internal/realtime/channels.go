package realtime

import "strings"

// Channel layout. Every session and every admin gets a private channel;
// the lobby channel carries events addressed to everyone at once.
const (
	LobbyChannel         = "desk.lobby"
	sessionChannelPrefix = "desk.user."
	adminChannelPrefix   = "desk.admin."

	// SessionWildcard is what the server subscribes to (with presence)
	// so it observes every session channel's join/leave/timeout events.
	SessionWildcard = "desk.user.*"
)

func SessionChannel(sessionID string) string {
	return sessionChannelPrefix + sessionID
}

func AdminChannel(adminID string) string {
	return adminChannelPrefix + adminID
}

// SessionIDFromChannel extracts the session id from a session channel
// name, e.g. "desk.user.AB12" -> "AB12".
func SessionIDFromChannel(channel string) (string, bool) {
	id := strings.TrimPrefix(channel, sessionChannelPrefix)
	if id == channel || id == "" || id == "*" {
		return "", false
	}
	return id, true
}

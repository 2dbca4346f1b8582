package realtime

import (
	"context"
	"log/slog"

	pubnub "github.com/pubnub/go"
)

// Disconnecter is the slice of the coordinator the presence listener
// needs: it is invoked when a session channel loses its subscriber.
type Disconnecter interface {
	Disconnect(sessionID string)
}

// ListenPresence subscribes to the session channel namespace with
// presence enabled and turns leave/timeout events into coordinator
// disconnects. Duplicate deliveries for the same session are harmless:
// Disconnect on an unknown id is a no-op.
func ListenPresence(ctx context.Context, pn *pubnub.PubNub, coord Disconnecter) {
	listener := pubnub.NewListener()

	go func() {
		for {
			select {
			case <-ctx.Done():
				pn.Unsubscribe().Channels([]string{SessionWildcard}).Execute()
				return
			case presence := <-listener.Presence:
				if presence == nil {
					continue
				}
				switch presence.Event {
				case "leave", "timeout":
					sessionID, ok := SessionIDFromChannel(presence.Channel)
					if !ok {
						continue
					}
					slog.Info("session channel went away",
						"session_id", sessionID,
						"event", presence.Event,
					)
					coord.Disconnect(sessionID)
				}
			case st := <-listener.Status:
				if st != nil && st.Error {
					slog.Warn("pubnub subscribe status error", "category", st.Category)
				}
			case <-listener.Message:
				// Inbound events arrive over HTTP; nothing to do here.
			}
		}
	}()

	pn.AddListener(listener)
	pn.Subscribe().
		Channels([]string{SessionWildcard}).
		WithPresence(true).
		Execute()
}

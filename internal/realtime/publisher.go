package realtime

import (
	"log/slog"

	pubnub "github.com/pubnub/go"
)

// Publisher fans an event out to one channel. Implementations must be
// fire-and-forget: callers publish from inside critical sections and
// must not block on transport I/O.
type Publisher interface {
	Publish(channel string, message map[string]any)
}

type outbound struct {
	channel string
	message map[string]any
}

// PubNubPublisher delivers events over PubNub. Publishes are queued and
// drained by a single worker so per-channel ordering follows the order
// the mutating operations were applied.
type PubNubPublisher struct {
	pn   *pubnub.PubNub
	ch   chan outbound
	done chan struct{}
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	p := &PubNubPublisher{
		pn:   pn,
		ch:   make(chan outbound, 1024),
		done: make(chan struct{}),
	}
	go p.drain()
	return p
}

func (p *PubNubPublisher) Publish(channel string, message map[string]any) {
	select {
	case p.ch <- outbound{channel: channel, message: message}:
	default:
		// Transport is a best-effort notification path; shed load
		// rather than stall the coordinator.
		slog.Warn("publish queue full, dropping event", "channel", channel)
	}
}

func (p *PubNubPublisher) drain() {
	defer close(p.done)
	for out := range p.ch {
		_, _, err := p.pn.Publish().
			Channel(out.channel).
			Message(out.message).
			Execute()
		if err != nil {
			slog.Warn("pubnub publish failed", "channel", out.channel, "error", err)
		}
	}
}

// Close stops the worker after the queued events are flushed.
func (p *PubNubPublisher) Close() {
	close(p.ch)
	<-p.done
}

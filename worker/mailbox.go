package worker

import "github.com/battlesnakeio/snake/rules"

// Mailbox carries direction changes from an input source to the tick loop.
// It holds at most one pending direction; posting replaces whatever has not
// been picked up yet, so the latest request before a tick wins.
type Mailbox struct {
	c chan rules.Direction
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{c: make(chan rules.Direction, 1)}
}

// Post stores d as the pending direction. It never blocks.
func (m *Mailbox) Post(d rules.Direction) {
	for {
		select {
		case m.c <- d:
			return
		default:
		}
		// Full, throw away the stale value and try again.
		select {
		case <-m.c:
		default:
		}
	}
}

// Drain takes the pending direction, if any. It never blocks.
func (m *Mailbox) Drain() (rules.Direction, bool) {
	select {
	case d := <-m.c:
		return d, true
	default:
		return "", false
	}
}

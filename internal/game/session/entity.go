// Package session tracks connected duel participants, their pending match
// events and which of them are currently committed to a match.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/brawl/internal/game/combat"
)

// DefaultInboxSize is the event buffer of an Inbox created with size <= 0.
const DefaultInboxSize = 256

// Inbox buffers match events for one participant until the front end drains
// them. It implements combat.Observer.
type Inbox struct {
	uid    string
	events chan combat.Event
	mu     sync.Mutex
	closed bool
}

// NewInbox creates an Inbox for the given participant.
//
// Precondition: uid must be non-empty.
// Postcondition: Returns an Inbox with an open events channel.
func NewInbox(uid string, bufferSize int) *Inbox {
	if bufferSize <= 0 {
		bufferSize = DefaultInboxSize
	}
	return &Inbox{
		uid:    uid,
		events: make(chan combat.Event, bufferSize),
	}
}

// UID returns the participant identity.
func (e *Inbox) UID() string {
	return e.uid
}

// Notify enqueues ev. It fails when the inbox is closed or full; the engine
// turns that failure into a delivery forfeit.
func (e *Inbox) Notify(_ context.Context, _ combat.Participant, ev combat.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("inbox %s is closed", e.uid)
	}
	select {
	case e.events <- ev:
		return nil
	default:
		return fmt.Errorf("inbox %s event buffer full", e.uid)
	}
}

// Drain removes and returns every buffered event without blocking.
func (e *Inbox) Drain() []combat.Event {
	var out []combat.Event
	for {
		select {
		case ev, ok := <-e.events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Close marks the inbox closed and closes the events channel.
//
// Postcondition: Further Notify calls return an error. Buffered events can
// still be drained.
func (e *Inbox) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.events)
	}
	return nil
}

// IsClosed reports whether the inbox has been closed.
func (e *Inbox) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

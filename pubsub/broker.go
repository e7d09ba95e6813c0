// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pubsub

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/narrowly/models"
)

// subscriberBuffer bounds how far a viewer may lag before updates are
// dropped for it. Durable state is the source of truth; a lagging viewer
// reconverges on its next snapshot.
const subscriberBuffer = 8

type subscriber struct {
	ch   chan models.SessionView
	once sync.Once
}

// Broker is a per-process registry of live session subscribers. It is an
// acceleration layer over the durable session state, never the system of
// record: delivery is best-effort and scoped to one running process.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

// NewBroker returns an empty registry. The process bootstrap owns its
// lifecycle; Close shuts it down.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a viewer for a session and returns the update channel
// plus a cancel function. Cancel is idempotent, closes the channel, and drops
// the session's registry entry once its subscriber set empties.
func (b *Broker) Subscribe(sessionID string) (<-chan models.SessionView, func()) {
	sub := &subscriber{ch: make(chan models.SessionView, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[sessionID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(b.subs, sessionID)
				}
			}
			// Closed under the lock so Publish can never send on a closed
			// channel.
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish pushes a committed state to every current subscriber of the
// session. A subscriber whose buffer is full is skipped; one slow or broken
// viewer never affects the others or the mutation that published.
func (b *Broker) Publish(sessionID string, view models.SessionView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subs[sessionID] {
		select {
		case sub.ch <- view:
		default:
			slog.Warn("dropping session update for slow subscriber", "session_id", sessionID)
		}
	}
}

// Close shuts the registry down: every subscriber channel is closed and
// further subscriptions get an already-closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*subscriber
	for _, set := range b.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	b.subs = make(map[string]map[*subscriber]struct{})
	b.mu.Unlock()

	// Once closed is set no Publish can send, so closing outside the lock is
	// safe and avoids re-entering it through a racing cancel.
	for _, sub := range all {
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Package events broadcasts payload-free "something changed" signals.
//
// Observers re-read the latest snapshot from the owning store when signalled.
// Delivery never blocks the publisher: a subscriber that already has a pending
// signal simply keeps it, since one pending signal means "re-read".
package events

import (
	"log/slog"
	"sync"
)

// Notifier fans a change signal out to subscribers
type Notifier struct {
	mu     sync.RWMutex
	subs   []chan struct{}
	name   string
	logger *slog.Logger
	closed bool
}

// NewNotifier creates a notifier; name appears in debug logs
func NewNotifier(name string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{name: name, logger: logger}
}

// Notify signals every subscriber
func (n *Notifier) Notify() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}

	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
			// a signal is already pending for this subscriber
		}
	}
	n.logger.Debug("change notified", "topic", n.name, "subscribers", len(n.subs))
}

// Subscribe returns a channel that receives a value after each change.
// Bursts of changes may coalesce into a single receive.
func (n *Notifier) Subscribe() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan struct{}, 1)
	if n.closed {
		close(ch)
		return ch
	}
	n.subs = append(n.subs, ch)
	return ch
}

// Unsubscribe removes and closes a subscription channel
func (n *Notifier) Unsubscribe(ch <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, sub := range n.subs {
		if sub == ch {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes every subscription; later Notify calls are ignored
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for _, ch := range n.subs {
		close(ch)
	}
	n.subs = nil
}

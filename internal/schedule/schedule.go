// Package schedule provides cancellable timed callbacks.
//
// Every task is returned as a Handle so its owner can stop it on teardown. Stop is
// best-effort against a callback that is already running; owners guard their callbacks
// with their own generation checks.
package schedule

import (
	"sync"
	"time"
)

// Handle is a scheduled task
type Handle interface {
	// Stop cancels future runs. Safe to call more than once.
	Stop()
}

// Scheduler runs callbacks later
type Scheduler interface {
	Now() time.Time
	// After runs f once after d
	After(d time.Duration, f func()) Handle
	// Every runs f every d until stopped. The first run is after d.
	Every(d time.Duration, f func()) Handle
}

// Clock is the wall-clock Scheduler
type Clock struct{}

// New returns the wall-clock scheduler
func New() Clock {
	return Clock{}
}

// Now returns the current time
func (Clock) Now() time.Time {
	return time.Now()
}

// After runs f on its own goroutine once d has elapsed
func (Clock) After(d time.Duration, f func()) Handle {
	return timerHandle{t: time.AfterFunc(d, f)}
}

// Every runs f on a dedicated goroutine on each tick
func (Clock) Every(d time.Duration, f func()) Handle {
	h := &tickerHandle{done: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				// Re-check so a Stop racing with a tick doesn't run f
				select {
				case <-h.done:
					return
				default:
				}
				f()
			}
		}
	}()
	return h
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Stop() {
	h.t.Stop()
}

type tickerHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Stop stops h if it is non-nil
func Stop(h Handle) {
	if h != nil {
		h.Stop()
	}
}

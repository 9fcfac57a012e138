// Package simulated is an in-process media backend. It renders nothing and
// advances a virtual playhead on a scheduler, which makes the engine usable
// without mpv and deterministic under a manual clock.
package simulated

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/marquee-tv/marquee/internal/player"
	"github.com/marquee-tv/marquee/internal/schedule"
)

var (
	// ErrNotLoaded is returned by controls used before metadata is available
	ErrNotLoaded = errors.New("simulated: no media loaded")
	// ErrPlayBlocked is returned by a Play rejected like a blocked autoplay
	ErrPlayBlocked = errors.New("simulated: play blocked")
)

// Backend implements player.Media with a virtual playhead
type Backend struct {
	mu sync.Mutex

	sched     schedule.Scheduler
	duration  time.Duration
	tick      time.Duration
	loadDelay time.Duration
	blockPlay int // number of Play calls still to reject
	logger    *slog.Logger

	gen        uint64
	loaded     bool
	playing    bool
	position   time.Duration
	speed      float64
	volume     float64
	muted      bool
	subtitle   string
	fullscreen bool

	ticker   schedule.Handle
	loadTask schedule.Handle
}

// Option configures a Backend
type Option func(*Backend)

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s schedule.Scheduler) Option {
	return func(b *Backend) { b.sched = s }
}

// WithTick sets how often the playhead advances
func WithTick(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.tick = d
		}
	}
}

// WithLoadDelay sets how long metadata takes to arrive
func WithLoadDelay(d time.Duration) Option {
	return func(b *Backend) { b.loadDelay = max(d, 0) }
}

// WithBlockedPlays makes the next n Play calls fail
func WithBlockedPlays(n int) Option {
	return func(b *Backend) { b.blockPlay = n }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a backend whose media lasts duration
func New(duration time.Duration, opts ...Option) *Backend {
	b := &Backend{
		sched:     schedule.New(),
		duration:  max(duration, 0),
		tick:      250 * time.Millisecond,
		loadDelay: 300 * time.Millisecond,
		speed:     1,
		volume:    1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load resets the playhead and reports metadata after the load delay
func (b *Backend) Load(ctx context.Context, url string, events player.MediaEvents) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	b.gen++
	gen := b.gen
	b.position = 0
	b.playing = false
	b.speed = 1

	b.loadTask = b.sched.After(b.loadDelay, func() { b.finishLoad(gen, events) })
	b.ticker = b.sched.Every(b.tick, func() { b.advance(gen, events) })

	b.logger.Debug("simulated media loading", "url", url, "duration", b.duration)
	return nil
}

func (b *Backend) finishLoad(gen uint64, events player.MediaEvents) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.loaded = true
	duration := b.duration
	b.mu.Unlock()

	events.LoadedMetadata(duration)
}

func (b *Backend) advance(gen uint64, events player.MediaEvents) {
	b.mu.Lock()
	if gen != b.gen || !b.loaded || !b.playing {
		b.mu.Unlock()
		return
	}
	step := time.Duration(float64(b.tick) * b.speed)
	b.position = min(b.position+step, b.duration)
	ended := b.position >= b.duration
	if ended {
		b.playing = false
	}
	position := b.position
	b.mu.Unlock()

	events.TimeUpdate(position)
	if ended {
		events.Ended()
	}
}

// Play starts the playhead
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		return ErrNotLoaded
	}
	if b.blockPlay > 0 {
		b.blockPlay--
		return ErrPlayBlocked
	}
	b.playing = true
	return nil
}

// Pause stops the playhead
func (b *Backend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		return ErrNotLoaded
	}
	b.playing = false
	return nil
}

// Seek moves the playhead, clamped to the media
func (b *Backend) Seek(position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		return ErrNotLoaded
	}
	b.position = min(max(position, 0), b.duration)
	return nil
}

// SetVolume records the volume
func (b *Backend) SetVolume(volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = volume
	return nil
}

// SetMuted records the muted flag
func (b *Backend) SetMuted(muted bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.muted = muted
	return nil
}

// SetSpeed scales how far each tick advances
func (b *Backend) SetSpeed(speed float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = speed
	return nil
}

// SetSubtitle records the subtitle track
func (b *Backend) SetSubtitle(track string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subtitle = track
	return nil
}

// ToggleFullscreen flips the fullscreen flag
func (b *Backend) ToggleFullscreen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fullscreen = !b.fullscreen
	return nil
}

// Unload stops the timers; later events are dropped
func (b *Backend) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.gen++
	return nil
}

func (b *Backend) stopLocked() {
	schedule.Stop(b.ticker)
	schedule.Stop(b.loadTask)
	b.ticker, b.loadTask = nil, nil
	b.loaded = false
	b.playing = false
}

// Position returns the playhead
func (b *Backend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

// Playing reports whether the playhead is moving
func (b *Backend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

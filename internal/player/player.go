// Package player implements the playback engine: one active video session driven
// by user input, media backend events and timers.
package player

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/marquee-tv/marquee/internal/downloads"
	"github.com/marquee-tv/marquee/internal/progress"
)

var (
	// ErrMissingContentID is returned by Open for a reference without an id
	ErrMissingContentID = errors.New("content id is required")
	// ErrMediaUnavailable reports that a session has no playable source
	ErrMediaUnavailable = errors.New("media unavailable")
	// ErrInvalidSpeed is returned for a speed outside Speeds
	ErrInvalidSpeed = errors.New("invalid playback speed")
	// ErrInvalidQuality is returned for a quality outside Qualities
	ErrInvalidQuality = errors.New("invalid quality")
	// ErrInvalidSubtitle is returned for a track outside SubtitleTracks
	ErrInvalidSubtitle = errors.New("invalid subtitle track")
)

// State is the engine's playback state. Exactly one applies at a time.
type State string

const (
	StateClosed      State = "closed"
	StateLoading     State = "loading"
	StatePlaying     State = "playing"
	StatePaused      State = "paused"
	StateBuffering   State = "buffering" // quality switch in flight
	StateEnded       State = "ended"
	StateUnavailable State = "unavailable"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// Ready reports whether metadata is known and the transport controls apply
func (s State) Ready() bool {
	return s == StatePlaying || s == StatePaused || s == StateEnded
}

// Open reports whether a session exists and accepts input
func (s State) Open() bool {
	return s != StateClosed && s != StateUnavailable
}

// Speeds are the selectable playback rates
var Speeds = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// Qualities are the selectable stream qualities
var Qualities = []string{"4K", "1080p", "720p", "480p", "Auto"}

// SubtitleTracks are the selectable subtitle tracks
var SubtitleTracks = []string{"Off", "English", "Spanish", "French", "German", "Japanese"}

// ValidSpeed reports whether s is one of Speeds
func ValidSpeed(s float64) bool { return slices.Contains(Speeds, s) }

// ValidQuality reports whether q is one of Qualities
func ValidQuality(q string) bool { return slices.Contains(Qualities, q) }

// ValidSubtitle reports whether name is one of SubtitleTracks
func ValidSubtitle(name string) bool { return slices.Contains(SubtitleTracks, name) }

// ContentRef identifies what to play
type ContentRef struct {
	ContentID    string
	Title        string
	ThumbnailURL string
	MediaURL     string        // empty means unavailable
	StartAt      time.Duration // resume position, applied once metadata is known
}

// Session is a snapshot of the engine for renderers
type Session struct {
	SessionID    string
	ContentID    string
	Title        string
	ThumbnailURL string
	MediaURL     string

	State       State
	CurrentTime time.Duration
	Duration    time.Duration
	Volume      float64 // 0-1, kept while muted
	Muted       bool
	Speed       float64
	Quality     string
	Subtitle    string
	Fullscreen  bool

	// Quality the in-flight switch will apply
	PendingQuality string

	OverlayVisible bool
	SettingsOpen   bool
	SubtitlesOpen  bool
}

// IsPlaying reports whether media is actually advancing
func (s Session) IsPlaying() bool {
	return s.State == StatePlaying
}

// QualityLocked reports whether the quality control is disabled
func (s Session) QualityLocked() bool {
	return s.State == StateBuffering
}

// Percentage returns how far playback is, 0 while duration is unknown
func (s Session) Percentage() float64 {
	return progress.Percentage(s.CurrentTime, s.Duration)
}

// Defaults are the initial values of every new session
type Defaults struct {
	Volume   float64
	Quality  string
	Subtitle string
}

// ProgressSaver persists progress snapshots. Implementations are best-effort.
type ProgressSaver interface {
	Save(ctx context.Context, r progress.Record)
}

// Downloader accepts download requests. Add reports false for ids already tracked.
type Downloader interface {
	Add(ctx context.Context, req downloads.Request) bool
}

package player

//go:generate mockgen -source=media.go -destination=mocks/mock_media.go -package=mocks

import (
	"context"
	"time"
)

// Media is the backend that actually renders video.
//
// Implementations deliver MediaEvents from their own goroutines and must never
// call them synchronously from a Media method: the engine holds its lock while
// calling into Media.
type Media interface {
	// Load starts loading url and reports progress on events until Unload
	Load(ctx context.Context, url string, events MediaEvents) error
	// Play starts or resumes playback; an error means playback did not start
	Play() error
	Pause() error
	Seek(position time.Duration) error
	SetVolume(volume float64) error // 0-1
	SetMuted(muted bool) error
	SetSpeed(speed float64) error
	SetSubtitle(track string) error
	ToggleFullscreen() error
	// Unload stops playback and releases the media. Events after Unload are ignored.
	Unload() error
}

// MediaEvents receives notifications from a Media backend
type MediaEvents interface {
	// LoadedMetadata reports the media duration once known
	LoadedMetadata(duration time.Duration)
	// TimeUpdate reports the current position
	TimeUpdate(position time.Duration)
	// Ended reports that playback reached the end of the media
	Ended()
	// Stopped reports that the backend quit on its own and can no longer play
	Stopped(err error)
}

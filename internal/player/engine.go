package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/downloads"
	"github.com/marquee-tv/marquee/internal/events"
	"github.com/marquee-tv/marquee/internal/progress"
	"github.com/marquee-tv/marquee/internal/schedule"
)

// Engine owns a single playback session.
//
// Every input (user calls, media events, timer callbacks) is applied under mu in
// arrival order. Timer callbacks and media events carry the generation of the
// session that scheduled them and are dropped once that session is gone.
type Engine struct {
	mu sync.Mutex

	media     Media
	sched     schedule.Scheduler
	saver     ProgressSaver
	downloads Downloader
	config    config.PlayerConfig
	defaults  Defaults
	notifier  *events.Notifier
	logger    *slog.Logger
	onClose   func(Session)

	s       Session
	gen     uint64
	startAt time.Duration
	overlay bool

	// quality switch bookkeeping
	resumeAfterSwitch bool
	switchSeq         uint64
	overlaySeq        uint64

	saveTask    schedule.Handle
	overlayTask schedule.Handle
	qualityTask schedule.Handle
}

// Option configures an Engine
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s schedule.Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithProgressSaver sets where progress snapshots go
func WithProgressSaver(p ProgressSaver) Option {
	return func(e *Engine) { e.saver = p }
}

// WithDownloader sets the target of Download
func WithDownloader(d Downloader) Option {
	return func(e *Engine) { e.downloads = d }
}

// WithDefaults overrides the initial volume, quality and subtitle of new sessions
func WithDefaults(d Defaults) Option {
	return func(e *Engine) { e.defaults = d }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a closed engine on top of media
func NewEngine(media Media, cfg *config.PlayerConfig, opts ...Option) (*Engine, error) {
	if media == nil {
		return nil, fmt.Errorf("media backend cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ProgressInterval <= 0 || cfg.OverlayTimeout <= 0 {
		return nil, fmt.Errorf("progress interval and overlay timeout must be positive")
	}

	e := &Engine{
		media:  media,
		sched:  schedule.New(),
		config: *cfg,
		defaults: Defaults{
			Volume:   1,
			Quality:  cfg.DefaultQuality,
			Subtitle: cfg.DefaultSubtitle,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.defaults.Volume = clamp(e.defaults.Volume, 0, 1)
	if !ValidQuality(e.defaults.Quality) {
		e.defaults.Quality = "1080p"
	}
	if !ValidSubtitle(e.defaults.Subtitle) {
		e.defaults.Subtitle = "English"
	}
	if e.config.SeekStep <= 0 {
		e.config.SeekStep = 10 * time.Second
	}
	if e.config.VolumeStep <= 0 {
		e.config.VolumeStep = 0.1
	}

	e.notifier = events.NewNotifier("player", e.logger)
	e.resetLocked(StateClosed)
	return e, nil
}

// OnClose sets a callback that receives the final snapshot of every session
// that is closed or replaced
func (e *Engine) OnClose(callback func(Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClose = callback
}

// Subscribe returns a channel signalled after every state change
func (e *Engine) Subscribe() <-chan struct{} {
	return e.notifier.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe
func (e *Engine) Unsubscribe(ch <-chan struct{}) {
	e.notifier.Unsubscribe(ch)
}

// Snapshot returns a copy of the current session
func (e *Engine) Snapshot() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Open starts a session for ref, closing any current one.
// A ref without a media URL opens in StateUnavailable. If the backend cannot
// load the media the session also becomes unavailable and the error is returned.
func (e *Engine) Open(ctx context.Context, ref ContentRef) error {
	if ref.ContentID == "" {
		return ErrMissingContentID
	}

	e.mu.Lock()
	final, replaced := e.teardownLocked()
	e.gen++
	gen := e.gen
	e.resetLocked(StateLoading)
	e.s.SessionID = uuid.NewString()
	e.s.ContentID = ref.ContentID
	e.s.Title = ref.Title
	e.s.ThumbnailURL = ref.ThumbnailURL
	e.s.MediaURL = ref.MediaURL
	e.startAt = max(ref.StartAt, 0)

	if ref.MediaURL == "" {
		e.s.State = StateUnavailable
		e.logger.Info("media unavailable", "session_id", e.s.SessionID, "content_id", ref.ContentID)
	} else {
		e.saveTask = e.sched.Every(e.config.ProgressInterval, func() { e.saveTick(gen) })
		e.logger.Info("opening media",
			"session_id", e.s.SessionID,
			"content_id", ref.ContentID,
			"title", ref.Title,
			"start_at", e.startAt)
	}
	state := e.s.State
	callback := e.onClose
	e.mu.Unlock()

	if replaced && callback != nil {
		callback(final)
	}
	e.notifier.Notify()

	if state == StateUnavailable {
		return nil
	}

	if err := e.media.Load(ctx, ref.MediaURL, &sessionEvents{e: e, gen: gen}); err != nil {
		e.mu.Lock()
		if e.gen == gen {
			e.stopTasksLocked()
			e.setStateLocked(StateUnavailable)
		}
		e.mu.Unlock()
		e.notifier.Notify()
		return fmt.Errorf("%w: %w", ErrMediaUnavailable, err)
	}
	return nil
}

// Close tears the session down: timers are cancelled, media is unloaded and every
// field returns to its default. No progress snapshot is written.
func (e *Engine) Close() {
	e.mu.Lock()
	final, closed := e.teardownLocked()
	if closed {
		e.gen++
		e.resetLocked(StateClosed)
	}
	callback := e.onClose
	e.mu.Unlock()

	if !closed {
		return
	}
	e.logger.Debug("session closed", "session_id", final.SessionID, "content_id", final.ContentID)
	e.notifier.Notify()
	if callback != nil {
		callback(final)
	}
}

// TogglePlayPause flips between playing and paused. From StateEnded it replays
// from the start. Other states ignore it.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.s.State {
	case StatePlaying:
		if err := e.media.Pause(); err != nil {
			e.logger.Debug("pause failed", "session_id", e.s.SessionID, "error", err)
			return
		}
		e.setStateLocked(StatePaused)
	case StatePaused:
		e.playLocked()
	case StateEnded:
		if err := e.media.Seek(0); err != nil {
			e.logger.Debug("rewind failed", "session_id", e.s.SessionID, "error", err)
			return
		}
		e.s.CurrentTime = 0
		e.playLocked()
	default:
		return
	}
	e.notifier.Notify()
}

// SeekRelative moves the position by delta, clamped to [0, duration].
// Ignored until the duration is known.
func (e *Engine) SeekRelative(delta time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seekableLocked() {
		return
	}
	e.seekLocked(e.s.CurrentTime + delta)
	e.notifier.Notify()
}

// SeekToFraction moves to f*duration; f is clamped to [0, 1]
func (e *Engine) SeekToFraction(f float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seekableLocked() {
		return
	}
	f = clamp(f, 0, 1)
	e.seekLocked(time.Duration(f * float64(e.s.Duration)))
	e.notifier.Notify()
}

// SetVolume sets the volume clamped to [0, 1] and unmutes
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	e.setVolumeLocked(v)
	e.notifier.Notify()
}

// AdjustVolume changes the volume by delta, clamped, and unmutes
func (e *Engine) AdjustVolume(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	e.setVolumeLocked(e.s.Volume + delta)
	e.notifier.Notify()
}

// ToggleMute flips the muted flag; the stored volume is kept
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	muted := !e.s.Muted
	if err := e.media.SetMuted(muted); err != nil {
		e.logger.Debug("mute failed", "session_id", e.s.SessionID, "error", err)
		return
	}
	e.s.Muted = muted
	e.notifier.Notify()
}

// SetPlaybackSpeed applies one of Speeds immediately
func (e *Engine) SetPlaybackSpeed(speed float64) error {
	if !ValidSpeed(speed) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return nil
	}
	if err := e.media.SetSpeed(speed); err != nil {
		e.logger.Debug("speed change failed", "session_id", e.s.SessionID, "speed", speed, "error", err)
		return nil
	}
	e.s.Speed = speed
	e.notifier.Notify()
	return nil
}

// SetSubtitleTrack selects one of SubtitleTracks and closes the subtitle picker
func (e *Engine) SetSubtitleTrack(name string) error {
	if !ValidSubtitle(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSubtitle, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return nil
	}
	if err := e.media.SetSubtitle(name); err != nil {
		// the track is a preference even when the backend has no such stream
		e.logger.Debug("subtitle change failed", "session_id", e.s.SessionID, "track", name, "error", err)
	}
	e.s.Subtitle = name
	e.s.SubtitlesOpen = false
	e.notifier.Notify()
	return nil
}

// ChangeQuality switches to one of Qualities through a buffering delay.
// While a switch is in flight further requests are ignored. The session returns
// to the state it was in: a paused session stays paused after the switch.
func (e *Engine) ChangeQuality(quality string) error {
	if !ValidQuality(quality) {
		return fmt.Errorf("%w: %q", ErrInvalidQuality, quality)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.s.State
	if state != StatePlaying && state != StatePaused {
		return nil
	}
	if quality == e.s.Quality {
		return nil
	}

	e.s.SettingsOpen = false
	e.s.SubtitlesOpen = false
	e.resumeAfterSwitch = state == StatePlaying
	if state == StatePlaying {
		if err := e.media.Pause(); err != nil {
			e.logger.Debug("pause for quality switch failed", "session_id", e.s.SessionID, "error", err)
		}
	}
	e.s.PendingQuality = quality
	e.setStateLocked(StateBuffering)

	e.switchSeq++
	gen, seq := e.gen, e.switchSeq
	e.qualityTask = e.sched.After(e.config.QualitySwitchDelay, func() { e.finishQualitySwitch(gen, seq) })

	e.logger.Info("switching quality", "session_id", e.s.SessionID, "from", e.s.Quality, "to", quality)
	e.notifier.Notify()
	return nil
}

// ToggleSettings opens or closes the settings picker; opening it closes the subtitle picker
func (e *Engine) ToggleSettings() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	e.s.SettingsOpen = !e.s.SettingsOpen
	if e.s.SettingsOpen {
		e.s.SubtitlesOpen = false
	}
	e.notifier.Notify()
}

// ToggleSubtitles opens or closes the subtitle picker; opening it closes the settings picker
func (e *Engine) ToggleSubtitles() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	e.s.SubtitlesOpen = !e.s.SubtitlesOpen
	if e.s.SubtitlesOpen {
		e.s.SettingsOpen = false
	}
	e.notifier.Notify()
}

// ToggleFullscreen asks the backend to enter or leave fullscreen
func (e *Engine) ToggleFullscreen() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	if err := e.media.ToggleFullscreen(); err != nil {
		e.logger.Debug("fullscreen toggle failed", "session_id", e.s.SessionID, "error", err)
		return
	}
	e.s.Fullscreen = !e.s.Fullscreen
	e.notifier.Notify()
}

// PointerMove shows the overlay and restarts its hide countdown
func (e *Engine) PointerMove() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	e.armOverlayLocked()
	e.notifier.Notify()
}

// armOverlayLocked shows the overlay and restarts the countdown that hides it while playing
func (e *Engine) armOverlayLocked() {
	e.overlay = true
	schedule.Stop(e.overlayTask)
	e.overlaySeq++
	gen, seq := e.gen, e.overlaySeq
	e.overlayTask = e.sched.After(e.config.OverlayTimeout, func() { e.hideOverlay(gen, seq) })
}

// PointerLeave hides the overlay immediately
func (e *Engine) PointerLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.State.Open() {
		return
	}
	schedule.Stop(e.overlayTask)
	e.overlayTask = nil
	e.overlay = false
	e.notifier.Notify()
}

// Download hands the current title to the downloader. It reports whether a new
// job was created; a title already tracked is left untouched.
func (e *Engine) Download(ctx context.Context) bool {
	e.mu.Lock()
	if !e.s.State.Open() || e.s.MediaURL == "" || e.downloads == nil {
		e.mu.Unlock()
		return false
	}
	req := downloads.Request{
		ID:        e.s.ContentID,
		Title:     e.s.Title,
		Thumbnail: e.s.ThumbnailURL,
		Quality:   e.s.Quality,
		MediaURL:  e.s.MediaURL,
	}
	sessionID := e.s.SessionID
	e.mu.Unlock()

	added := e.downloads.Add(ctx, req)
	e.logger.Debug("download requested", "session_id", sessionID, "content_id", req.ID, "added", added)
	return added
}

// sessionEvents binds backend events to the session generation that loaded them
type sessionEvents struct {
	e   *Engine
	gen uint64
}

func (s *sessionEvents) LoadedMetadata(duration time.Duration) { s.e.loadedMetadata(s.gen, duration) }
func (s *sessionEvents) TimeUpdate(position time.Duration)     { s.e.timeUpdate(s.gen, position) }
func (s *sessionEvents) Ended()                                { s.e.ended(s.gen) }
func (s *sessionEvents) Stopped(err error)                     { s.e.stopped(s.gen, err) }

func (e *Engine) loadedMetadata(gen uint64, duration time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return
	}
	e.s.Duration = max(duration, 0)
	if e.s.State != StateLoading {
		return
	}

	if e.startAt > 0 && e.startAt < e.s.Duration {
		if err := e.media.Seek(e.startAt); err != nil {
			e.logger.Debug("resume seek failed", "session_id", e.s.SessionID, "error", err)
		} else {
			e.s.CurrentTime = e.startAt
		}
	}
	if e.s.Volume != 1 {
		if err := e.media.SetVolume(e.s.Volume); err != nil {
			e.logger.Debug("initial volume failed", "session_id", e.s.SessionID, "error", err)
		}
	}

	// Autoplay is attempted once; a rejection leaves the session paused
	e.playLocked()
	e.logger.Debug("metadata loaded", "session_id", e.s.SessionID, "duration", e.s.Duration, "state", e.s.State)
	e.notifier.Notify()
}

func (e *Engine) timeUpdate(gen uint64, position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || !e.s.State.Open() {
		return
	}
	position = max(position, 0)
	if e.s.Duration > 0 {
		position = min(position, e.s.Duration)
	}
	e.s.CurrentTime = position
	e.notifier.Notify()
}

func (e *Engine) ended(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || !e.s.State.Open() || e.s.State == StateEnded {
		return
	}

	schedule.Stop(e.qualityTask)
	e.qualityTask = nil
	e.s.PendingQuality = ""

	e.s.CurrentTime = e.s.Duration
	e.setStateLocked(StateEnded)
	if e.s.Duration > 0 {
		e.saveLocked()
	}
	e.notifier.Notify()
}

// stopped handles a backend that went away under an open session. A session
// still loading becomes unavailable; otherwise the last position is saved and
// the session is left paused.
func (e *Engine) stopped(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || !e.s.State.Open() || e.s.State == StateUnavailable {
		return
	}
	e.logger.Warn("media backend stopped",
		"session_id", e.s.SessionID,
		"content_id", e.s.ContentID,
		"state", e.s.State,
		"error", err)

	e.stopTasksLocked()
	e.s.PendingQuality = ""

	switch e.s.State {
	case StateLoading:
		e.setStateLocked(StateUnavailable)
	case StatePlaying, StatePaused, StateBuffering:
		if e.s.Duration > 0 {
			e.saveLocked()
		}
		e.setStateLocked(StatePaused)
	}
	e.notifier.Notify()
}

func (e *Engine) saveTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.s.State != StatePlaying || e.s.Duration <= 0 {
		return
	}
	e.saveLocked()
}

// finishQualitySwitch commits the pending quality. Playback resumes only when
// the switch started from StatePlaying; a switch started while paused ends paused.
func (e *Engine) finishQualitySwitch(gen, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || seq != e.switchSeq || e.s.State != StateBuffering {
		return
	}
	e.qualityTask = nil
	e.s.Quality = e.s.PendingQuality
	e.s.PendingQuality = ""
	if e.resumeAfterSwitch {
		e.playLocked()
	} else {
		e.setStateLocked(StatePaused)
	}
	e.logger.Info("quality switched", "session_id", e.s.SessionID, "quality", e.s.Quality, "state", e.s.State)
	e.notifier.Notify()
}

func (e *Engine) hideOverlay(gen, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || seq != e.overlaySeq {
		return
	}
	e.overlayTask = nil
	if e.s.State == StatePlaying {
		e.overlay = false
		e.notifier.Notify()
	}
}

func (e *Engine) playLocked() {
	if err := e.media.Play(); err != nil {
		e.logger.Debug("play rejected", "session_id", e.s.SessionID, "error", err)
		e.setStateLocked(StatePaused)
		return
	}
	e.setStateLocked(StatePlaying)
	e.armOverlayLocked()
}

func (e *Engine) seekableLocked() bool {
	if e.s.Duration <= 0 {
		return false
	}
	return e.s.State.Ready() || e.s.State == StateBuffering
}

func (e *Engine) seekLocked(target time.Duration) {
	target = min(max(target, 0), e.s.Duration)
	if err := e.media.Seek(target); err != nil {
		e.logger.Debug("seek failed", "session_id", e.s.SessionID, "target", target, "error", err)
		return
	}
	e.s.CurrentTime = target
	if e.s.State == StateEnded && target < e.s.Duration {
		e.setStateLocked(StatePaused)
	}
}

func (e *Engine) setVolumeLocked(v float64) {
	v = clamp(v, 0, 1)
	if err := e.media.SetVolume(v); err != nil {
		e.logger.Debug("volume change failed", "session_id", e.s.SessionID, "error", err)
		return
	}
	if e.s.Muted {
		if err := e.media.SetMuted(false); err != nil {
			e.logger.Debug("unmute failed", "session_id", e.s.SessionID, "error", err)
		}
	}
	e.s.Volume = v
	e.s.Muted = false
}

func (e *Engine) saveLocked() {
	if e.saver == nil {
		return
	}
	e.saver.Save(context.Background(), progress.Record{
		ContentID:    e.s.ContentID,
		Title:        e.s.Title,
		ThumbnailURL: e.s.ThumbnailURL,
		CurrentTime:  e.s.CurrentTime.Seconds(),
		Duration:     e.s.Duration.Seconds(),
	})
}

func (e *Engine) setStateLocked(state State) {
	if e.s.State == state {
		return
	}
	e.logger.Debug("state changed",
		"session_id", e.s.SessionID,
		"content_id", e.s.ContentID,
		"from", e.s.State,
		"state", state)
	e.s.State = state
}

func (e *Engine) snapshotLocked() Session {
	s := e.s
	s.OverlayVisible = s.State.Open() && (e.overlay || s.State != StatePlaying)
	return s
}

// teardownLocked stops the current session's timers and media.
// It reports false when there was no session.
func (e *Engine) teardownLocked() (Session, bool) {
	if e.s.State == StateClosed {
		return Session{}, false
	}
	final := e.snapshotLocked()
	e.stopTasksLocked()
	if e.s.MediaURL != "" {
		if err := e.media.Unload(); err != nil {
			e.logger.Debug("unload failed", "session_id", e.s.SessionID, "error", err)
		}
	}
	return final, true
}

func (e *Engine) stopTasksLocked() {
	schedule.Stop(e.saveTask)
	schedule.Stop(e.overlayTask)
	schedule.Stop(e.qualityTask)
	e.saveTask, e.overlayTask, e.qualityTask = nil, nil, nil
}

func (e *Engine) resetLocked(state State) {
	e.s = Session{
		State:    state,
		Volume:   e.defaults.Volume,
		Speed:    1,
		Quality:  e.defaults.Quality,
		Subtitle: e.defaults.Subtitle,
	}
	e.startAt = 0
	e.overlay = true
	e.resumeAfterSwitch = false
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// Package mpv is a media backend that drives an external mpv process over JSON IPC.
package mpv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/diniamo/gopv"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/player"
)

var (
	// ErrNotLoaded is returned by controls used before Load or after Unload
	ErrNotLoaded = errors.New("mpv: no media loaded")
	// ErrTrackNotFound is returned when the media has no subtitle stream for a track
	ErrTrackNotFound = errors.New("mpv: subtitle track not found")
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Backend implements player.Media on top of mpv
type Backend struct {
	mu sync.Mutex

	// mpv process and IPC
	client    *gopv.Client
	cmd       *exec.Cmd
	ipcConfig *IPCConfig
	platform  Platform

	cancel       context.CancelFunc
	clientClosed bool

	// Configuration
	title          string
	extraArgs      []string
	debug          bool
	loadUserConfig bool
	pollInterval   time.Duration
	logger         *slog.Logger
}

// Option configures a Backend
type Option func(*Backend)

// WithTitle sets the window title shown by mpv
func WithTitle(title string) Option {
	return func(b *Backend) { b.title = title }
}

// WithArgs appends raw mpv arguments
func WithArgs(args ...string) Option {
	return func(b *Backend) { b.extraArgs = append(b.extraArgs, args...) }
}

// WithDebug keeps mpv's own log output
func WithDebug(debug bool) Option {
	return func(b *Backend) { b.debug = debug }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns an mpv backend. It fails when no mpv executable is available.
func New(cfg *config.PlayerConfig, opts ...Option) (*Backend, error) {
	platform := DetectPlatform()

	if _, err := FindMPVExecutable(platform); err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}

	return newBackend(platform, cfg, opts...), nil
}

func newBackend(platform Platform, cfg *config.PlayerConfig, opts ...Option) *Backend {
	b := &Backend{
		platform:     platform,
		pollInterval: 250 * time.Millisecond,
		logger:       slog.Default(),
	}
	if cfg != nil {
		b.loadUserConfig = cfg.LoadUserConfig
		b.extraArgs = append(b.extraArgs, cfg.MPVArgs...)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load starts mpv paused on url and connects to its IPC server.
// It blocks until the connection is ready or ctx is done.
func (b *Backend) Load(ctx context.Context, url string, events player.MediaEvents) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Replace any previous media
	b.stopLocked()

	mpvExec := GetMPVExecutable(b.platform)
	if _, err := exec.LookPath(mpvExec); err != nil {
		return fmt.Errorf("mpv executable not found in PATH (%s): %w", mpvExec, err)
	}

	ipcConfig, err := GetIPCConfig(b.platform)
	if err != nil {
		return fmt.Errorf("failed to generate IPC config: %w", err)
	}
	b.ipcConfig = ipcConfig

	cmd := exec.Command(mpvExec, b.buildMPVArgs(url)...)

	// Detach mpv from the terminal so it cannot steal input or corrupt the TUI
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setupProcessAttributes(cmd)

	if err := cmd.Start(); err != nil {
		b.cleanupIPC()
		return fmt.Errorf("failed to start %s: %w", mpvExec, err)
	}
	b.cmd = cmd

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	// reap a process we give up on; monitorProcess only starts on success
	abort := func() {
		b.killLocked()
		go func() { _ = cmd.Wait() }()
	}

	if err := b.waitForIPC(initCtx); err != nil {
		abort()
		if b.platform == PlatformWindows {
			return fmt.Errorf("failed to connect to mpv (timeout waiting for named pipe: %s): %w", ipcConfig.Address, err)
		}
		return fmt.Errorf("timeout waiting for mpv IPC at %s: %w", ipcConfig.Address, err)
	}

	connStr := GetGopvConnectionString(ipcConfig)
	client, err := gopv.Connect(connStr, func(err error) {
		b.logger.Debug("mpv IPC error", "error", err)
	})
	if err != nil {
		abort()
		return fmt.Errorf("failed to connect to mpv IPC at %s: %w", connStr, err)
	}

	b.client = client
	b.clientClosed = false

	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	b.cancel = monitorCancel
	go b.monitorProgress(monitorCtx, client, events)
	go b.monitorProcess(monitorCtx, cmd, events)

	b.logger.Debug("mpv started", "address", ipcConfig.Address, "pid", cmd.Process.Pid)
	return nil
}

// Play resumes playback
func (b *Backend) Play() error {
	return b.setProperty("pause", false)
}

// Pause pauses playback
func (b *Backend) Pause() error {
	return b.setProperty("pause", true)
}

// Seek seeks to an absolute position
func (b *Backend) Seek(position time.Duration) error {
	return b.setProperty("time-pos", position.Seconds())
}

// SetVolume sets the volume from a 0-1 level
func (b *Backend) SetVolume(volume float64) error {
	return b.setProperty("volume", volume*100)
}

// SetMuted mutes or unmutes audio
func (b *Backend) SetMuted(muted bool) error {
	return b.setProperty("mute", muted)
}

// SetSpeed sets the playback rate
func (b *Backend) SetSpeed(speed float64) error {
	return b.setProperty("speed", speed)
}

// SetSubtitle selects the first subtitle stream in the track's language, or
// disables subtitles for "Off"
func (b *Backend) SetSubtitle(track string) error {
	if track == "Off" {
		return b.setProperty("sid", "no")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return ErrNotLoaded
	}
	tracks, err := b.client.Request("get_property", "track-list")
	if err != nil {
		return fmt.Errorf("failed to read track list: %w", err)
	}
	id, ok := findSubtitleTrack(tracks, track)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, track)
	}
	if _, err := b.client.Request("set_property", "sid", id); err != nil {
		return fmt.Errorf("failed to set subtitle: %w", err)
	}
	return nil
}

// ToggleFullscreen flips mpv's fullscreen flag
func (b *Backend) ToggleFullscreen() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return ErrNotLoaded
	}
	if _, err := b.client.Request("cycle", "fullscreen"); err != nil {
		return fmt.Errorf("failed to toggle fullscreen: %w", err)
	}
	return nil
}

// Unload quits mpv and releases IPC resources
func (b *Backend) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	return nil
}

func (b *Backend) setProperty(name string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		return ErrNotLoaded
	}
	if _, err := b.client.Request("set_property", name, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}

// stopLocked stops playback (must be called with lock held)
func (b *Backend) stopLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	// When mpv exits the IPC connection gets EOF and gopv's reader closes the
	// client itself. Closing it here as well would panic on double close.
	if b.client != nil && !b.clientClosed {
		b.clientClosed = true
		client := b.client
		go func() {
			done := make(chan struct{})
			go func() {
				_, _ = client.Request("quit")
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(500 * time.Millisecond):
			}
		}()
	}
	b.client = nil

	b.killLocked()
}

// killLocked kills the process (monitorProcess reaps it) and removes the socket
func (b *Backend) killLocked() {
	if b.cmd != nil && b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
	}
	b.cmd = nil
	b.cleanupIPC()
}

// cleanupIPC cleans up IPC resources (sockets, files, etc.)
func (b *Backend) cleanupIPC() {
	if b.ipcConfig != nil && b.ipcConfig.IsSocket {
		_ = os.Remove(b.ipcConfig.Address)
	}
	b.ipcConfig = nil
}

// status is one poll of mpv's playback properties
type status struct {
	position time.Duration
	duration time.Duration
	eof      bool
}

// readStatus polls mpv. Too many failed properties mean the IPC is gone.
func readStatus(client *gopv.Client) (status, error) {
	var st status
	var propertyErrors int

	if result, err := client.Request("get_property", "time-pos"); err == nil {
		if val, ok := result.(float64); ok {
			st.position = seconds(val)
		}
	} else {
		propertyErrors++
		if runtime.GOOS == "windows" {
			return st, fmt.Errorf("windows IPC error getting time-pos: %w", err)
		}
	}

	if result, err := client.Request("get_property", "duration"); err == nil {
		if val, ok := result.(float64); ok {
			st.duration = seconds(val)
		}
	} else {
		propertyErrors++
	}

	if result, err := client.Request("get_property", "eof-reached"); err == nil {
		if val, ok := result.(bool); ok {
			st.eof = val
		}
	} else {
		propertyErrors++
	}

	if propertyErrors >= 3 {
		return st, fmt.Errorf("IPC connection failed (failed to get %d properties)", propertyErrors)
	}
	return st, nil
}

// tracker turns successive polls into media events
type tracker struct {
	metadataSent bool
	endSent      bool
	lastPosition time.Duration
}

func (t *tracker) dispatch(st status, events player.MediaEvents) {
	if !t.metadataSent && st.duration > 0 {
		t.metadataSent = true
		events.LoadedMetadata(st.duration)
	}
	if !t.metadataSent {
		return
	}

	if st.position != t.lastPosition {
		t.lastPosition = st.position
		events.TimeUpdate(st.position)
	}

	switch {
	case st.eof && !t.endSent:
		t.endSent = true
		events.Ended()
	case !st.eof:
		// a seek or replay moved away from the end
		t.endSent = false
	}
}

// monitorProgress polls mpv and reports events until ctx is cancelled.
// Events are delivered without holding the backend lock.
func (b *Backend) monitorProgress(ctx context.Context, client *gopv.Client, events player.MediaEvents) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	var t tracker
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st, err := readStatus(client)
			if err != nil {
				b.logger.Debug("mpv poll failed", "error", err)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			t.dispatch(st, events)
		}
	}
}

// monitorProcess reaps the mpv process. An exit nobody asked for (the user
// closed the window, mpv crashed) cleans up and is reported as Stopped.
func (b *Backend) monitorProcess(ctx context.Context, cmd *exec.Cmd, events player.MediaEvents) {
	err := cmd.Wait()
	if ctx.Err() != nil {
		// Unload asked for it
		return
	}

	b.logger.Warn("mpv exited", "error", err)
	b.mu.Lock()
	current := b.cmd == cmd
	if current {
		b.stopLocked()
	}
	b.mu.Unlock()

	if current {
		events.Stopped(err)
	}
}

// buildMPVArgs builds the command-line arguments for mpv
func (b *Backend) buildMPVArgs(url string) []string {
	args := []string{
		GetMPVIPCArgument(b.ipcConfig),
		"--idle=yes",
		"--keep-open=yes", // stay on the last frame so eof-reached is observable
		"--pause",         // the engine starts playback once metadata is known
		"--no-ytdl",
	}

	if !b.loadUserConfig {
		args = append(args, "--no-config")
	}

	if !b.debug {
		args = append(args, "--msg-level=all=warn")
	}

	args = append(args, "--user-agent="+defaultUserAgent)

	if b.title != "" {
		args = append(args, fmt.Sprintf("--force-media-title=%s", b.title))
	}

	args = append(args, b.extraArgs...)

	// URL must be last
	args = append(args, url)

	return args
}

// waitForIPC waits for the IPC connection to be ready
func (b *Backend) waitForIPC(ctx context.Context) error {
	// mpv.exe takes longer to create named pipes
	timeoutDuration := 5 * time.Second
	if b.ipcConfig.Type == IPCTCP || b.ipcConfig.Type == IPCNamedPipe {
		timeoutDuration = 10 * time.Second
	}

	timeout := time.After(timeoutDuration)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for IPC at %s after %v", b.ipcConfig.Address, timeoutDuration)
		case <-ticker.C:
			switch b.ipcConfig.Type {
			case IPCUnixSocket:
				if _, err := os.Stat(b.ipcConfig.Address); err == nil {
					// Socket exists, give mpv a moment to accept
					time.Sleep(200 * time.Millisecond)
					return nil
				}
			case IPCTCP:
				conn, err := net.DialTimeout("tcp", b.ipcConfig.Address, 200*time.Millisecond)
				if err == nil {
					_ = conn.Close()
					time.Sleep(300 * time.Millisecond)
					return nil
				}
			case IPCNamedPipe:
				if isPipeReady(b.ipcConfig.Address) {
					time.Sleep(200 * time.Millisecond)
					return nil
				}
			}
		}
	}
}

// languageCodes maps subtitle track names to the codes mpv reports
var languageCodes = map[string][]string{
	"English":  {"en", "eng"},
	"Spanish":  {"es", "spa"},
	"French":   {"fr", "fre", "fra"},
	"German":   {"de", "ger", "deu"},
	"Japanese": {"ja", "jpn"},
}

// findSubtitleTrack returns the id of the first subtitle stream for name in an
// mpv track-list result
func findSubtitleTrack(trackList any, name string) (int, bool) {
	codes, ok := languageCodes[name]
	if !ok {
		return 0, false
	}

	tracks, ok := trackList.([]any)
	if !ok {
		return 0, false
	}

	for _, raw := range tracks {
		track, ok := raw.(map[string]any)
		if !ok || track["type"] != "sub" {
			continue
		}
		lang, _ := track["lang"].(string)
		title, _ := track["title"].(string)
		for _, code := range codes {
			if strings.EqualFold(lang, code) || strings.EqualFold(title, name) {
				if id, ok := track["id"].(float64); ok {
					return int(id), true
				}
			}
		}
	}
	return 0, false
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

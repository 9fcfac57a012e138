package nowplaying

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/database"
	"github.com/marquee-tv/marquee/internal/downloads"
	"github.com/marquee-tv/marquee/internal/player"
	"github.com/marquee-tv/marquee/internal/player/simulated"
	"github.com/marquee-tv/marquee/internal/schedule"
	"github.com/marquee-tv/marquee/internal/tui/common"
)

type fixture struct {
	engine    *player.Engine
	clock     *schedule.Manual
	downloads *downloads.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := schedule.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := config.Default()
	mgr, err := downloads.NewManager(db, &cfg.Downloads, downloads.WithScheduler(clock), downloads.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(mgr.Close)

	backend := simulated.New(100*time.Second, simulated.WithScheduler(clock), simulated.WithLogger(logger))
	engine, err := player.NewEngine(backend, &cfg.Player,
		player.WithScheduler(clock),
		player.WithDownloader(mgr),
		player.WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return &fixture{engine: engine, clock: clock, downloads: mgr}
}

func (f *fixture) open(t *testing.T, mediaURL string) {
	t.Helper()
	require.NoError(t, f.engine.Open(context.Background(), player.ContentRef{
		ContentID: "c1",
		Title:     "The Long Night",
		MediaURL:  mediaURL,
	}))
	f.clock.Advance(300 * time.Millisecond)
}

func press(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSpaceTogglesPlayback(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)
	require.Equal(t, player.StatePlaying, m.Session().State)

	m, _ = send(m, press(" "))
	assert.Equal(t, player.StatePaused, m.Session().State)

	m, _ = send(m, press(" "))
	assert.Equal(t, player.StatePlaying, m.Session().State)
}

func TestPausedViewShowsControls(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	f.clock.Advance(10 * time.Second)
	m := New(f.engine)

	m, _ = send(m, press("k"))
	view := m.View()
	assert.Contains(t, view, "The Long Night")
	assert.Contains(t, view, "paused")
	assert.Contains(t, view, "vol 100%")
	assert.Contains(t, view, "1:40")
	assert.Contains(t, view, "CC English")
	assert.Contains(t, view, "play/pause")
}

func TestOverlayFollowsPointer(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)
	assert.Contains(t, m.View(), "vol 100%", "controls show when playback starts")

	f.clock.Advance(3 * time.Second)
	m, _ = send(m, common.ChangedMsg{})
	assert.NotContains(t, m.View(), "vol 100%")

	m, _ = send(m, tea.MouseMsg{Action: tea.MouseActionMotion, X: 3, Y: 3})
	m, _ = send(m, common.ChangedMsg{})
	assert.Contains(t, m.View(), "vol 100%")

	f.clock.Advance(3 * time.Second)
	m, _ = send(m, common.ChangedMsg{})
	assert.NotContains(t, m.View(), "vol 100%")

	m, _ = send(m, tea.MouseMsg{Action: tea.MouseActionMotion})
	m, _ = send(m, tea.BlurMsg{})
	m, _ = send(m, common.ChangedMsg{})
	assert.False(t, m.Session().OverlayVisible)
}

func TestUnavailableFallback(t *testing.T) {
	f := newFixture(t)
	f.open(t, "")
	m := New(f.engine)

	assert.Contains(t, m.View(), "Video unavailable")

	m, _ = send(m, press(" "))
	assert.Equal(t, player.StateUnavailable, m.Session().State)

	_, cmd := send(m, press("esc"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, player.StateClosed, f.engine.Snapshot().State)
}

func TestQuitClosesSession(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	_, cmd := send(m, press("q"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, player.StateClosed, f.engine.Snapshot().State)
}

func TestExternalCloseQuits(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	f.engine.Close()
	_, cmd := send(m, common.ChangedMsg{})
	assert.True(t, isQuit(cmd))
}

func TestSettingsPickerChangesQuality(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	m, _ = send(m, press("s"))
	require.True(t, m.Session().SettingsOpen)
	assert.Contains(t, m.View(), "Quality 720p")

	m, _ = send(m, press("down"))
	m, _ = send(m, press("enter"))

	s := m.Session()
	assert.Equal(t, player.StateBuffering, s.State)
	assert.Equal(t, "720p", s.PendingQuality)
	assert.False(t, s.SettingsOpen)
	assert.Contains(t, m.View(), "1080p -> 720p")

	f.clock.Advance(1500 * time.Millisecond)
	m, _ = send(m, common.ChangedMsg{})
	assert.Equal(t, "720p", m.Session().Quality)
	assert.Equal(t, player.StatePlaying, m.Session().State)
}

func TestSettingsPickerClosesWithoutClosingSession(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	m, _ = send(m, press("s"))
	m, _ = send(m, press("esc"))

	assert.False(t, m.Session().SettingsOpen)
	assert.Equal(t, player.StatePlaying, m.Session().State)
}

func TestSubtitlePicker(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	m, _ = send(m, press("c"))
	require.True(t, m.Session().SubtitlesOpen)

	m, _ = send(m, press("down"))
	m, _ = send(m, press("enter"))

	assert.Equal(t, "Spanish", m.Session().Subtitle)
	assert.False(t, m.Session().SubtitlesOpen)
}

func TestJumpAndSpeedKeys(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	m, _ = send(m, press("5"))
	assert.Equal(t, 50*time.Second, m.Session().CurrentTime)

	m, _ = send(m, press(">"))
	assert.Equal(t, 1.25, m.Session().Speed)

	m, _ = send(m, press("<"))
	m, _ = send(m, press("<"))
	assert.Equal(t, 0.75, m.Session().Speed)
}

func TestArrowKeysSeekAndVolume(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 10*time.Second, m.Session().CurrentTime)

	m, _ = send(m, press("down"))
	assert.InDelta(t, 0.9, m.Session().Volume, 1e-9)
}

func TestDownloadKey(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	_, cmd := send(m, press("d"))
	assert.NotNil(t, cmd)

	jobs := f.downloads.List(context.Background())
	require.Len(t, jobs, 1)
	assert.Equal(t, "c1", jobs[0].ID)
	assert.Equal(t, "1080p", jobs[0].Quality)

	_, _ = send(m, press("d"))
	assert.Len(t, f.downloads.List(context.Background()), 1)
}

func TestStatusMessages(t *testing.T) {
	f := newFixture(t)
	f.open(t, "sim://1")
	m := New(f.engine)

	m, _ = send(m, common.StatusMsg{Text: "Added to downloads"})
	assert.Contains(t, m.View(), "Added to downloads")

	m, _ = send(m, common.ClearStatusMsg{})
	assert.NotContains(t, m.View(), "Added to downloads")
}

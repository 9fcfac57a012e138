package downloads

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
	"github.com/marquee-tv/marquee/internal/schedule"
	"github.com/marquee-tv/marquee/internal/tui/common"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newManager(t *testing.T) (*downloads.Manager, *schedule.Manual) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	clock := schedule.NewManual(epoch)
	cfg := config.Default().Downloads
	mgr, err := downloads.NewManager(db, &cfg,
		downloads.WithScheduler(clock),
		downloads.WithIncrement(func() int { return 19 }),
		downloads.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	return mgr, clock
}

func newModel(mgr *downloads.Manager, clock *schedule.Manual) Model {
	m := New(mgr, time.Second)
	m.now = clock.Now
	return m
}

func press(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func add(t *testing.T, mgr *downloads.Manager, id, title string) {
	t.Helper()
	require.True(t, mgr.Add(context.Background(), downloads.Request{ID: id, Title: title, Quality: "1080p"}))
}

func TestEmptyView(t *testing.T) {
	mgr, clock := newManager(t)
	m := newModel(mgr, clock)

	view := m.View()
	assert.Contains(t, view, "No downloads yet")
	assert.Contains(t, view, "0 total")
}

func TestListsJobsAndReloadsOnChange(t *testing.T) {
	mgr, clock := newManager(t)
	add(t, mgr, "1", "The Long Night")
	m := newModel(mgr, clock)

	add(t, mgr, "2", "Night Shift")
	require.Len(t, m.Jobs(), 1)

	m, cmd := send(m, common.ChangedMsg{})
	assert.NotNil(t, cmd)
	jobs := m.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "2", jobs[0].ID)

	clock.Advance(3 * time.Second)
	m, _ = send(m, common.ChangedMsg{})
	view := m.View()
	assert.Contains(t, view, "Night Shift [1080p]")
	assert.Contains(t, view, "38%")
	assert.Contains(t, view, "2 active")
	assert.Contains(t, view, "added 3 seconds ago")
}

func TestCompletedJobShowsFinishTime(t *testing.T) {
	mgr, clock := newManager(t)
	add(t, mgr, "1", "The Long Night")
	clock.Advance(time.Minute)

	m := newModel(mgr, clock)
	view := m.View()
	assert.Contains(t, view, "completed")
	assert.Contains(t, view, "100%")
	assert.Contains(t, view, "finished")
}

func TestPauseAndResumeSelected(t *testing.T) {
	mgr, clock := newManager(t)
	add(t, mgr, "1", "One")
	add(t, mgr, "2", "Two")
	m := newModel(mgr, clock)

	m, _ = send(m, press("down"))
	m, _ = send(m, press("p"))

	job, err := mgr.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, downloads.StatusPaused, job.Status)

	m, _ = send(m, press("p"))
	job, err = mgr.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, downloads.StatusDownloading, job.Status)
	assert.Len(t, m.Jobs(), 2)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	mgr, clock := newManager(t)
	add(t, mgr, "1", "One")
	m := newModel(mgr, clock)

	m, _ = send(m, press("d"))
	assert.Contains(t, m.View(), "Delete One?")

	m, _ = send(m, press("n"))
	assert.Len(t, mgr.List(context.Background()), 1)

	m, _ = send(m, press("d"))
	m, _ = send(m, press("y"))
	assert.Empty(t, mgr.List(context.Background()))
	assert.Empty(t, m.Jobs())
}

func TestClearAll(t *testing.T) {
	mgr, clock := newManager(t)
	add(t, mgr, "1", "One")
	add(t, mgr, "2", "Two")
	m := newModel(mgr, clock)

	m, _ = send(m, press("x"))
	assert.Contains(t, m.View(), "Delete all 2 downloads?")

	m, _ = send(m, press("enter"))
	assert.Empty(t, mgr.List(context.Background()))
	assert.Equal(t, 0, mgr.Active())
}

func TestFilter(t *testing.T) {
	mgr, clock := newManager(t)
	add(t, mgr, "1", "The Long Night")
	add(t, mgr, "2", "Morning Glory")
	m := newModel(mgr, clock)

	m, _ = send(m, press("/"))
	for _, r := range "glory" {
		m, _ = send(m, press(string(r)))
	}

	jobs := m.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "2", jobs[0].ID)

	m, _ = send(m, press("esc"))
	assert.Len(t, m.Jobs(), 2)
}

func TestQuit(t *testing.T) {
	mgr, clock := newManager(t)
	m := newModel(mgr, clock)

	_, cmd := send(m, press("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

package simulated_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/database"
	"github.com/marquee-tv/marquee/internal/player"
	"github.com/marquee-tv/marquee/internal/player/simulated"
	"github.com/marquee-tv/marquee/internal/progress"
	"github.com/marquee-tv/marquee/internal/schedule"
)

var _ player.Media = (*simulated.Backend)(nil)

var ref = player.ContentRef{
	ContentID: "sim-1",
	Title:     "Test Pattern",
	MediaURL:  "sim://test-pattern",
}

func setup(t *testing.T, opts ...simulated.Option) (*player.Engine, *simulated.Backend, *schedule.Manual, *progress.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := schedule.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	store := progress.NewStore(db, progress.WithLogger(logger))

	backend := simulated.New(20*time.Second, append([]simulated.Option{
		simulated.WithScheduler(clock),
		simulated.WithLogger(logger),
	}, opts...)...)

	cfg := config.Default().Player
	engine, err := player.NewEngine(backend, &cfg,
		player.WithScheduler(clock),
		player.WithProgressSaver(store),
		player.WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return engine, backend, clock, store
}

func TestPlaysToTheEnd(t *testing.T) {
	engine, backend, clock, store := setup(t)
	ctx := context.Background()

	require.NoError(t, engine.Open(ctx, ref))
	assert.Equal(t, player.StateLoading, engine.Snapshot().State)

	clock.Advance(300 * time.Millisecond)
	s := engine.Snapshot()
	assert.Equal(t, player.StatePlaying, s.State)
	assert.Equal(t, 20*time.Second, s.Duration)
	assert.True(t, backend.Playing())

	clock.Advance(6 * time.Second)
	mid := store.List(ctx)
	require.Len(t, mid, 1)
	assert.Less(t, mid[0].Percentage, 100.0)
	assert.Greater(t, mid[0].Percentage, 0.0)

	clock.Advance(20 * time.Second)
	s = engine.Snapshot()
	assert.Equal(t, player.StateEnded, s.State)
	assert.Equal(t, 20*time.Second, s.CurrentTime)
	assert.False(t, backend.Playing())

	final := store.List(ctx)
	require.Len(t, final, 1)
	assert.Equal(t, 100.0, final[0].Percentage)
	assert.Equal(t, "Test Pattern", final[0].Title)
}

func TestBlockedAutoplayLeavesPaused(t *testing.T) {
	engine, backend, clock, _ := setup(t, simulated.WithBlockedPlays(1))

	require.NoError(t, engine.Open(context.Background(), ref))
	clock.Advance(300 * time.Millisecond)

	assert.Equal(t, player.StatePaused, engine.Snapshot().State)
	assert.False(t, backend.Playing())

	clock.Advance(5 * time.Second)
	assert.Equal(t, time.Duration(0), backend.Position())

	engine.TogglePlayPause()
	assert.Equal(t, player.StatePlaying, engine.Snapshot().State)
	clock.Advance(time.Second)
	assert.Equal(t, time.Second, backend.Position())
}

func TestSpeedScalesAdvance(t *testing.T) {
	engine, backend, clock, _ := setup(t)

	require.NoError(t, engine.Open(context.Background(), ref))
	clock.Advance(300 * time.Millisecond)
	require.NoError(t, engine.SetPlaybackSpeed(2))

	start := backend.Position()
	clock.Advance(time.Second)
	assert.Equal(t, start+2*time.Second, backend.Position())
	assert.Equal(t, backend.Position(), engine.Snapshot().CurrentTime)
}

func TestReplayAfterEnd(t *testing.T) {
	engine, backend, clock, _ := setup(t)

	require.NoError(t, engine.Open(context.Background(), ref))
	clock.Advance(30 * time.Second)
	require.Equal(t, player.StateEnded, engine.Snapshot().State)

	engine.TogglePlayPause()
	assert.Equal(t, player.StatePlaying, engine.Snapshot().State)
	assert.Equal(t, time.Duration(0), backend.Position())

	clock.Advance(time.Second)
	assert.Equal(t, time.Second, engine.Snapshot().CurrentTime)
}

func TestCloseStopsAllTimers(t *testing.T) {
	engine, _, clock, _ := setup(t)

	require.NoError(t, engine.Open(context.Background(), ref))
	clock.Advance(time.Second)
	engine.Close()

	assert.Equal(t, 0, clock.Pending())
}

func TestControlsBeforeMetadata(t *testing.T) {
	b := simulated.New(time.Minute)
	assert.ErrorIs(t, b.Play(), simulated.ErrNotLoaded)
	assert.ErrorIs(t, b.Seek(time.Second), simulated.ErrNotLoaded)
}

package player_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-tv/marquee/internal/player"
)

func TestSpaceIsSuppressedAndToggles(t *testing.T) {
	h := newHarness(t)
	h.openReady(t, 100*time.Second)

	ev := player.NewKeyEvent(" ")
	assert.True(t, h.engine.HandleKey(ev))
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, player.StatePaused, h.engine.Snapshot().State)
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key       string
		prevented bool
		check     func(t *testing.T, s player.Session)
	}{
		{"space", true, func(t *testing.T, s player.Session) { assert.Equal(t, player.StatePaused, s.State) }},
		{"k", false, func(t *testing.T, s player.Session) { assert.Equal(t, player.StatePaused, s.State) }},
		{"l", false, func(t *testing.T, s player.Session) { assert.Equal(t, 60*time.Second, s.CurrentTime) }},
		{"right", true, func(t *testing.T, s player.Session) { assert.Equal(t, 60*time.Second, s.CurrentTime) }},
		{"j", false, func(t *testing.T, s player.Session) { assert.Equal(t, 40*time.Second, s.CurrentTime) }},
		{"left", true, func(t *testing.T, s player.Session) { assert.Equal(t, 40*time.Second, s.CurrentTime) }},
		{"up", true, func(t *testing.T, s player.Session) { assert.InDelta(t, 0.6, s.Volume, 1e-9) }},
		{"down", true, func(t *testing.T, s player.Session) { assert.InDelta(t, 0.4, s.Volume, 1e-9) }},
		{"f", false, func(t *testing.T, s player.Session) { assert.True(t, s.Fullscreen) }},
		{"m", false, func(t *testing.T, s player.Session) { assert.True(t, s.Muted) }},
		{"esc", false, func(t *testing.T, s player.Session) { assert.Equal(t, player.StateClosed, s.State) }},
		{"ArrowRight", true, func(t *testing.T, s player.Session) { assert.Equal(t, 60*time.Second, s.CurrentTime) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			h := newHarness(t)
			h.openReady(t, 100*time.Second)
			h.media.sink().TimeUpdate(50 * time.Second)
			h.engine.SetVolume(0.5)

			ev := player.NewKeyEvent(tt.key)
			require.True(t, h.engine.HandleKey(ev))
			assert.Equal(t, tt.prevented, ev.DefaultPrevented())
			tt.check(t, h.engine.Snapshot())
		})
	}
}

func TestVolumeKeysClampAndUnmute(t *testing.T) {
	h := newHarness(t)
	h.openReady(t, 100*time.Second)
	h.engine.ToggleMute()

	h.engine.HandleKey(player.NewKeyEvent("up"))
	s := h.engine.Snapshot()
	assert.Equal(t, 1.0, s.Volume)
	assert.False(t, s.Muted)

	for i := 0; i < 15; i++ {
		h.engine.HandleKey(player.NewKeyEvent("down"))
	}
	assert.Equal(t, 0.0, h.engine.Snapshot().Volume)
}

func TestUnboundKeyIsNotHandled(t *testing.T) {
	h := newHarness(t)
	h.openReady(t, 100*time.Second)

	ev := player.NewKeyEvent("x")
	assert.False(t, h.engine.HandleKey(ev))
	assert.False(t, ev.DefaultPrevented())
	assert.False(t, h.engine.HandleKey(nil))
}

func TestKeysInactiveWhileClosed(t *testing.T) {
	h := newHarness(t)

	ev := player.NewKeyEvent(" ")
	assert.False(t, h.engine.HandleKey(ev))
	assert.False(t, ev.DefaultPrevented())
}

func TestEscapeClosesUnavailableSession(t *testing.T) {
	h := newHarness(t)
	ref := movie
	ref.MediaURL = ""
	require.NoError(t, h.engine.Open(context.Background(), ref))

	space := player.NewKeyEvent(" ")
	assert.True(t, h.engine.HandleKey(space))
	assert.True(t, space.DefaultPrevented())
	assert.Equal(t, player.StateUnavailable, h.engine.Snapshot().State)

	assert.True(t, h.engine.HandleKey(player.NewKeyEvent("esc")))
	assert.Equal(t, player.StateClosed, h.engine.Snapshot().State)
}

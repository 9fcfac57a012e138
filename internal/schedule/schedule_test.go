package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualAfter(t *testing.T) {
	m := NewManual(epoch)
	fired := 0
	m.After(3*time.Second, func() { fired++ })

	m.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	m.Advance(time.Second)
	assert.Equal(t, 1, fired)

	m.Advance(time.Hour)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, epoch.Add(time.Hour+3*time.Second), m.Now())
}

func TestManualEvery(t *testing.T) {
	m := NewManual(epoch)
	var at []time.Duration
	h := m.Every(5*time.Second, func() { at = append(at, m.Now().Sub(epoch)) })

	m.Advance(16 * time.Second)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}, at)

	h.Stop()
	h.Stop()
	m.Advance(time.Minute)
	assert.Len(t, at, 3)
}

func TestManualOrderingAndReentrancy(t *testing.T) {
	m := NewManual(epoch)
	var order []string

	m.After(2*time.Second, func() {
		order = append(order, "b")
		m.After(time.Second, func() { order = append(order, "d") })
	})
	m.After(time.Second, func() { order = append(order, "a") })
	m.After(2*time.Second, func() { order = append(order, "c") })

	m.Advance(10 * time.Second)
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

func TestManualStopFromCallback(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var h Handle
	h = m.Every(time.Second, func() {
		count++
		if count == 2 {
			h.Stop()
		}
	})

	m.Advance(10 * time.Second)
	assert.Equal(t, 2, count)
}

func TestClockAfter(t *testing.T) {
	done := make(chan struct{})
	New().After(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for callback")
	}
}

func TestClockEveryStops(t *testing.T) {
	var n atomic.Int32
	h := New().Every(5*time.Millisecond, func() { n.Add(1) })

	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)
	h.Stop()
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	// at most one in-flight tick may land after Stop
	assert.LessOrEqual(t, n.Load(), stopped+1)
}

func TestStopNil(t *testing.T) {
	assert.NotPanics(t, func() { Stop(nil) })
}

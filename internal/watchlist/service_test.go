package watchlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-tv/marquee/internal/catalog"
	"github.com/marquee-tv/marquee/internal/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s := NewService(db, nil)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestAddAndList(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	s.Add(ctx, FromContent(catalog.Content{ID: "1", Title: "One", Genre: []string{"Drama", "Crime"}, Year: 2020}))
	s.Add(ctx, Item{ContentID: "2", Title: "Two"})

	items := s.List(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ContentID)
	assert.Equal(t, "1", items[1].ContentID)
	assert.Equal(t, []string{"Drama", "Crime"}, items[1].Genre)
	assert.Equal(t, 2020, items[1].Year)
	assert.Nil(t, items[0].Genre)
}

func TestAddMovesToFront(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	s.Add(ctx, Item{ContentID: "1", Title: "One"})
	s.Add(ctx, Item{ContentID: "2", Title: "Two"})
	s.Add(ctx, Item{ContentID: "1", Title: "One again"})

	items := s.List(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ContentID)
	assert.Equal(t, "One again", items[0].Title)
}

func TestRemoveAndContains(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	s.Add(ctx, Item{ContentID: "1", Title: "One"})
	assert.True(t, s.Contains(ctx, "1"))

	s.Remove(ctx, "1")
	s.Remove(ctx, "missing")
	assert.False(t, s.Contains(ctx, "1"))
	assert.Empty(t, s.List(ctx))
}

func TestEmptyIDIgnored(t *testing.T) {
	s := newTestService(t)
	s.Add(context.Background(), Item{Title: "nameless"})
	assert.Empty(t, s.List(context.Background()))
}

func TestNilDatabase(t *testing.T) {
	s := NewService(nil, nil)
	ctx := context.Background()

	s.Add(ctx, Item{ContentID: "1"})
	s.Remove(ctx, "1")
	assert.False(t, s.Contains(ctx, "1"))
	assert.NotNil(t, s.List(ctx))
	assert.Empty(t, s.List(ctx))
}

package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-tv/marquee/internal/config"
)

const catalogJSON = `[
  {"id": "1", "title": "The Long Night", "type": "movie", "videoUrl": "https://cdn.example/1.mp4", "year": 2021, "genre": ["Drama"], "cast": ["A. Actor"]},
  {"id": "2", "title": "Night Shift", "type": "series", "videoUrl": "https://cdn.example/2.mp4", "year": 2019},
  {"id": "3", "title": "Morning Light", "type": "movie", "videoUrl": "", "year": 2023, "views": 42}
]`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileSourceJSON(t *testing.T) {
	src := NewFileSource(writeFile(t, "content.json", catalogJSON))

	items, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "The Long Night", items[0].Title)
	assert.Equal(t, []string{"Drama"}, items[0].Genre)
	assert.Equal(t, 42, items[2].Views)
}

func TestFileSourceYAML(t *testing.T) {
	body := `
- id: "1"
  title: The Long Night
  type: movie
  videoUrl: https://cdn.example/1.mp4
  year: 2021
`
	src := NewFileSource(writeFile(t, "content.yaml", body))

	items, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://cdn.example/1.mp4", items[0].VideoURL)
	assert.Equal(t, 2021, items[0].Year)
}

func TestFileSourceMissingIsEmpty(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))

	items, err := src.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFileSourceMalformed(t *testing.T) {
	src := NewFileSource(writeFile(t, "content.json", "{not json"))

	_, err := src.List(context.Background())
	assert.Error(t, err)
}

func TestServiceGet(t *testing.T) {
	svc := NewService(NewFileSource(writeFile(t, "content.json", catalogJSON)), discard())
	ctx := context.Background()

	item, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Night Shift", item.Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceSearch(t *testing.T) {
	svc := NewService(NewFileSource(writeFile(t, "content.json", catalogJSON)), discard())
	ctx := context.Background()

	results, err := svc.Search(ctx, "shift")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].ID)

	results, err = svc.Search(ctx, "long night")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.Search(ctx, "zzzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServiceByType(t *testing.T) {
	svc := NewService(NewFileSource(writeFile(t, "content.json", catalogJSON)), discard())

	movies, err := svc.ByType(context.Background(), "Movie")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "1", movies[0].ID)
	assert.Equal(t, "3", movies[1].ID)
}

type failingSource struct{}

func (failingSource) List(context.Context) ([]Content, error) {
	return nil, errors.New("boom")
}

func TestServiceWrapsSourceErrors(t *testing.T) {
	svc := NewService(failingSource{}, discard())

	_, err := svc.Get(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "boom")
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/content", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, catalogJSON)
	}))
	defer server.Close()

	src := NewHTTPSource(&config.CatalogConfig{APIBase: server.URL + "/api/", Timeout: time.Second}, discard())

	items, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, catalogJSON)
	}))
	defer server.Close()

	src := NewHTTPSource(&config.CatalogConfig{APIBase: server.URL, Timeout: time.Second, MaxRetries: 2}, discard())

	items, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSourceClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := NewHTTPSource(&config.CatalogConfig{APIBase: server.URL, Timeout: time.Second}, discard())

	_, err := src.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSourceCollapsesConcurrentLoads(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = io.WriteString(w, catalogJSON)
	}))
	defer server.Close()

	src := NewHTTPSource(&config.CatalogConfig{APIBase: server.URL, Timeout: 5 * time.Second}, discard())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := src.List(context.Background())
			assert.NoError(t, err)
			assert.Len(t, items, 3)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestNewSourcePrefersAPI(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, NewSource(&config.CatalogConfig{APIBase: "http://localhost"}, nil))
	assert.IsType(t, &FileSource{}, NewSource(&config.CatalogConfig{Path: "content.json"}, nil))
}

func TestShareURL(t *testing.T) {
	assert.Equal(t, "https://marquee.tv/content/abc", ShareURL("https://marquee.tv/", "abc"))
	assert.Equal(t, "https://marquee.tv/content/a%20b", ShareURL("https://marquee.tv", "a b"))
}

func TestSharer(t *testing.T) {
	var copied, opened string
	s := &Sharer{
		copy: func(v string) error { copied = v; return nil },
		open: func(v string) error { opened = v; return nil },
	}

	require.NoError(t, s.Copy("https://marquee.tv/content/1"))
	require.NoError(t, s.Open("https://marquee.tv/content/1"))
	assert.Equal(t, "https://marquee.tv/content/1", copied)
	assert.Equal(t, "https://marquee.tv/content/1", opened)

	s.unsupported = true
	assert.ErrorIs(t, s.Copy("x"), ErrClipboardUnsupported)

	s = &Sharer{open: func(string) error { return errors.New("no browser") }}
	assert.ErrorContains(t, s.Open("x"), "no browser")
}

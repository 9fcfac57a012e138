// Package catalog provides read-only access to content records
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/marquee-tv/marquee/internal/config"
)

// ErrNotFound is returned when no content has the requested id
var ErrNotFound = errors.New("catalog: content not found")

// Content is a title in the catalog
type Content struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	ThumbnailURL string   `json:"thumbnailUrl" yaml:"thumbnailUrl"`
	VideoURL     string   `json:"videoUrl" yaml:"videoUrl"`
	Year         int      `json:"year" yaml:"year"`
	Rating       string   `json:"rating" yaml:"rating"`
	Genre        []string `json:"genre" yaml:"genre"`
	Cast         []string `json:"cast" yaml:"cast"`
	Director     string   `json:"director" yaml:"director"`
	Duration     string   `json:"duration" yaml:"duration"`
	Type         string   `json:"type" yaml:"type"` // movie or series
	UploadedAt   string   `json:"uploadedAt" yaml:"uploadedAt"`
	Views        int      `json:"views" yaml:"views"`
}

// Source loads the full list of content
type Source interface {
	List(ctx context.Context) ([]Content, error)
}

// Service answers lookups against a Source
type Service struct {
	source Source
	logger *slog.Logger
}

// NewService creates a service over source
func NewService(source Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// NewSource picks the HTTP source when an API base is configured and the
// file source otherwise
func NewSource(cfg *config.CatalogConfig, logger *slog.Logger) Source {
	if cfg.APIBase != "" {
		return NewHTTPSource(cfg, logger)
	}
	return NewFileSource(cfg.Path)
}

// List returns every content record
func (s *Service) List(ctx context.Context) ([]Content, error) {
	items, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return items, nil
}

// Get returns the content with the given id
func (s *Service) Get(ctx context.Context, id string) (Content, error) {
	items, err := s.List(ctx)
	if err != nil {
		return Content{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return Content{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Search fuzzy-matches query against titles, best match first.
// An empty query returns everything in catalog order.
func (s *Service) Search(ctx context.Context, query string) ([]Content, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return items, nil
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	matches := fuzzy.Find(query, titles)
	results := make([]Content, 0, len(matches))
	for _, match := range matches {
		results = append(results, items[match.Index])
	}

	s.logger.Debug("catalog search", "query", query, "results", len(results))
	return results, nil
}

// ByType returns the content of one type ("movie" or "series")
func (s *Service) ByType(ctx context.Context, kind string) ([]Content, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var results []Content
	for _, item := range items {
		if strings.EqualFold(item.Type, kind) {
			results = append(results, item)
		}
	}
	return results, nil
}

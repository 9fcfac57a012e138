// Package watchlist keeps the titles a user saved for later.
// Like the other local stores it is best-effort: storage failures are logged
// and reads come back empty.
package watchlist

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/marquee-tv/marquee/internal/catalog"
	"github.com/marquee-tv/marquee/internal/database"
)

// Item is a saved title
type Item struct {
	ContentID    string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Year         int       `json:"year"`
	Rating       string    `json:"rating"`
	Duration     string    `json:"duration"`
	Genre        []string  `json:"genre"`
	AddedAt      time.Time `json:"addedAt"`
}

// FromContent builds an Item from a catalog record
func FromContent(c catalog.Content) Item {
	return Item{
		ContentID:    c.ID,
		Title:        c.Title,
		Type:         c.Type,
		ThumbnailURL: c.ThumbnailURL,
		Year:         c.Year,
		Rating:       c.Rating,
		Duration:     c.Duration,
		Genre:        c.Genre,
	}
}

// Service provides watchlist management
type Service struct {
	db     *gorm.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a new watchlist service
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, now: time.Now, logger: logger}
}

// Add saves item at the front of the list. Adding a saved title moves it to
// the front.
func (s *Service) Add(ctx context.Context, item Item) {
	if s.db == nil || item.ContentID == "" {
		return
	}

	row := database.WatchlistItem{
		ContentID:    item.ContentID,
		Title:        item.Title,
		Type:         item.Type,
		ThumbnailURL: item.ThumbnailURL,
		Year:         item.Year,
		Rating:       item.Rating,
		Duration:     item.Duration,
		Genre:        strings.Join(item.Genre, ","),
		AddedAt:      s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_id = ?", item.ContentID).Delete(&database.WatchlistItem{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		s.logger.Debug("watchlist add dropped", "content_id", item.ContentID, "error", err)
	}
}

// Remove deletes a saved title; absent ids are ignored
func (s *Service) Remove(ctx context.Context, contentID string) {
	if s.db == nil {
		return
	}
	if err := s.db.WithContext(ctx).Where("content_id = ?", contentID).Delete(&database.WatchlistItem{}).Error; err != nil {
		s.logger.Debug("watchlist remove dropped", "content_id", contentID, "error", err)
	}
}

// Contains reports whether contentID is saved
func (s *Service) Contains(ctx context.Context, contentID string) bool {
	if s.db == nil {
		return false
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.WatchlistItem{}).Where("content_id = ?", contentID).Count(&count).Error; err != nil {
		s.logger.Debug("watchlist lookup failed", "content_id", contentID, "error", err)
		return false
	}
	return count > 0
}

// List returns saved titles, most recently added first
func (s *Service) List(ctx context.Context) []Item {
	if s.db == nil {
		return []Item{}
	}

	var rows []database.WatchlistItem
	if err := s.db.WithContext(ctx).Order("rowid DESC").Find(&rows).Error; err != nil {
		s.logger.Debug("watchlist list failed", "error", err)
		return []Item{}
	}

	items := make([]Item, len(rows))
	for i, row := range rows {
		var genre []string
		if row.Genre != "" {
			genre = strings.Split(row.Genre, ",")
		}
		items[i] = Item{
			ContentID:    row.ContentID,
			Title:        row.Title,
			Type:         row.Type,
			ThumbnailURL: row.ThumbnailURL,
			Year:         row.Year,
			Rating:       row.Rating,
			Duration:     row.Duration,
			Genre:        genre,
			AddedAt:      row.AddedAt,
		}
	}
	return items
}

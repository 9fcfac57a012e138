// Package progress keeps the continue-watching collection: one playback
// snapshot per title, most recent first, bounded in size.
//
// The store is best-effort. Without a database, or when the database fails,
// reads return nothing and writes are dropped; errors are logged, never returned.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/marquee-tv/marquee/internal/database"
)

// DefaultMaxRecords is the continue-watching bound
const DefaultMaxRecords = 20

// Record is a persisted playback snapshot
type Record struct {
	ContentID    string    `json:"contentId"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CurrentTime  float64   `json:"currentTime"` // seconds
	Duration     float64   `json:"duration"`    // seconds
	Percentage   float64   `json:"percentage"`
	Timestamp    time.Time `json:"timestamp"`
}

// Remaining returns the unwatched part of the title
func (r Record) Remaining() time.Duration {
	left := r.Duration - r.CurrentTime
	if left < 0 {
		left = 0
	}
	return time.Duration(left * float64(time.Second))
}

// Percentage returns current/duration*100 clamped to [0, 100].
// A zero or negative duration yields 0.
func Percentage(current, duration time.Duration) float64 {
	if duration <= 0 || current <= 0 {
		return 0
	}
	p := float64(current) / float64(duration) * 100
	if math.IsNaN(p) {
		return 0
	}
	return math.Min(p, 100)
}

// Store persists Records
type Store struct {
	db         *gorm.DB
	maxRecords int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithMaxRecords bounds the collection
func WithMaxRecords(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRecords = n
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store. db may be nil, in which case storage is unavailable.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		maxRecords: DefaultMaxRecords,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save upserts r by content id, moves it to the front and trims the collection.
// Percentage and Timestamp are computed here.
func (s *Store) Save(ctx context.Context, r Record) {
	if s.db == nil || r.ContentID == "" {
		return
	}

	row := database.ProgressRecord{
		ContentID:    r.ContentID,
		Title:        r.Title,
		ThumbnailURL: r.ThumbnailURL,
		CurrentTime:  r.CurrentTime,
		Duration:     r.Duration,
		Percentage:   Percentage(seconds(r.CurrentTime), seconds(r.Duration)),
		Timestamp:    s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete then insert so the row takes the highest rowid (front of the list)
		if err := tx.Where("content_id = ?", r.ContentID).Delete(&database.ProgressRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous record: %w", err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		return tx.Exec(
			"DELETE FROM progress_records WHERE rowid NOT IN (SELECT rowid FROM progress_records ORDER BY rowid DESC LIMIT ?)",
			s.maxRecords,
		).Error
	})
	if err != nil {
		s.logger.Debug("progress save dropped", "content_id", r.ContentID, "error", err)
		return
	}

	s.logger.Debug("progress saved",
		"content_id", r.ContentID,
		"current_time", r.CurrentTime,
		"percentage", row.Percentage)
}

// List returns every record, most recent first
func (s *Store) List(ctx context.Context) []Record {
	if s.db == nil {
		return []Record{}
	}

	var rows []database.ProgressRecord
	if err := s.db.WithContext(ctx).Order("rowid DESC").Limit(s.maxRecords).Find(&rows).Error; err != nil {
		s.logger.Debug("progress list failed", "error", err)
		return []Record{}
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	return records
}

// Get returns the record for contentID
func (s *Store) Get(ctx context.Context, contentID string) (Record, bool) {
	if s.db == nil {
		return Record{}, false
	}

	var rows []database.ProgressRecord
	if err := s.db.WithContext(ctx).Where("content_id = ?", contentID).Limit(1).Find(&rows).Error; err != nil {
		s.logger.Debug("progress lookup failed", "content_id", contentID, "error", err)
		return Record{}, false
	}
	if len(rows) == 0 {
		return Record{}, false
	}
	return fromRow(rows[0]), true
}

// Remove deletes the record for contentID; absent ids are ignored
func (s *Store) Remove(ctx context.Context, contentID string) {
	if s.db == nil {
		return
	}
	if err := s.db.WithContext(ctx).Where("content_id = ?", contentID).Delete(&database.ProgressRecord{}).Error; err != nil {
		s.logger.Debug("progress remove dropped", "content_id", contentID, "error", err)
	}
}

func fromRow(row database.ProgressRecord) Record {
	return Record{
		ContentID:    row.ContentID,
		Title:        row.Title,
		ThumbnailURL: row.ThumbnailURL,
		CurrentTime:  row.CurrentTime,
		Duration:     row.Duration,
		Percentage:   row.Percentage,
		Timestamp:    row.Timestamp,
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// FormatRemaining renders the time left the way the continue-watching row shows it
func FormatRemaining(d time.Duration) string {
	hrs := int(d / time.Hour)
	mins := int((d % time.Hour) / time.Minute)
	if hrs > 0 {
		return fmt.Sprintf("%dh %dm left", hrs, mins)
	}
	return fmt.Sprintf("%dm left", mins)
}

package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ProgressRecord is a continue-watching snapshot for one title.
// Rows are ordered by rowid: the most recently written row has the highest rowid.
type ProgressRecord struct {
	ContentID    string    `gorm:"primaryKey"`
	Title        string    `gorm:"not null;default:''"`
	ThumbnailURL string    `gorm:"not null;default:''"`
	CurrentTime  float64   `gorm:"not null;default:0"` // seconds
	Duration     float64   `gorm:"not null;default:0"` // seconds
	Percentage   float64   `gorm:"not null;default:0"`
	Timestamp    time.Time `gorm:"index"`
}

// TableName overrides the table name
func (ProgressRecord) TableName() string {
	return "progress_records"
}

// DownloadJob is a simulated download
type DownloadJob struct {
	ID          string     `gorm:"primaryKey"` // content id
	Title       string     `gorm:"not null"`
	Thumbnail   string     `gorm:"not null;default:''"`
	Size        string     `gorm:"not null;default:''"`
	Quality     string     `gorm:"not null;default:''"`
	MediaURL    string     `gorm:"not null;default:''"`
	Status      string     `gorm:"not null;index"` // downloading, completed, error, paused
	Progress    int        `gorm:"not null;default:0"`
	AddedAt     time.Time  `gorm:"not null"`
	CompletedAt *time.Time `gorm:""`
}

// TableName overrides the table name
func (DownloadJob) TableName() string {
	return "download_jobs"
}

// WatchlistItem is a title saved for later
type WatchlistItem struct {
	ContentID    string    `gorm:"primaryKey"`
	Title        string    `gorm:"not null"`
	Type         string    `gorm:"not null;default:''"` // movie, series
	ThumbnailURL string    `gorm:"not null;default:''"`
	Year         int       `gorm:"default:0"`
	Rating       string    `gorm:"default:''"`
	Duration     string    `gorm:"default:''"`
	Genre        string    `gorm:"default:''"` // comma separated
	AddedAt      time.Time `gorm:"not null"`
}

// TableName overrides the table name
func (WatchlistItem) TableName() string {
	return "watchlist_items"
}

// Setting represents a key-value store for application settings
type Setting struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// TableName overrides the table name
func (Setting) TableName() string {
	return "settings"
}

// Migrate creates the schema, then applies SQL migrations that repair rows
// written by older builds
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&ProgressRecord{},
		&DownloadJob{},
		&WatchlistItem{},
		&Setting{},
	); err != nil {
		return err
	}
	if err := RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

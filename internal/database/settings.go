package database

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys for player preferences remembered between sessions
const (
	SettingVolume   = "player.volume"
	SettingSubtitle = "player.subtitle"
	SettingQuality  = "player.quality"
)

// GetSetting returns the stored value for key.
// Returns empty string if nothing is stored (not an error).
func GetSetting(db *gorm.DB, key string) (string, error) {
	var s Setting
	err := db.Where("key = ?", key).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// SaveSetting stores or replaces the value for key
func SaveSetting(db *gorm.DB, key, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Setting{Key: key, Value: value, UpdatedAt: time.Now()}).Error
}

// GetFloatSetting parses a stored float, returning fallback when absent or malformed
func GetFloatSetting(db *gorm.DB, key string, fallback float64) float64 {
	raw, err := GetSetting(db, key)
	if err != nil || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// ClearSetting removes key. Missing keys are not an error.
func ClearSetting(db *gorm.DB, key string) error {
	return db.Where("key = ?", key).Delete(&Setting{}).Error
}

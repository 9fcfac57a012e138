package database

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migration is one embedded SQL file
type migration struct {
	filename string
	name     string
	sql      string
}

// RunMigrations applies the embedded SQL files that schema_migrations has no
// row for, oldest first. It runs after AutoMigrate so the tables exist.
func RunMigrations(db *gorm.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := getMigrations()
	if err != nil {
		return fmt.Errorf("failed to get migrations: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}

		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.filename, err)
		}
	}

	return nil
}

// createMigrationsTable keeps one row per applied migration
func createMigrationsTable(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

// getMigrations loads the embedded files sorted by their date prefix
func getMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := migrationsFS.ReadFile(path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		name := extractMigrationName(entry.Name())
		migrations = append(migrations, migration{
			filename: entry.Name(),
			name:     name,
			sql:      string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].name < migrations[j].name
	})

	return migrations, nil
}

var migrationFile = regexp.MustCompile(`^(\d{8})_.+\.sql$`)

// extractMigrationName returns the date prefix of a YYYYMMDD_description.sql
// file. Other names are used as is.
func extractMigrationName(filename string) string {
	matches := migrationFile.FindStringSubmatch(filename)
	if len(matches) < 2 {
		return filename
	}
	return matches[1]
}

// getAppliedMigrations returns the set of recorded migration names
func getAppliedMigrations(db *gorm.DB) (map[string]bool, error) {
	var rows []struct {
		Name string `gorm:"column:name"`
	}

	if err := db.Table("schema_migrations").Pluck("name", &rows).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool)
	for _, row := range rows {
		applied[row.Name] = true
	}

	return applied, nil
}

// applyMigration runs m and records it in one transaction
func applyMigration(db *gorm.DB, m migration) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := checkMigrationPrerequisites(tx, m); err != nil {
		tx.Rollback()
		// Nothing to repair without the table; record it so it never runs later
		if ignoreErr := db.Exec("INSERT OR IGNORE INTO schema_migrations (name) VALUES (?)", m.name).Error; ignoreErr != nil {
			return fmt.Errorf("failed to record skipped migration %s: %w", m.filename, ignoreErr)
		}
		return nil
	}

	if err := tx.Exec(m.sql).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", m.name).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// checkMigrationPrerequisites checks if the migration can be applied.
// A migration names the table it works on in a "-- table: name" header and is
// skipped when that table does not exist.
func checkMigrationPrerequisites(db *gorm.DB, m migration) error {
	table := requiredTable(m.sql)
	if table == "" {
		return nil
	}

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s table does not exist yet", table)
	}
	return nil
}

var tableHeader = regexp.MustCompile(`(?m)^--\s*table:\s*(\w+)\s*$`)

func requiredTable(sql string) string {
	matches := tableHeader.FindStringSubmatch(sql)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

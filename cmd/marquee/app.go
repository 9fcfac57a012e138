package main

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/marquee-tv/marquee/internal/catalog"
	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/downloads"
	"github.com/marquee-tv/marquee/internal/progress"
	"github.com/marquee-tv/marquee/internal/watchlist"
)

// app holds the services shared by every command
type app struct {
	catalog   *catalog.Service
	progress  *progress.Store
	downloads *downloads.Manager
	watchlist *watchlist.Service
}

func newApp(c *config.Config, db *gorm.DB, logger *slog.Logger) (*app, error) {
	mgr, err := downloads.NewManager(db, &c.Downloads, downloads.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create download manager: %w", err)
	}

	return &app{
		catalog: catalog.NewService(catalog.NewSource(&c.Catalog, logger), logger),
		progress: progress.NewStore(db,
			progress.WithMaxRecords(c.Progress.MaxRecords),
			progress.WithLogger(logger),
		),
		downloads: mgr,
		watchlist: watchlist.NewService(db, logger),
	}, nil
}

func (a *app) close() {
	a.downloads.Close()
}

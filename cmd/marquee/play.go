package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/marquee-tv/marquee/internal/catalog"
	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/database"
	"github.com/marquee-tv/marquee/internal/player"
	"github.com/marquee-tv/marquee/internal/player/mpv"
	"github.com/marquee-tv/marquee/internal/player/simulated"
	"github.com/marquee-tv/marquee/internal/progress"
	"github.com/marquee-tv/marquee/internal/tui"
	"github.com/marquee-tv/marquee/internal/tui/utils"
)

// playCmd opens a title in the player
var playCmd = &cobra.Command{
	Use:   "play <content-id>",
	Short: "Watch a title",
	Long: `Play a title from the catalog.

Playback resumes where you stopped unless the title was nearly finished or
--from-start is given. Volume, subtitle and quality choices are remembered
for the next session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, _ := cmd.Flags().GetString("backend")
		fromStart, _ := cmd.Flags().GetBool("from-start")
		mediaURL, _ := cmd.Flags().GetString("url")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := conf()
		content, err := services.catalog.Get(ctx, args[0])
		if err != nil {
			if !errors.Is(err, catalog.ErrNotFound) || mediaURL == "" {
				return fmt.Errorf("failed to get content: %w", err)
			}
			content = catalog.Content{ID: args[0], Title: args[0]}
		}
		if mediaURL != "" {
			content.VideoURL = mediaURL
		}
		if backend == "" {
			backend = c.Player.Backend
		}

		media, err := newMedia(backend, &c.Player, content.Title)
		if err != nil {
			return err
		}

		engine, err := player.NewEngine(media, &c.Player,
			player.WithProgressSaver(services.progress),
			player.WithDownloader(services.downloads),
			player.WithDefaults(loadDefaults(db, &c.Player)),
			player.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create player: %w", err)
		}

		var last player.Session
		engine.OnClose(func(s player.Session) {
			last = s
			rememberPreferences(db, s)
		})

		services.downloads.Start(ctx)
		defer services.downloads.Stop()

		ref := player.ContentRef{
			ContentID:    content.ID,
			Title:        content.Title,
			ThumbnailURL: content.ThumbnailURL,
			MediaURL:     content.VideoURL,
		}
		if !fromStart {
			if r, ok := services.progress.Get(ctx, content.ID); ok {
				ref.StartAt = resumePosition(r, c.Player.ResumeThreshold)
			}
		}

		if err := engine.Open(ctx, ref); err != nil {
			// The view shows the unavailable fallback
			logger.Warn("failed to load media", "content_id", content.ID, "error", err)
		}

		runErr := tui.RunPlayer(ctx, engine, &c.UI)
		engine.Close()
		if runErr != nil {
			return runErr
		}

		if last.Duration > 0 {
			fmt.Printf("Stopped %s at %s of %s (%.0f%%)\n",
				last.Title,
				utils.FormatClock(last.CurrentTime),
				utils.FormatClock(last.Duration),
				last.Percentage())
		}
		return nil
	},
}

func init() {
	playCmd.Flags().StringP("backend", "b", "", "media backend: mpv or simulated (default: player.backend)")
	playCmd.Flags().Bool("from-start", false, "ignore saved progress")
	playCmd.Flags().String("url", "", "play this media URL instead of the catalog's")
}

func newMedia(backend string, c *config.PlayerConfig, title string) (player.Media, error) {
	switch backend {
	case "mpv":
		m, err := mpv.New(c,
			mpv.WithTitle(title),
			mpv.WithDebug(debugMode),
			mpv.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start mpv backend: %w", err)
		}
		return m, nil
	case "simulated":
		return simulated.New(c.SimulatedDuration, simulated.WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected mpv or simulated)", backend)
	}
}

// loadDefaults returns the remembered preferences, falling back to config
func loadDefaults(db *gorm.DB, c *config.PlayerConfig) player.Defaults {
	d := player.Defaults{
		Volume:   database.GetFloatSetting(db, database.SettingVolume, 1),
		Quality:  c.DefaultQuality,
		Subtitle: c.DefaultSubtitle,
	}
	if q, err := database.GetSetting(db, database.SettingQuality); err == nil && player.ValidQuality(q) {
		d.Quality = q
	}
	if s, err := database.GetSetting(db, database.SettingSubtitle); err == nil && player.ValidSubtitle(s) {
		d.Subtitle = s
	}
	return d
}

func rememberPreferences(db *gorm.DB, s player.Session) {
	if s.SessionID == "" {
		return
	}
	settings := map[string]string{
		database.SettingVolume:   strconv.FormatFloat(s.Volume, 'f', 2, 64),
		database.SettingQuality:  s.Quality,
		database.SettingSubtitle: s.Subtitle,
	}
	for k, v := range settings {
		if err := database.SaveSetting(db, k, v); err != nil {
			logger.Debug("failed to save setting", "key", k, "error", err)
		}
	}
}

// resumePosition returns where to pick a title up again. Titles watched
// past threshold percent start over.
func resumePosition(r progress.Record, threshold float64) time.Duration {
	if r.Percentage >= threshold {
		return 0
	}
	return time.Duration(r.CurrentTime * float64(time.Second))
}

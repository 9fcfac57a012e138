package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/database"
	"github.com/marquee-tv/marquee/internal/player"
	"github.com/marquee-tv/marquee/internal/progress"
)

func TestResumePosition(t *testing.T) {
	r := progress.Record{ContentID: "1", CurrentTime: 754.5, Duration: 3600, Percentage: 20.9}
	assert.Equal(t, 754500*time.Millisecond, resumePosition(r, 95))

	r.Percentage = 96
	assert.Zero(t, resumePosition(r, 95))
}

func TestPreferencesRoundTrip(t *testing.T) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.OpenMemory()
	require.NoError(t, err)
	defer database.Close(db)

	pc := config.Default().Player
	d := loadDefaults(db, &pc)
	assert.Equal(t, 1.0, d.Volume)
	assert.Equal(t, pc.DefaultQuality, d.Quality)
	assert.Equal(t, pc.DefaultSubtitle, d.Subtitle)

	rememberPreferences(db, player.Session{SessionID: "s1", Volume: 0.35, Quality: "720p", Subtitle: "French"})
	d = loadDefaults(db, &pc)
	assert.InDelta(t, 0.35, d.Volume, 1e-9)
	assert.Equal(t, "720p", d.Quality)
	assert.Equal(t, "French", d.Subtitle)

	// A session that never opened leaves the preferences alone
	rememberPreferences(db, player.Session{})
	assert.Equal(t, "720p", loadDefaults(db, &pc).Quality)
}

func TestLoadDefaultsIgnoresUnknownValues(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.SaveSetting(db, database.SettingQuality, "8K"))
	require.NoError(t, database.SaveSetting(db, database.SettingSubtitle, "Klingon"))

	pc := config.Default().Player
	d := loadDefaults(db, &pc)
	assert.Equal(t, pc.DefaultQuality, d.Quality)
	assert.Equal(t, pc.DefaultSubtitle, d.Subtitle)
}

func TestSkipsServices(t *testing.T) {
	assert.True(t, skipsServices(versionCmd))
	assert.True(t, skipsServices(configPathCmd))
	assert.True(t, skipsServices(configInitCmd))
	assert.False(t, skipsServices(configShowCmd))
	assert.False(t, skipsServices(playCmd))
	assert.False(t, skipsServices(rootCmd))
}

func TestApplyFlags(t *testing.T) {
	defer func() { debugMode, logLevel, noColor = false, "", false }()

	c := config.Default()
	debugMode = true
	applyFlags(c)
	assert.Equal(t, "debug", c.Logging.Level)

	logLevel = "warn"
	noColor = true
	c.Logging.Color = true
	applyFlags(c)
	assert.Equal(t, "warn", c.Logging.Level)
	assert.False(t, c.Logging.Color)
}

func TestCleanupAfterFailedCommand(t *testing.T) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	db, err = database.OpenMemory()
	require.NoError(t, err)
	services, err = newApp(config.Default(), db, logger)
	require.NoError(t, err)

	cmd := &cobra.Command{
		Use:           "fail",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("catalog unreachable")
		},
	}
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())

	assert.Nil(t, services, "services are closed even though RunE failed")
	assert.Nil(t, db)

	// a second run is a no-op
	cleanup()
}

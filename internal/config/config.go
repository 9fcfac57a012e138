package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for marquee
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Player    PlayerConfig    `mapstructure:"player"`
	Progress  ProgressConfig  `mapstructure:"progress"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	UI        UIConfig        `mapstructure:"ui"`
}

// LoggingConfig controls the slog handler and log rotation
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text or json
	File       string `mapstructure:"file"`   // empty = default state dir, "-" = stderr
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Color      bool   `mapstructure:"color"`
}

// DatabaseConfig controls the local SQLite store
type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
	WALMode        bool   `mapstructure:"wal_mode"`
	AutoVacuum     bool   `mapstructure:"auto_vacuum"`
}

// PlayerConfig holds playback engine timings and the media backend choice
type PlayerConfig struct {
	Backend            string        `mapstructure:"backend"` // mpv or simulated
	DefaultQuality     string        `mapstructure:"default_quality"`
	DefaultSubtitle    string        `mapstructure:"default_subtitle"`
	ProgressInterval   time.Duration `mapstructure:"progress_interval"`
	OverlayTimeout     time.Duration `mapstructure:"overlay_timeout"`
	QualitySwitchDelay time.Duration `mapstructure:"quality_switch_delay"`
	SeekStep           time.Duration `mapstructure:"seek_step"`
	VolumeStep         float64       `mapstructure:"volume_step"`
	LoadUserConfig     bool          `mapstructure:"load_user_config"`
	SimulatedDuration  time.Duration `mapstructure:"simulated_duration"`
	ResumeThreshold    float64       `mapstructure:"resume_threshold"` // percent; at or above it playback starts from 0
	MPVArgs            []string      `mapstructure:"mpv_args"`
}

// ProgressConfig bounds the continue-watching collection
type ProgressConfig struct {
	MaxRecords int `mapstructure:"max_records"`
}

// DownloadsConfig controls the download simulation
type DownloadsConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	MinIncrement int           `mapstructure:"min_increment"`
	MaxIncrement int           `mapstructure:"max_increment"`
	AutoResume   bool          `mapstructure:"auto_resume"`
	DefaultSize  string        `mapstructure:"default_size"`
}

// CatalogConfig selects where content records come from
type CatalogConfig struct {
	Path       string        `mapstructure:"path"`     // local content.json / content.yaml
	APIBase    string        `mapstructure:"api_base"` // remote API, wins over Path when set
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	ShareBase  string        `mapstructure:"share_base"` // prefix of links produced by catalog share
}

// UIConfig holds terminal front end settings
type UIConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MouseMotion     bool          `mapstructure:"mouse_motion"`
}

// SetDefaults registers every default value on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
	v.SetDefault("logging.color", true)

	v.SetDefault("database.path", filepath.Join(getDataDir(), "marquee", "marquee.db"))
	v.SetDefault("database.max_connections", 4)
	v.SetDefault("database.wal_mode", true)
	v.SetDefault("database.auto_vacuum", true)

	v.SetDefault("player.backend", "mpv")
	v.SetDefault("player.default_quality", "1080p")
	v.SetDefault("player.default_subtitle", "English")
	v.SetDefault("player.progress_interval", 5*time.Second)
	v.SetDefault("player.overlay_timeout", 3*time.Second)
	v.SetDefault("player.quality_switch_delay", 1500*time.Millisecond)
	v.SetDefault("player.seek_step", 10*time.Second)
	v.SetDefault("player.volume_step", 0.1)
	v.SetDefault("player.load_user_config", false)
	v.SetDefault("player.simulated_duration", 90*time.Minute)
	v.SetDefault("player.resume_threshold", 95.0)
	v.SetDefault("player.mpv_args", []string{})

	v.SetDefault("progress.max_records", 20)

	v.SetDefault("downloads.tick_interval", 1500*time.Millisecond)
	v.SetDefault("downloads.min_increment", 5)
	v.SetDefault("downloads.max_increment", 19)
	v.SetDefault("downloads.auto_resume", true)
	v.SetDefault("downloads.default_size", "Unknown")

	v.SetDefault("catalog.path", filepath.Join(getDataDir(), "marquee", "content.json"))
	v.SetDefault("catalog.api_base", "")
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.max_retries", 2)
	v.SetDefault("catalog.share_base", "https://marquee.tv")

	v.SetDefault("ui.refresh_interval", 250*time.Millisecond)
	v.SetDefault("ui.mouse_motion", true)
}

// Default returns a Config populated only from defaults
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// Defaults are static, a failure here is a programming error
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads configuration from cfgFile, or from the default location when empty.
// A missing config file is not an error.
func Load(cfgFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(getConfigDir(), "marquee"))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if cfgFile == "" || !os.IsNotExist(err) {
				return nil, nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, v, nil
}

// Validate rejects configurations the engine cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Player.ProgressInterval <= 0 {
		errs = append(errs, fmt.Errorf("player.progress_interval must be positive"))
	}
	if c.Player.OverlayTimeout <= 0 {
		errs = append(errs, fmt.Errorf("player.overlay_timeout must be positive"))
	}
	if c.Player.QualitySwitchDelay < 0 {
		errs = append(errs, fmt.Errorf("player.quality_switch_delay cannot be negative"))
	}
	if c.Player.VolumeStep <= 0 || c.Player.VolumeStep > 1 {
		errs = append(errs, fmt.Errorf("player.volume_step must be in (0, 1]"))
	}
	switch c.Player.Backend {
	case "mpv", "simulated":
	default:
		errs = append(errs, fmt.Errorf("player.backend %q is not one of mpv, simulated", c.Player.Backend))
	}
	if c.Progress.MaxRecords < 1 {
		errs = append(errs, fmt.Errorf("progress.max_records must be at least 1"))
	}
	if c.Downloads.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("downloads.tick_interval must be positive"))
	}
	if c.Downloads.MinIncrement < 1 || c.Downloads.MaxIncrement < c.Downloads.MinIncrement {
		errs = append(errs, fmt.Errorf("downloads increments must satisfy 1 <= min_increment <= max_increment"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// InitializeDirs creates the config, data and state directories
func InitializeDirs() error {
	for _, dir := range []string{
		filepath.Join(getConfigDir(), "marquee"),
		filepath.Join(getDataDir(), "marquee"),
		filepath.Join(getStateDir(), "marquee"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigFilePath returns the default config file location
func ConfigFilePath() string {
	return filepath.Join(getConfigDir(), "marquee", "config.yaml")
}

func getConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

func getDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "share")
}

func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "state")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}

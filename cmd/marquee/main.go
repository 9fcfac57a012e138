package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/database"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
	// Global flags
	cfgFile   string
	logLevel  string
	noColor   bool
	debugMode bool
	ephemeral bool

	// Global config, logger and services
	cfgMu    sync.RWMutex
	cfg      *config.Config
	vip      *viper.Viper
	logger   *slog.Logger
	db       *gorm.DB
	services *app
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "A terminal storefront for watching films and series",
	Long: `marquee browses a video catalog, plays titles through mpv and remembers
where you stopped watching.

It keeps a continue-watching list, a watchlist and a queue of offline
downloads in a local SQLite database.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that only touch the config file skip the database
		if skipsServices(cmd) {
			return nil
		}

		if err := config.InitializeDirs(); err != nil {
			return fmt.Errorf("failed to initialize directories: %w", err)
		}

		loaded, v, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(loaded)
		setConfig(loaded)
		vip = v

		logger, err = config.InitLogger(&loaded.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		slog.SetDefault(logger)

		if ephemeral {
			db, err = database.OpenMemory()
		} else {
			db, err = database.Open(&loaded.Database)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		services, err = newApp(loaded, db, logger)
		if err != nil {
			return err
		}

		// Setup hot reload. Running sessions keep the settings they were
		// built with, later sessions in the same process see the new ones.
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("Config file changed", "name", e.Name)
			next := &config.Config{}
			if err := v.Unmarshal(next); err != nil {
				logger.Error("Failed to reload config", "error", err)
				return
			}
			applyFlags(next)
			if err := next.Validate(); err != nil {
				logger.Error("Ignoring invalid config", "error", err)
				return
			}
			setConfig(next)
			logger.Info("Config reloaded")
		})

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContinueList(cmd, args)
	},
}

func init() {
	// Finalizers run even when RunE fails, unlike PersistentPostRun
	cobra.OnFinalize(cleanup)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/marquee/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug mode (verbose logging, mpv output on stderr)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "use an in-memory database that is discarded on exit")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(watchlistCmd)
	rootCmd.AddCommand(downloadsCmd)
}

// cleanup stops the services and closes the database. Safe to call twice.
func cleanup() {
	if services != nil {
		services.close()
		services = nil
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
		db = nil
	}
}

func skipsServices(cmd *cobra.Command) bool {
	if cmd.Name() == "version" {
		return true
	}
	return cmd.Parent() != nil && cmd.Parent().Name() == "config" && cmd.Name() != "show"
}

// applyFlags layers command line overrides on top of c
func applyFlags(c *config.Config) {
	if debugMode && logLevel == "" {
		c.Logging.Level = "debug"
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor {
		c.Logging.Color = false
	}
}

func setConfig(c *config.Config) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg = c
}

// conf returns the current configuration
func conf() *config.Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// versionCmd displays version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marquee version %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
	},
}

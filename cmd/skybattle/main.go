// skybattle is a side-scrolling air combat game for the terminal.
//
// Usage:
//
//	skybattle list                 - List the campaign levels
//	skybattle play [level]         - Fly a level (default: the first)
//	skybattle menu                 - Pick levels interactively
//	skybattle times [level]        - Show best times and recent attempts
//	skybattle serve                - Host the game over SSH with an HTTP spectator API
//	skybattle simulate <level>     - Fly a level headless with the autopilot
//
// Global flags:
//
//	--config <path>      - Settings file (default: ~/.skybattle/settings.yaml)
//	--db <path>          - Database path (default: ~/.skybattle/skybattle.db)
//	--tick-ms <ms>       - Simulation tick interval (default: 50)
//	--seed <value>       - RNG seed for reproducible gameplay
//	--levels <dir>       - Directory of level YAML files
//	--difficulty <name>  - easy, normal or hard
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-skybattle/internal/config"
	"github.com/vovakirdan/tui-skybattle/internal/core"
	"github.com/vovakirdan/tui-skybattle/internal/platform/tui"
	"github.com/vovakirdan/tui-skybattle/internal/registry"
	"github.com/vovakirdan/tui-skybattle/internal/storage"
)

var (
	// Global flags
	flagConfig string

	v        = config.NewViper()
	settings config.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skybattle",
	Short: "Sky Battle - air combat in your terminal",
	Long: `Sky Battle is a side-scrolling air combat game for the terminal.
Fly your plane, shoot down enemy waves and beat your best times.

Available commands:
  list      - Show the campaign levels
  play      - Fly a level directly
  menu      - Interactive level picker
  times     - Best times and attempt history
  serve     - Host the game over SSH
  simulate  - Headless autopilot runs for balancing

Examples:
  skybattle list
  skybattle play first-contact
  skybattle menu --difficulty hard
  skybattle serve
  skybattle simulate flagship --runs 20`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		settings, err = config.LoadSettings(v, flagConfig)
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "Path to settings file")
	flags.String("db", "", "Path to database")
	flags.Int("tick-ms", 0, "Simulation tick interval in milliseconds")
	flags.Int64("seed", 0, "RNG seed (0 = random based on time)")
	flags.String("levels", "", "Directory of level YAML files")
	flags.String("archetypes", "", "Path to archetype tuning YAML")
	flags.String("difficulty", "", "Difficulty preset: easy, normal, hard")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	cobra.CheckErr(bindFlags(v, flags, map[string]string{
		"db":         "db",
		"tick_ms":    "tick-ms",
		"seed":       "seed",
		"levels_dir": "levels",
		"archetypes": "archetypes",
		"difficulty": "difficulty",
		"log_level":  "log-level",
	}))

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(timesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

// bindFlags binds settings keys to command-line flags.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("cannot bind flag %q: %w", name, err)
		}
	}
	return nil
}

// loadCatalog loads and validates the campaign.
func loadCatalog() (*registry.Catalog, error) {
	defs, err := config.LoadCampaign(settings.LevelsDir, settings.Archetypes)
	if err != nil {
		return nil, err
	}
	return registry.New(defs...)
}

// openStore opens the database. A failure is reported and the game runs
// without persistence.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(settings.DB)
	if err != nil {
		logger.Warn("could not open database, times will not be saved", "error", err)
		return nil
	}
	return store
}

// newLogger creates the application logger. Interactive commands pass a
// file so log lines never reach the alternate screen.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if lvl, err := log.ParseLevel(settings.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// openLogFile opens the log file for appending. On failure logs are
// discarded.
func openLogFile() (io.Writer, func()) {
	if settings.LogFile == "" {
		return io.Discard, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(settings.LogFile), 0o755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}

// runtimeConfig builds the runtime config from settings and the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:      width,
		ScreenH:      height,
		TickInterval: settings.TickInterval(),
		Seed:         settings.Seed,
	}
}

// difficulty returns the preset chosen by flag or settings.
func difficulty() config.DifficultyPreset {
	// LoadSettings has validated the name.
	d, _ := config.ParseDifficulty(settings.Difficulty)
	return d
}

// newEnv assembles the attempt host environment.
func newEnv(catalog *registry.Catalog, store *storage.Store, logger *log.Logger) tui.Env {
	return tui.Env{
		Catalog:    catalog,
		Store:      store,
		Config:     runtimeConfig(),
		Difficulty: difficulty(),
		Logger:     logger,
		Audio:      tui.NewBell(os.Stdout, settings.Bell),
		SteerHold:  tui.DefaultSteerHold,
	}
}

// Package main provides the CLI entrypoint for devopts.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/devopts/internal/config"
	"github.com/jmylchreest/devopts/internal/dbus"
	"github.com/jmylchreest/devopts/internal/settings"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose      bool
		configPath   string
		settingsPath string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "devopts",
	Short: "Quick settings popup for wearable devices",
	Long: `devopts opens the device options popup and inspects its state.

The popup lists the device toggles (flight mode, Wi-Fi, sound, mobile data,
power off, restart) available on this device. Commands that talk to a
running devoptsd use the session bus; the rest work directly on the
settings store.

Running devopts without a subcommand opens the popup in the terminal.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/devopts/devoptsd.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.settingsPath, "settings", "",
		"Path to settings file (default: ~/.local/share/devopts/settings.json)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// settingsPath resolves the settings file from the flag, the config, or
// the default location.
func settingsPath() (string, error) {
	if globalOpts.settingsPath != "" {
		return config.ExpandPath(globalOpts.settingsPath), nil
	}
	if cfg != nil && cfg.Settings.Path != "" {
		return config.ExpandPath(cfg.Settings.Path), nil
	}
	return settings.DefaultPath()
}

// openStore opens the settings store.
func openStore() (*settings.Store, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings path: %w", err)
	}
	return settings.Open(path, logger)
}

// deviceClient connects to the bus hosting the device services.
func deviceClient() *dbus.Client {
	bus := dbus.BusSession
	if cfg.DBus.System {
		bus = dbus.BusSystem
	}
	c := dbus.NewClient(bus, logger)
	c.SetRetry(cfg.DBus.RetryMax, cfg.DBus.RetryDelay.Duration())
	return c
}

// Package config handles loading and validating the devoptsd configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "3s", "500ms", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '3s', '500ms', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the configuration for devoptsd and the devopts CLI.
// Loaded from ~/.config/devopts/devoptsd.toml
type Config struct {
	Popup    PopupConfig    `toml:"popup"`
	Display  DisplayConfig  `toml:"display"`
	Layout   LayoutConfig   `toml:"layout"`
	Toast    ToastConfig    `toml:"toast"`
	Feedback FeedbackConfig `toml:"feedback"`
	Theme    ThemeConfig    `toml:"theme"`
	Options  OptionsConfig  `toml:"options"`
	Settings SettingsConfig `toml:"settings"`
	DBus     DBusConfig     `toml:"dbus"`
}

// PopupConfig selects which popup Show opens and which events close it.
type PopupConfig struct {
	Style           string `toml:"style"`              // "list" or "confirm"
	CloseOnLCDOff   bool   `toml:"close_on_lcd_off"`   // Close when the display turns off
	CloseOnPowerKey bool   `toml:"close_on_power_key"` // Close on the home-raise signal
}

// DisplayConfig contains popup window settings.
type DisplayConfig struct {
	Position string  `toml:"position"` // "center", "top-right", etc.
	OffsetX  int     `toml:"offset_x"` // Pixels from screen edge
	OffsetY  int     `toml:"offset_y"` // Pixels from screen edge
	Width    int     `toml:"width"`    // Popup width in pixels, 0 = from layout
	Monitor  int     `toml:"monitor"`  // 0 = default, 1+ = specific monitor
	Opacity  float64 `toml:"opacity"`  // 0.0-1.0 background opacity
}

// LayoutConfig contains layout policy settings.
type LayoutConfig struct {
	Adaptive bool   `toml:"adaptive"` // Pick the skin from the slot count
	Skin     string `toml:"skin"`     // Skin used when adaptive is false
	Dir      string `toml:"dir"`      // Extra layout template directory
}

// ToastConfig contains toast notice settings.
type ToastConfig struct {
	Timeout     Duration `toml:"timeout"`      // How long a toast stays up
	MinInterval Duration `toml:"min_interval"` // Identical toasts within this window are dropped
}

// FeedbackConfig contains feedback sound settings.
type FeedbackConfig struct {
	Enabled bool           `toml:"enabled"`
	Volume  int            `toml:"volume"` // 0-100
	Sounds  FeedbackSounds `toml:"sounds"`
}

// FeedbackSounds contains per-pattern sound file paths.
type FeedbackSounds struct {
	Tap         string `toml:"tap"`
	VibrationOn string `toml:"vibration_on"`
	SilentOff   string `toml:"silent_off"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// OptionsConfig controls which providers are registered.
type OptionsConfig struct {
	Disabled []string `toml:"disabled"` // Provider names to skip
}

// SettingsConfig locates the device settings store.
type SettingsConfig struct {
	Path  string `toml:"path"`  // Empty = $XDG_DATA_HOME/devopts/settings.json
	Watch bool   `toml:"watch"` // Reload on external edits
}

// DBusConfig contains bus connection settings.
type DBusConfig struct {
	System     bool     `toml:"system"`      // Use the system bus for device services
	RetryMax   int      `toml:"retry_max"`   // Connection retries before giving up
	RetryDelay Duration `toml:"retry_delay"` // Delay between attempts
}

// Popup styles.
const (
	StyleList    = "list"
	StyleConfirm = "confirm"
)

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Position represents a popup position on screen.
type Position string

const (
	PositionCenter       Position = "center"
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionCenter,
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// ValidSkins returns the skin names accepted by [layout] skin.
func ValidSkins() []string {
	return []string{"default", "two_items", "three_items"}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Popup: PopupConfig{
			Style:           StyleList,
			CloseOnLCDOff:   true,
			CloseOnPowerKey: true,
		},
		Display: DisplayConfig{
			Position: string(PositionCenter),
			Monitor:  0,
			Opacity:  1.0,
		},
		Layout: LayoutConfig{
			Adaptive: true,
			Skin:     "default",
		},
		Toast: ToastConfig{
			Timeout:     Duration(3 * time.Second),
			MinInterval: Duration(time.Second),
		},
		Feedback: FeedbackConfig{
			Enabled: true,
			Volume:  80,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Settings: SettingsConfig{
			Watch: true,
		},
		DBus: DBusConfig{
			System:     true,
			RetryMax:   10,
			RetryDelay: Duration(500 * time.Millisecond),
		},
	}
}

// ConfigDir returns the devopts configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "devopts"), nil
}

// ConfigPath returns the path to the daemon config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "devoptsd.toml"), nil
}

// LayoutsDir returns the user layout template directory.
// An explicit [layout] dir wins over ~/.config/devopts/layouts.
func (c *Config) LayoutsDir() string {
	if c.Layout.Dir != "" {
		return ExpandPath(c.Layout.Dir)
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "layouts")
}

// Load loads the configuration from path.
// An empty path means ConfigPath. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, or ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Popup.Style != StyleList && c.Popup.Style != StyleConfirm {
		return fmt.Errorf("invalid popup style %q, must be %q or %q", c.Popup.Style, StyleList, StyleConfirm)
	}

	if !slices.Contains(ValidPositions(), Position(c.Display.Position)) {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Display.Position, ValidPositions())
	}
	if c.Display.Width != 0 && (c.Display.Width < 100 || c.Display.Width > 1000) {
		return fmt.Errorf("width must be 0 or between 100 and 1000, got %d", c.Display.Width)
	}
	if c.Display.Opacity < 0 || c.Display.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %g", c.Display.Opacity)
	}

	if !slices.Contains(ValidSkins(), c.Layout.Skin) {
		return fmt.Errorf("invalid layout skin %q, must be one of: %v", c.Layout.Skin, ValidSkins())
	}

	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid color scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if c.Toast.Timeout.Duration() <= 0 {
		return fmt.Errorf("toast timeout must be positive, got %s", c.Toast.Timeout.Duration())
	}
	if c.Toast.MinInterval.Duration() < 0 {
		return fmt.Errorf("toast min_interval must not be negative, got %s", c.Toast.MinInterval.Duration())
	}

	if c.Feedback.Volume < 0 || c.Feedback.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Feedback.Volume)
	}

	if c.DBus.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative, got %d", c.DBus.RetryMax)
	}

	return nil
}

// IsDisabled reports whether the named provider is listed in [options] disabled.
func (c *Config) IsDisabled(name string) bool {
	return slices.Contains(c.Options.Disabled, name)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

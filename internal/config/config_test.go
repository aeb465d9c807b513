package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, StyleList, cfg.Popup.Style)
	assert.True(t, cfg.Popup.CloseOnLCDOff)
	assert.True(t, cfg.Popup.CloseOnPowerKey)
	assert.Equal(t, "center", cfg.Display.Position)
	assert.True(t, cfg.Layout.Adaptive)
	assert.Equal(t, "default", cfg.Layout.Skin)
	assert.Equal(t, 3*time.Second, cfg.Toast.Timeout.Duration())
	assert.Equal(t, time.Second, cfg.Toast.MinInterval.Duration())
	assert.True(t, cfg.Feedback.Enabled)
	assert.Equal(t, 80, cfg.Feedback.Volume)
	assert.Equal(t, 10, cfg.DBus.RetryMax)
	assert.Empty(t, cfg.Options.Disabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/devoptsd.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devoptsd.toml")

	content := `
[popup]
style = "confirm"
close_on_lcd_off = false

[display]
position = "top-right"
width = 360

[layout]
adaptive = false
skin = "three_items"
dir = "/tmp/layouts"

[toast]
timeout = "5s"
min_interval = "250ms"

[feedback]
enabled = false
volume = 40

[feedback.sounds]
tap = "~/sounds/tap.wav"

[options]
disabled = ["mobiledata", "restart"]

[settings]
path = "/tmp/settings.json"
watch = false

[dbus]
system = false
retry_max = 3
retry_delay = "1s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StyleConfirm, cfg.Popup.Style)
	assert.False(t, cfg.Popup.CloseOnLCDOff)
	assert.True(t, cfg.Popup.CloseOnPowerKey)
	assert.Equal(t, "top-right", cfg.Display.Position)
	assert.Equal(t, 360, cfg.Display.Width)
	assert.False(t, cfg.Layout.Adaptive)
	assert.Equal(t, "three_items", cfg.Layout.Skin)
	assert.Equal(t, "/tmp/layouts", cfg.LayoutsDir())
	assert.Equal(t, 5*time.Second, cfg.Toast.Timeout.Duration())
	assert.Equal(t, 250*time.Millisecond, cfg.Toast.MinInterval.Duration())
	assert.False(t, cfg.Feedback.Enabled)
	assert.Equal(t, 40, cfg.Feedback.Volume)
	assert.Equal(t, "~/sounds/tap.wav", cfg.Feedback.Sounds.Tap)
	assert.Equal(t, []string{"mobiledata", "restart"}, cfg.Options.Disabled)
	assert.Equal(t, "/tmp/settings.json", cfg.Settings.Path)
	assert.False(t, cfg.Settings.Watch)
	assert.False(t, cfg.DBus.System)
	assert.Equal(t, 3, cfg.DBus.RetryMax)
	assert.Equal(t, time.Second, cfg.DBus.RetryDelay.Duration())

	assert.True(t, cfg.IsDisabled("restart"))
	assert.False(t, cfg.IsDisabled("wifi"))
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devoptsd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"style", "[popup]\nstyle = \"grid\"\n"},
		{"position", "[display]\nposition = \"middle\"\n"},
		{"width", "[display]\nwidth = 50\n"},
		{"opacity", "[display]\nopacity = 1.5\n"},
		{"skin", "[layout]\nskin = \"grid\"\n"},
		{"color scheme", "[theme]\ncolor_scheme = \"sepia\"\n"},
		{"toast timeout", "[toast]\ntimeout = \"0s\"\n"},
		{"volume", "[feedback]\nvolume = 101\n"},
		{"retry", "[dbus]\nretry_max = -1\n"},
		{"duration", "[toast]\ntimeout = \"soon\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "devoptsd.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "devoptsd.toml")

	cfg := DefaultConfig()
	cfg.Popup.Style = StyleConfirm
	cfg.Toast.Timeout = Duration(1500 * time.Millisecond)
	cfg.Options.Disabled = []string{"wifi"}

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StyleConfirm, loaded.Popup.Style)
	assert.Equal(t, 1500*time.Millisecond, loaded.Toast.Timeout.Duration())
	assert.Equal(t, []string{"wifi"}, loaded.Options.Disabled)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"3s", 3 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"1m", time.Minute, false},
		{"2000", 2 * time.Second, false},
		{"0", 0, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/devopts/devoptsd.toml", path)

	cfg := DefaultConfig()
	assert.Equal(t, "/custom/config/devopts/layouts", cfg.LayoutsDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "sounds/tap.wav"), ExpandPath("~/sounds/tap.wav"))
	assert.Equal(t, "/abs/tap.wav", ExpandPath("/abs/tap.wav"))
	assert.Equal(t, "", ExpandPath(""))
}

package feedback

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/devopts/internal/config"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))
	return path
}

func TestManager_SoundMapping(t *testing.T) {
	dir := t.TempDir()
	vib := writeFile(t, dir, "vib.wav")
	silent := writeFile(t, dir, "silent.ogg")

	m := NewManager(config.FeedbackConfig{
		Enabled: true,
		Volume:  50,
		Sounds: config.FeedbackSounds{
			Tap:         filepath.Join(dir, "missing.wav"),
			VibrationOn: vib,
			SilentOff:   silent,
		},
	}, nil)

	_, ok := m.Sound(PatternTap)
	assert.False(t, ok, "missing file is skipped")

	path, ok := m.Sound(PatternVibrationOn)
	require.True(t, ok)
	assert.Equal(t, vib, path)

	path, ok = m.Sound(PatternSilentOff)
	require.True(t, ok)
	assert.Equal(t, silent, path)

	assert.InDelta(t, 0.5, m.player.Volume(), 1e-9)
}

func TestManager_PlaySkips(t *testing.T) {
	dir := t.TempDir()
	vib := writeFile(t, dir, "vib.wav")

	disabled := NewManager(config.FeedbackConfig{
		Enabled: false,
		Sounds:  config.FeedbackSounds{VibrationOn: vib},
	}, nil)
	assert.NoError(t, disabled.Play(PatternVibrationOn))
	assert.False(t, disabled.player.Cached(vib))

	unconfigured := NewManager(config.FeedbackConfig{Enabled: true}, nil)
	assert.NoError(t, unconfigured.Play(PatternTap))
}

func TestManager_PlayBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "tap.wav")

	m := NewManager(config.FeedbackConfig{
		Enabled: true,
		Volume:  80,
		Sounds:  config.FeedbackSounds{Tap: bad},
	}, nil)

	assert.Error(t, m.Play(PatternTap))
}

func TestManager_UpdateConfig(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.wav")
	second := writeFile(t, dir, "second.wav")

	m := NewManager(config.FeedbackConfig{
		Enabled: true,
		Sounds:  config.FeedbackSounds{Tap: first},
	}, nil)

	m.UpdateConfig(config.FeedbackConfig{
		Enabled: true,
		Volume:  20,
		Sounds:  config.FeedbackSounds{SilentOff: second},
	})

	_, ok := m.Sound(PatternTap)
	assert.False(t, ok)
	path, ok := m.Sound(PatternSilentOff)
	require.True(t, ok)
	assert.Equal(t, second, path)
	assert.InDelta(t, 0.2, m.player.Volume(), 1e-9)
}

func TestPlayer_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.wav")},
		{"unsupported format", writeFile(t, dir, "tap.flac")},
		{"corrupt wav", writeFile(t, dir, "tap.wav")},
	}

	p := NewPlayer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, p.Play(tt.path))
			assert.Error(t, p.Preload(tt.path))
			assert.False(t, p.Cached(tt.path))
		})
	}

	assert.NoError(t, p.Play(""))
	assert.NoError(t, p.Preload(""))
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p := NewPlayer(nil)

	p.SetVolume(1.7)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-3)
	assert.Equal(t, 0.0, p.Volume())
	p.SetVolume(0.25)
	assert.Equal(t, 0.25, p.Volume())
}

func TestVolumeToGain(t *testing.T) {
	assert.Equal(t, 0.0, volumeToGain(1))
	assert.InDelta(t, -1.0, volumeToGain(0.5), 1e-9)
	assert.InDelta(t, -2.0, volumeToGain(0.25), 1e-9)
	assert.Equal(t, -10.0, volumeToGain(0))
	assert.False(t, math.IsInf(volumeToGain(-1), 0))
}

func TestWatcher_ReportsModifiedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tap.wav")
	untouched := writeFile(t, dir, "other.wav")

	var (
		mu      sync.Mutex
		changed []string
	)
	w := NewWatcher(func(p string) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, p)
	}, nil)
	w.Watch(path)
	w.Watch(untouched)
	w.Watch("")

	w.poll()
	assert.Empty(t, changed)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	w.poll()
	w.poll()
	assert.Equal(t, []string{path}, changed, "a change is reported once")
}

func TestWatcher_StartStop(t *testing.T) {
	w := NewWatcher(nil, nil)
	w.SetPollInterval(10 * time.Millisecond)

	w.Start(t.Context())
	w.Start(t.Context())
	w.Stop()
	w.Stop()
}

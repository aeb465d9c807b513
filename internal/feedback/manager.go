package feedback

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/devopts/internal/config"
	"github.com/jmylchreest/devopts/internal/feedback/pattern"
)

// Pattern names a feedback event.
type Pattern = pattern.Pattern

const (
	PatternTap         = pattern.Tap
	PatternVibrationOn = pattern.VibrationOn
	PatternSilentOff   = pattern.SilentOff
)

// Manager maps feedback patterns to configured sound files.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	cfg     config.FeedbackConfig
	sounds  map[Pattern]string
}

// NewManager creates a manager for cfg. Missing sound files are logged and
// skipped.
func NewManager(cfg config.FeedbackConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player.InvalidateCache, logger),
		sounds:  make(map[Pattern]string),
	}
	m.apply(cfg)
	return m
}

func (m *Manager) apply(cfg config.FeedbackConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = cfg
	m.player.SetVolume(float64(cfg.Volume) / 100.0)

	clear(m.sounds)
	configured := map[Pattern]string{
		PatternTap:         cfg.Sounds.Tap,
		PatternVibrationOn: cfg.Sounds.VibrationOn,
		PatternSilentOff:   cfg.Sounds.SilentOff,
	}
	for pattern, path := range configured {
		if path == "" {
			continue
		}
		path = config.ExpandPath(path)
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("feedback sound not found", "pattern", pattern.String(), "path", path)
			continue
		}
		m.sounds[pattern] = path
	}
}

// Sound returns the file configured for pattern.
func (m *Manager) Sound(p Pattern) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[p]
	return path, ok
}

// Start preloads the configured sounds and starts watching them.
func (m *Manager) Start(ctx context.Context) {
	m.preload()
	m.watcher.Start(ctx)
	m.logger.Info("feedback manager started", "sounds", len(m.snapshot()))
}

// Stop stops the watcher and releases the speaker.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
}

func (m *Manager) snapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		paths = append(paths, path)
	}
	return paths
}

func (m *Manager) preload() {
	m.watcher.Reset()
	for _, path := range m.snapshot() {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
}

// Play plays the sound for p. Disabled feedback and unconfigured patterns
// are silently skipped.
func (m *Manager) Play(p Pattern) error {
	m.mu.RLock()
	enabled := m.cfg.Enabled
	path, ok := m.sounds[p]
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured for pattern", "pattern", p.String())
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg config.FeedbackConfig) {
	m.player.ClearCache()
	m.apply(cfg)
	m.preload()
	m.logger.Debug("feedback config updated")
}

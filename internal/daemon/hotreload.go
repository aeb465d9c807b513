package daemon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jmylchreest/devopts/internal/config"
)

// DefaultConfigPollInterval is how often ConfigWatcher checks the file.
const DefaultConfigPollInterval = time.Second

// ConfigWatcher polls the daemon config file and hands each new valid
// config to the reload callback. Rewrites that leave the content unchanged
// are ignored.
type ConfigWatcher struct {
	logger *slog.Logger
	path   string

	mu       sync.RWMutex
	interval time.Duration
	onReload func(cfg *config.Config)
	onError  func(err error)
	current  *config.Config
	seen     stamp

	stop chan struct{}
	done chan struct{}
}

// stamp identifies one version of the file.
type stamp struct {
	modTime time.Time
	sum     [sha256.Size]byte
}

// NewConfigWatcher creates a watcher for the config at path. An empty path
// means config.ConfigPath.
func NewConfigWatcher(path string, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &ConfigWatcher{
		logger:   logger,
		path:     path,
		interval: DefaultConfigPollInterval,
	}, nil
}

// Path returns the watched file.
func (w *ConfigWatcher) Path() string {
	return w.path
}

// SetPollInterval sets how often the file is checked. It applies from the
// next Start.
func (w *ConfigWatcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = interval
}

// SetReloadCallback sets the function called with each new valid config.
// It runs on the watcher goroutine.
func (w *ConfigWatcher) SetReloadCallback(fn func(cfg *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// SetErrorCallback sets the function called when a changed file fails to
// load or validate.
func (w *ConfigWatcher) SetErrorCallback(fn func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start records initial as the current config and begins polling. Starting
// a running watcher does nothing.
func (w *ConfigWatcher) Start(ctx context.Context, initial *config.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop != nil {
		return nil
	}
	w.current = initial
	if s, err := readStamp(w.path); err == nil {
		w.seen = s
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	go w.poll(ctx, w.interval, w.stop, w.done)

	w.logger.Debug("config watcher started", "path", w.path, "interval", w.interval)
	return nil
}

// Stop stops polling and waits for the watcher goroutine to exit.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	w.logger.Debug("config watcher stopped")
}

// Current returns the last config that loaded and validated.
func (w *ConfigWatcher) Current() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) poll(ctx context.Context, interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check reloads the config when the file content changed. An invalid file
// keeps the current config.
func (w *ConfigWatcher) check() {
	s, err := readStamp(w.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug("failed to read config file", "path", w.path, "error", err)
		}
		return
	}

	w.mu.Lock()
	if s.modTime.Equal(w.seen.modTime) || bytes.Equal(s.sum[:], w.seen.sum[:]) {
		w.seen.modTime = s.modTime
		w.mu.Unlock()
		return
	}
	w.seen = s
	onReload, onError := w.onReload, w.onError
	w.mu.Unlock()

	cfg, err := config.Load(w.path)
	if err != nil {
		w.logger.Warn("config file changed but failed to load", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(cfg)
	}
}

func readStamp(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{modTime: info.ModTime(), sum: sha256.Sum256(data)}, nil
}

package feedback

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"
)

// Watcher polls sound files and reports the ones whose modification time
// moved forward.
type Watcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	onChange func(path string)

	paths    map[string]time.Time
	interval time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher that calls onChange for every modified path.
func NewWatcher(onChange func(path string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		onChange: onChange,
		paths:    make(map[string]time.Time),
		interval: 2 * time.Second,
	}
}

// SetPollInterval sets the polling interval. Takes effect on the next Start.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = interval
}

// Watch adds path to the watch list.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}

	var mtime time.Time
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths[path] = mtime
}

// Reset forgets every watched path.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.paths)
}

// Start begins polling until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.interval
	w.mu.Unlock()

	go w.loop(ctx, interval)
	w.logger.Debug("feedback watcher started", "interval", interval)
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
	w.logger.Debug("feedback watcher stopped")
}

func (w *Watcher) loop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	w.mu.RLock()
	paths := maps.Clone(w.paths)
	w.mu.RUnlock()

	for path, last := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().After(last) {
			continue
		}

		w.logger.Debug("sound file changed", "path", path)
		w.mu.Lock()
		w.paths[path] = info.ModTime()
		w.mu.Unlock()

		if w.onChange != nil {
			w.onChange(path)
		}
	}
}

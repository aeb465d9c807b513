// Package toast shows short transient notices over the popup.
package toast

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout is how long a toast stays visible.
const DefaultTimeout = 3 * time.Second

// DefaultMinInterval suppresses repeats of the same message.
const DefaultMinInterval = time.Second

// Display draws and removes the toast.
type Display interface {
	Toast(message string)
	HideToast()
}

// Manager shows one toast at a time on a Display and hides it after a
// timeout or on the first tap.
//
// Show and Dismiss must be called on the event loop. Timer expiry is posted
// back to the loop through post.
type Manager struct {
	mu      sync.Mutex
	logger  *slog.Logger
	display Display
	post    func(func())

	timeout     time.Duration
	minInterval time.Duration
	lastShown   map[string]time.Time

	visible bool
	gen     uint64
	timer   *time.Timer
}

// NewManager creates a toast manager. post runs a function on the event loop;
// nil runs it on the timer goroutine.
func NewManager(display Display, post func(func()), logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if post == nil {
		post = func(f func()) { f() }
	}
	return &Manager{
		logger:      logger,
		display:     display,
		post:        post,
		timeout:     DefaultTimeout,
		minInterval: DefaultMinInterval,
		lastShown:   make(map[string]time.Time),
	}
}

// SetTimeout sets how long toasts stay visible.
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.timeout = d
	}
}

// SetMinInterval sets the minimum interval between identical messages.
func (m *Manager) SetMinInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minInterval = d
}

// Show displays message, replacing any visible toast. It returns false when
// the same message was shown within the minimum interval.
func (m *Manager) Show(message string) bool {
	m.mu.Lock()

	if last, ok := m.lastShown[message]; ok && time.Since(last) < m.minInterval {
		m.mu.Unlock()
		m.logger.Debug("toast rate-limited", "message", message)
		return false
	}
	m.lastShown[message] = time.Now()

	m.stopTimerLocked()
	m.gen++
	gen := m.gen
	m.visible = true
	m.timer = time.AfterFunc(m.timeout, func() {
		m.post(func() { m.expire(gen) })
	})
	m.mu.Unlock()

	m.logger.Debug("showing toast", "message", message)
	m.display.Toast(message)
	return true
}

// Dismiss hides the visible toast, e.g. on a tap.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	if !m.visible {
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	m.visible = false
	m.gen++
	m.mu.Unlock()

	m.display.HideToast()
}

// Visible reports whether a toast is shown.
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Reset drops the visible toast without touching the display, for use when
// the display itself is being torn down.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.visible = false
	m.gen++
}

func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || !m.visible {
		m.mu.Unlock()
		return
	}
	m.visible = false
	m.timer = nil
	m.mu.Unlock()

	m.display.HideToast()
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

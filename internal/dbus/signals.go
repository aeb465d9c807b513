package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// SignalWatcher listens for the home-raise signal sent on a power key press.
type SignalWatcher struct {
	client *Client
	logger *slog.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	ch      chan *dbus.Signal
	done    chan struct{}
	running bool
}

// NewSignalWatcher creates a watcher on client's bus.
func NewSignalWatcher(client *Client, logger *slog.Logger) *SignalWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalWatcher{client: client, logger: logger}
}

func homeRaiseMatch() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(HomeRaisePath),
		dbus.WithMatchInterface(HomeRaiseIface),
		dbus.WithMatchMember(HomeRaiseSignal),
	}
}

// isHomeRaise reports whether sig is the home-raise signal.
func isHomeRaise(sig *dbus.Signal) bool {
	return sig != nil &&
		sig.Path == HomeRaisePath &&
		sig.Name == HomeRaiseIface+"."+HomeRaiseSignal
}

// Start calls fn on its own goroutine for every home-raise signal.
func (w *SignalWatcher) Start(ctx context.Context, fn func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	conn, err := w.client.Conn(ctx)
	if err != nil {
		return err
	}

	if err := conn.AddMatchSignalContext(ctx, homeRaiseMatch()...); err != nil {
		return fmt.Errorf("failed to add home raise match: %w", err)
	}

	w.conn = conn
	w.ch = make(chan *dbus.Signal, 16)
	w.done = make(chan struct{})
	w.running = true
	conn.Signal(w.ch)

	go w.loop(w.ch, w.done, fn)

	w.logger.Debug("watching home raise signal", "path", HomeRaisePath)
	return nil
}

func (w *SignalWatcher) loop(ch <-chan *dbus.Signal, done <-chan struct{}, fn func()) {
	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return
			}
			if isHomeRaise(sig) {
				w.logger.Debug("home raise signal received")
				fn()
			}
		case <-done:
			return
		}
	}
}

// Stop removes the match and stops delivering signals.
func (w *SignalWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false

	close(w.done)
	w.conn.RemoveSignal(w.ch)
	if err := w.conn.RemoveMatchSignal(homeRaiseMatch()...); err != nil {
		return fmt.Errorf("failed to remove home raise match: %w", err)
	}
	return nil
}

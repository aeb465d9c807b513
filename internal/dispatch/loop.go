package dispatch

import (
	"context"
	"sync"
)

// Poster schedules a function on the event loop.
type Poster interface {
	Post(f func())
}

// PosterFunc adapts a function to Poster, e.g. glib.IdleAdd.
type PosterFunc func(f func())

// Post implements Poster.
func (p PosterFunc) Post(f func()) { p(f) }

// Loop is a cooperative event loop. Functions posted to it run one at a time
// in the order they were posted.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	quit    chan struct{}
	stopped bool
	once    sync.Once
}

// NewLoop creates an event loop. It does nothing until Run is called.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// Post queues f. It never blocks, so it is safe to call from the loop itself.
// Functions posted after the loop stopped are dropped.
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes posted functions until ctx is cancelled or Quit is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	for {
		for {
			f := l.next()
			if f == nil {
				break
			}
			f()

			select {
			case <-l.quit:
				return nil
			default:
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case <-l.wake:
		}
	}
}

// Quit stops Run after the function currently running returns.
func (l *Loop) Quit() {
	l.once.Do(func() { close(l.quit) })
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	f := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return f
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.queue = nil
}

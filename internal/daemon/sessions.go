package daemon

import (
	"sync"
	"time"
)

// Session records one popup session.
type Session struct {
	ID       string
	OpenedAt time.Time
	ClosedAt time.Time
	Reason   string
}

// Open reports whether the session has not closed yet.
func (s Session) Open() bool {
	return s.ClosedAt.IsZero()
}

// Duration returns how long the session was open, or has been so far.
func (s Session) Duration(now time.Time) time.Duration {
	if s.Open() {
		return now.Sub(s.OpenedAt)
	}
	return s.ClosedAt.Sub(s.OpenedAt)
}

// SessionLog keeps the current session and a bounded history of closed ones.
type SessionLog struct {
	mu      sync.RWMutex
	now     func() time.Time
	limit   int
	current *Session
	history []Session
}

// DefaultSessionHistory is how many closed sessions are kept.
const DefaultSessionHistory = 32

// NewSessionLog creates a log keeping up to limit closed sessions. A limit
// below one uses DefaultSessionHistory.
func NewSessionLog(limit int) *SessionLog {
	if limit < 1 {
		limit = DefaultSessionHistory
	}
	return &SessionLog{now: time.Now, limit: limit}
}

// Opened records a new session. A session still open is closed as replaced.
func (l *SessionLog) Opened(id string) Session {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		l.closeLocked("replaced")
	}
	s := Session{ID: id, OpenedAt: l.now()}
	l.current = &s
	return s
}

// Closed records the end of session id. It returns false when id is not the
// current session.
func (l *SessionLog) Closed(id, reason string) (Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil || l.current.ID != id {
		return Session{}, false
	}
	return l.closeLocked(reason), true
}

func (l *SessionLog) closeLocked(reason string) Session {
	s := *l.current
	s.ClosedAt = l.now()
	s.Reason = reason
	l.current = nil

	l.history = append(l.history, s)
	if len(l.history) > l.limit {
		l.history = l.history[len(l.history)-l.limit:]
	}
	return s
}

// Current returns the open session, if any.
func (l *SessionLog) Current() (Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return Session{}, false
	}
	return *l.current, true
}

// Recent returns up to n closed sessions, newest first.
func (l *SessionLog) Recent(n int) []Session {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.history) {
		n = len(l.history)
	}
	out := make([]Session, 0, n)
	for i := len(l.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.history[i])
	}
	return out
}

// Count returns the number of closed sessions kept.
func (l *SessionLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.history)
}

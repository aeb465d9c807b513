package dispatch

import (
	"crypto/rand"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/devopts/internal/option"
)

// session is the option.Session handed to providers for one open popup.
// Its methods may be called from any goroutine; they post onto the loop and
// are dropped once the session has closed.
type session struct {
	id     string
	c      *Controller
	closed atomic.Bool
}

func newSession(c *Controller) *session {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		// ulid only fails when the entropy source does
		id = ulid.Make()
	}
	return &session{id: id.String(), c: c}
}

func (s *session) ID() string { return s.id }

func (s *session) Changed(o option.Option) {
	if s.closed.Load() {
		return
	}
	s.c.poster.Post(func() {
		if s.c.current != s {
			return
		}
		s.c.Changed(o)
	})
}

func (s *session) Toast(message string) {
	if s.closed.Load() {
		return
	}
	s.c.poster.Post(func() {
		if s.c.current != s {
			return
		}
		s.c.toasts.Show(message)
	})
}

func (s *session) RequestClose() {
	if s.closed.Load() {
		return
	}
	s.c.poster.Post(func() {
		if s.c.current != s {
			return
		}
		if s.c.activating {
			s.c.closeRequested = true
			return
		}
		s.c.Close(ReasonRequested)
	})
}

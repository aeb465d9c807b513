package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionLog(limit int) (*SessionLog, *time.Time) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewSessionLog(limit)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestSessionLog_OpenClose(t *testing.T) {
	l, clock := newTestSessionLog(0)

	l.Opened("s1")
	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "s1", cur.ID)
	assert.True(t, cur.Open())

	*clock = clock.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, cur.Duration(*clock))

	s, ok := l.Closed("s1", "dismissed")
	require.True(t, ok)
	assert.False(t, s.Open())
	assert.Equal(t, "dismissed", s.Reason)
	assert.Equal(t, 3*time.Second, s.Duration(clock.Add(time.Hour)))

	_, ok = l.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, l.Count())
}

func TestSessionLog_ClosedUnknown(t *testing.T) {
	l, _ := newTestSessionLog(0)

	_, ok := l.Closed("nope", "dismissed")
	assert.False(t, ok)

	l.Opened("s1")
	_, ok = l.Closed("s2", "dismissed")
	assert.False(t, ok)
	assert.Zero(t, l.Count())
}

func TestSessionLog_Replaced(t *testing.T) {
	l, _ := newTestSessionLog(0)

	l.Opened("s1")
	l.Opened("s2")

	recent := l.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, "s1", recent[0].ID)
	assert.Equal(t, "replaced", recent[0].Reason)

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "s2", cur.ID)
}

func TestSessionLog_HistoryLimit(t *testing.T) {
	l, _ := newTestSessionLog(2)

	for _, id := range []string{"a", "b", "c"} {
		l.Opened(id)
		l.Closed(id, "activated")
	}

	assert.Equal(t, 2, l.Count())
	recent := l.Recent(5)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)

	assert.Len(t, l.Recent(1), 1)
}

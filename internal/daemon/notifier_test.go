package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/devopts/internal/dbus"
)

func newTestNotifier(t *testing.T) (*InternalNotifier, *[]dbus.Notification, *time.Time) {
	t.Helper()

	var sent []dbus.Notification
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	n := NewInternalNotifier(nil)
	n.now = func() time.Time { return clock }
	n.SetNotifyHandler(func(notification dbus.Notification) error {
		sent = append(sent, notification)
		return nil
	})
	return n, &sent, &clock
}

func TestInternalNotifier_Levels(t *testing.T) {
	tests := []struct {
		level   NotificationLevel
		urgency byte
		icon    string
	}{
		{NotificationLevelInfo, dbus.UrgencyLow, "dialog-information"},
		{NotificationLevelWarning, dbus.UrgencyNormal, "dialog-warning"},
		{NotificationLevelError, dbus.UrgencyCritical, "dialog-error"},
	}

	for _, tt := range tests {
		t.Run(tt.icon, func(t *testing.T) {
			n, sent, _ := newTestNotifier(t)

			require.True(t, n.Notify("k", "summary", "body", tt.level))
			require.Len(t, *sent, 1)

			got := (*sent)[0]
			assert.Equal(t, tt.urgency, got.Urgency)
			assert.Equal(t, tt.icon, got.AppIcon)
			assert.Equal(t, "devoptsd", got.AppName)
			assert.True(t, got.Transient)
		})
	}
}

func TestInternalNotifier_RateLimit(t *testing.T) {
	n, sent, clock := newTestNotifier(t)
	n.SetMinInterval(time.Minute)

	assert.True(t, n.Notify("a", "first", "", NotificationLevelInfo))
	assert.False(t, n.Notify("a", "again", "", NotificationLevelInfo))
	assert.True(t, n.Notify("b", "other key", "", NotificationLevelInfo))

	*clock = clock.Add(time.Minute)
	assert.True(t, n.Notify("a", "later", "", NotificationLevelInfo))

	require.Len(t, *sent, 3)
	assert.Equal(t, "later", (*sent)[2].Summary)
}

func TestInternalNotifier_Skipped(t *testing.T) {
	n := NewInternalNotifier(nil)
	assert.False(t, n.Notify("k", "no handler", "", NotificationLevelInfo))

	calls := 0
	n.SetNotifyHandler(func(dbus.Notification) error {
		calls++
		return errors.New("bus closed")
	})
	n.SetEnabled(false)
	assert.False(t, n.Notify("k", "disabled", "", NotificationLevelInfo))

	n.SetEnabled(true)
	assert.True(t, n.Notify("k", "handler error still counts", "", NotificationLevelInfo))
	assert.Equal(t, 1, calls)
}

func TestInternalNotifier_Helpers(t *testing.T) {
	n, sent, clock := newTestNotifier(t)
	advance := func() { *clock = clock.Add(time.Hour) }

	n.NotifyConfigReloaded()
	advance()
	n.NotifyConfigError(errors.New("bad toml"))
	advance()
	n.NotifyThemeError(errors.New("missing"))
	advance()
	n.NotifyRestartRequired("[options] disabled")
	advance()
	n.NotifyPowerError(errors.New("deviced timeout"))

	require.Len(t, *sent, 5)
	assert.Equal(t, "Configuration Reloaded", (*sent)[0].Summary)
	assert.Contains(t, (*sent)[1].Body, "bad toml")
	assert.Equal(t, "Theme Error", (*sent)[2].Summary)
	assert.Contains(t, (*sent)[3].Body, "[options] disabled")
	assert.Equal(t, "deviced timeout", (*sent)[4].Body)
}

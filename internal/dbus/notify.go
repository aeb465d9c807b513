package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/devopts/internal/option"
)

// Desktop notification service.
const (
	NotificationsBusName = "org.freedesktop.Notifications"
	NotificationsPath    = "/org/freedesktop/Notifications"
	NotificationsIface   = "org.freedesktop.Notifications"
)

// Notification urgency levels.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Notification is a desktop notification.
type Notification struct {
	AppName       string
	AppIcon       string
	Summary       string
	Body          string
	Urgency       byte
	Transient     bool
	ExpireTimeout int32 // milliseconds, -1 = server default
}

// hints returns the notification hints.
func (n Notification) hints() map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(n.Urgency),
		"category": dbus.MakeVariant("device"),
	}
	if n.Transient {
		h["transient"] = dbus.MakeVariant(true)
	}
	if n.AppName != "" {
		h["desktop-entry"] = dbus.MakeVariant(n.AppName)
	}
	return h
}

// Notify sends n to the notification server and returns its id.
func (c *Client) Notify(ctx context.Context, n Notification) (uint32, error) {
	conn, err := c.Conn(ctx)
	if err != nil {
		return 0, err
	}

	call := conn.Object(NotificationsBusName, NotificationsPath).CallWithContext(ctx,
		NotificationsIface+".Notify", 0,
		n.AppName, uint32(0), n.AppIcon, n.Summary, n.Body, []string{}, n.hints(), n.ExpireTimeout)
	if call.Err != nil {
		return 0, fmt.Errorf("failed to send notification: %w: %w", option.ErrCommunicationFailure, call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("invalid notification reply: %w", err)
	}
	return id, nil
}

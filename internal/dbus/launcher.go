package dbus

import (
	"context"
	"fmt"
	"log/slog"
)

// Launcher starts other applications and system popups.
type Launcher struct {
	caller Caller
	logger *slog.Logger
}

// NewLauncher creates a launcher.
func NewLauncher(caller Caller, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{caller: caller, logger: logger}
}

// LaunchApp activates appID with params.
func (l *Launcher) LaunchApp(ctx context.Context, appID string, params map[string]string) error {
	l.logger.Debug("launching app", "app", appID)
	if err := l.caller.ActivateApp(ctx, appID, params); err != nil {
		return fmt.Errorf("failed to launch %s: %w", appID, err)
	}
	return nil
}

// LaunchSyspopup shows the system popup selected by content, such as
// "flightmode_enable".
func (l *Launcher) LaunchSyspopup(ctx context.Context, content string) error {
	l.logger.Debug("launching system popup", "content", content)
	_, err := l.caller.CallSync(ctx, PopupBusName, PopupPathSystem, PopupIfaceSystem,
		PopupMethodLaunch, SyspopupContentKey, content)
	if err != nil {
		return fmt.Errorf("failed to launch system popup %s: %w", content, err)
	}
	return nil
}

// Deviced requests power transitions from the device daemon.
type Deviced struct {
	caller Caller
	logger *slog.Logger
}

// NewDeviced creates a deviced client.
func NewDeviced(caller Caller, logger *slog.Logger) *Deviced {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deviced{caller: caller, logger: logger}
}

// PowerOff asks deviced to power the device off.
func (d *Deviced) PowerOff(ctx context.Context) error {
	return d.power(ctx, "poweroff")
}

// Restart asks deviced to reboot the device.
func (d *Deviced) Restart(ctx context.Context) error {
	return d.power(ctx, "reboot")
}

func (d *Deviced) power(ctx context.Context, action string) error {
	d.logger.Info("requesting power transition", "action", action)
	_, err := d.caller.CallSync(ctx, DevicedBusName, DevicedPathPower, DevicedIfacePower,
		action, "devopts", "0")
	if err != nil {
		return fmt.Errorf("failed to request %s: %w", action, err)
	}
	return nil
}

package options

import (
	"context"

	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/settings"
)

// Syspopup contents understood by the system popup launcher.
const (
	FlightModeEnable  = "flightmode_enable"
	FlightModeDisable = "flightmode_disable"
)

// FlightMode asks the system popup to confirm a flight mode change.
type FlightMode struct {
	item
	store    settings.Backend
	launcher Launcher
	watch    *keyWatch
}

// NewFlightMode creates the flight mode provider.
func NewFlightMode(d Deps) *FlightMode {
	return &FlightMode{
		item:     item{name: NameFlightMode, id: IDFlightMode, class: option.LayoutHalf, terminate: true},
		store:    d.Settings,
		launcher: d.Launcher,
		watch:    newKeyWatch(d.Settings, settings.KeyFlightMode),
	}
}

func (f *FlightMode) Enabled() bool { return true }

func (f *FlightMode) Icon() (string, error) {
	on, err := f.store.GetBool(settings.KeyFlightMode)
	if err != nil {
		return "", readErr("icon", f.name, err)
	}
	if on {
		return "airplane-mode-symbolic", nil
	}
	return "airplane-mode-disabled-symbolic", nil
}

func (f *FlightMode) Text() (string, error) { return "Flight mode", nil }

func (f *FlightMode) Activate(ctx context.Context, _ option.Session) error {
	on, err := f.store.GetBool(settings.KeyFlightMode)
	if err != nil {
		return readErr("activate", f.name, err)
	}
	if f.launcher == nil {
		return option.Errorf("activate", f.name, option.ErrUnsupported)
	}

	content := FlightModeEnable
	if on {
		content = FlightModeDisable
	}
	if err := f.launcher.LaunchSyspopup(ctx, content); err != nil {
		return option.Errorf("activate", f.name, err)
	}
	return nil
}

func (f *FlightMode) RegisterHandlers(s option.Session) error { return f.watch.register(f, s) }

func (f *FlightMode) UnregisterHandlers(option.Session) error { return f.watch.unregister() }

package dbus

import (
	"context"
	"strings"
)

// Bus selects a message bus.
type Bus int

const (
	BusSystem Bus = iota
	BusSession
)

// String returns the string representation of the bus.
func (b Bus) String() string {
	if b == BusSession {
		return "session"
	}
	return "system"
}

// Device service names.
const (
	DevicedBusName    = "org.tizen.system.deviced"
	DevicedPathPower  = "/Org/Tizen/System/DeviceD/Power"
	DevicedIfacePower = DevicedBusName + ".power"

	PopupBusName      = "org.tizen.system.popup"
	PopupPathSystem   = "/Org/Tizen/System/Popup/System"
	PopupIfaceSystem  = PopupBusName + ".System"
	PopupMethodLaunch = "PopupLaunch"

	// SyspopupContentKey selects what the system popup shows.
	SyspopupContentKey = "_SYSPOPUP_CONTENT_"

	HomeRaisePath   = "/Org/Tizen/Coreapps/home/raise"
	HomeRaiseIface  = "org.tizen.coreapps.home.raise"
	HomeRaiseSignal = "homeraise"

	ApplicationIface = "org.freedesktop.Application"
)

// Popup control service names.
const (
	ServiceBusName = "org.devopts.Popup"
	ServicePath    = "/org/devopts/Popup"
	ServiceIface   = "org.devopts.Popup"
)

// RetryMax is the number of extra connection attempts before giving up.
const RetryMax = 10

// Caller performs synchronous calls on a bus.
type Caller interface {
	// CallSync calls method with string parameters and returns its integer
	// result. A negative result is reported as an error.
	CallSync(ctx context.Context, dest, path, iface, method string, params ...string) (int32, error)
	// ActivateApp activates a D-Bus activatable application.
	ActivateApp(ctx context.Context, appID string, params map[string]string) error
}

// AppObjectPath returns the object path of a D-Bus activatable application,
// e.g. org.example.App -> /org/example/App.
func AppObjectPath(appID string) string {
	return "/" + strings.NewReplacer(".", "/", "-", "_").Replace(appID)
}

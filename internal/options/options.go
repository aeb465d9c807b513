package options

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/feedback/pattern"
	"github.com/jmylchreest/devopts/internal/gate"
	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/settings"
)

// Provider names.
const (
	NameAccessibility = "accessibility"
	NamePowerOff      = "poweroff"
	NameRestart       = "restart"
	NameFlightMode    = "flightmode"
	NameWifi          = "wifi"
	NameSound         = "sound"
	NameMobileData    = "mobiledata"
)

// Provider sort ids.
const (
	IDAccessibility = 100
	IDPowerOff      = 200
	IDRestart       = 300
	IDFlightMode    = 1200
	IDWifi          = 1400
	IDSound         = 1600
	IDMobileData    = 1800
)

// Applications launched by providers.
const (
	AccessibilityApp = "org.tizen.clocksetting.accessibility"
	MobileDataApp    = "org.tizen.clocksetting.network-mobile-data"
)

// Toast messages.
const (
	MsgNotSupported        = "Not supported."
	MsgInsertSIM           = "Insert SIM card to access network services."
	MsgMobileDataBluetooth = "Unable to turn on mobile data while connected via Bluetooth."
	MsgWifiActivateError   = "Wi-Fi Activation error."
	MsgWifiDeactivateError = "Wi-Fi Deactivating error."
)

// Launcher starts applications and system popups.
type Launcher interface {
	LaunchApp(ctx context.Context, appID string, params map[string]string) error
	LaunchSyspopup(ctx context.Context, content string) error
}

// Feedback plays the sound for a feedback pattern.
type Feedback interface {
	Play(p pattern.Pattern) error
}

// Deps are the collaborators shared by the providers.
type Deps struct {
	Settings settings.Backend
	Launcher Launcher
	Power    confirm.PowerController
	Feedback Feedback // optional
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Plugins returns every bundled provider with its registration gate.
func Plugins(d Deps) []gate.Plugin {
	return []gate.Plugin{
		{Option: NewAccessibility(d), Gate: gate.AccessibilityShortcut},
		{Option: NewPowerOff(d)},
		{Option: NewRestart(d)},
		{Option: NewFlightMode(d), Gate: gate.NotInEnhancedPowerSaving},
		{Option: NewWifi(d), Gate: gate.NotInEnhancedPowerSaving},
		{Option: NewSound(d), Gate: gate.NotInEnhancedPowerSaving},
		{Option: NewMobileData(d), Gate: gate.NotInEnhancedPowerSaving},
	}
}

// item carries the fixed attributes of a provider.
type item struct {
	name      string
	id        int
	class     option.LayoutClass
	terminate bool
}

func (i item) Name() string { return i.name }
func (i item) ID() int { return i.id }
func (i item) LayoutClass() option.LayoutClass { return i.class }
func (i item) ShouldTerminate() bool { return i.terminate }

// noHandlers is embedded by providers with no external state to follow.
type noHandlers struct{}

func (noHandlers) RegisterHandlers(option.Session) error { return nil }
func (noHandlers) UnregisterHandlers(option.Session) error { return nil }

// keyWatch refreshes an option's slot whenever one of its settings keys
// changes during a session.
type keyWatch struct {
	store settings.Notifier
	keys  []string

	mu      sync.Mutex
	cancels []func()
}

func newKeyWatch(store settings.Notifier, keys ...string) *keyWatch {
	return &keyWatch{store: store, keys: keys}
}

func (w *keyWatch) register(o option.Option, s option.Session) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancelLocked()
	for _, key := range w.keys {
		cancel, err := w.store.Watch(key, func(string) { s.Changed(o) })
		if err != nil {
			w.cancelLocked()
			return option.Errorf("register", o.Name(), errors.Join(option.ErrResourceExhausted, err))
		}
		w.cancels = append(w.cancels, cancel)
	}
	return nil
}

func (w *keyWatch) unregister() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	return nil
}

func (w *keyWatch) cancelLocked() {
	for _, cancel := range w.cancels {
		cancel()
	}
	w.cancels = nil
}

// active reports how many watches are currently held.
func (w *keyWatch) active() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.cancels)
}

// readErr maps a settings read failure to the option error taxonomy.
func readErr(op, name string, err error) error {
	if errors.Is(err, settings.ErrNotFound) || errors.Is(err, settings.ErrTypeMismatch) {
		return option.Errorf(op, name, errors.Join(option.ErrUnsupported, err))
	}
	return option.Errorf(op, name, err)
}

package options

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/settings"
)

// Wi-Fi use states.
const (
	WifiOff = 0
	WifiOn  = 1
)

// Wifi toggles the wearable Wi-Fi use setting. The icon stays the same and is
// dimmed while Wi-Fi is off.
type Wifi struct {
	item
	store  settings.Backend
	logger *slog.Logger
	watch  *keyWatch
}

// NewWifi creates the Wi-Fi provider.
func NewWifi(d Deps) *Wifi {
	return &Wifi{
		item:   item{name: NameWifi, id: IDWifi, class: option.LayoutHalf},
		store:  d.Settings,
		logger: d.logger(),
		watch:  newKeyWatch(d.Settings, settings.KeyWifiUse),
	}
}

func (w *Wifi) Enabled() bool { return true }

func (w *Wifi) Icon() (string, error) { return "network-wireless-symbolic", nil }

// IconDisabled reports whether Wi-Fi is off. An unreadable key is not dimmed.
func (w *Wifi) IconDisabled() bool {
	state, err := w.store.GetInt(settings.KeyWifiUse)
	return err == nil && state == WifiOff
}

// Text is "WLAN" on devices sold in China and "Wi-Fi" elsewhere.
func (w *Wifi) Text() (string, error) {
	if country, err := w.store.GetString(settings.KeyCountry); err == nil && strings.EqualFold(country, "CN") {
		return "WLAN", nil
	}
	return "Wi-Fi", nil
}

func (w *Wifi) Activate(_ context.Context, s option.Session) error {
	state, err := w.store.GetInt(settings.KeyWifiUse)
	if err != nil || (state != WifiOff && state != WifiOn) {
		s.Toast(MsgNotSupported)
		if err == nil {
			err = option.ErrUnsupported
		}
		return readErr("activate", w.name, err)
	}

	next, msg := WifiOn, MsgWifiActivateError
	if state == WifiOn {
		next, msg = WifiOff, MsgWifiDeactivateError
	}
	if err := w.store.SetInt(settings.KeyWifiUse, next); err != nil {
		w.logger.Warn("failed to set wifi use", "state", next, "error", err)
		s.Toast(msg)
		return option.Errorf("activate", w.name, err)
	}
	return nil
}

func (w *Wifi) RegisterHandlers(s option.Session) error { return w.watch.register(w, s) }

func (w *Wifi) UnregisterHandlers(option.Session) error { return w.watch.unregister() }

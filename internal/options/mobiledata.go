package options

import (
	"context"
	"fmt"

	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/settings"
)

// MobileDataState is the state the mobile data item is drawn in.
type MobileDataState int

const (
	MobileDataOff MobileDataState = iota
	MobileDataOn
	MobileDataBluetooth
	MobileDataNoSIM
	MobileDataUnsupported
)

func (s MobileDataState) String() string {
	switch s {
	case MobileDataOff:
		return "off"
	case MobileDataOn:
		return "on"
	case MobileDataBluetooth:
		return "bluetooth"
	case MobileDataNoSIM:
		return "no-sim"
	case MobileDataUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("MobileDataState(%d)", int(s))
	}
}

// MobileData toggles cellular data, or hands off to the mobile data settings
// app when the user asked to be reminded before switching.
type MobileData struct {
	item
	store    settings.Backend
	launcher Launcher
	watch    *keyWatch
}

// NewMobileData creates the mobile data provider.
func NewMobileData(d Deps) *MobileData {
	return &MobileData{
		item:     item{name: NameMobileData, id: IDMobileData, class: option.LayoutHalf},
		store:    d.Settings,
		launcher: d.Launcher,
		watch:    newKeyWatch(d.Settings, settings.KeyMobileData, settings.KeyFlightMode),
	}
}

// State reads the current mobile data state.
func (m *MobileData) State() MobileDataState {
	on, err := m.store.GetBool(settings.KeyMobileData)
	if err != nil {
		return MobileDataUnsupported
	}
	sim, err := m.store.GetInt(settings.KeySIMSlot)
	if err != nil {
		return MobileDataUnsupported
	}
	if sim != settings.SIMInserted {
		return MobileDataNoSIM
	}
	if on {
		return MobileDataOn
	}
	// The device borrows the phone's connection over Bluetooth and cannot
	// bring up its own data link at the same time.
	if sap, err := m.store.GetInt(settings.KeySAPConnType); err == nil &&
		sap&settings.SAPBluetooth != 0 && sap&settings.SAPMobile == 0 {
		return MobileDataBluetooth
	}
	return MobileDataOff
}

// Enabled is false while flight mode is on.
func (m *MobileData) Enabled() bool {
	flight, err := m.store.GetBool(settings.KeyFlightMode)
	return err != nil || !flight
}

func (m *MobileData) Icon() (string, error) {
	switch m.State() {
	case MobileDataOn:
		return "network-cellular-connected-symbolic", nil
	case MobileDataOff:
		return "network-cellular-offline-symbolic", nil
	default:
		return "network-cellular-disabled-symbolic", nil
	}
}

func (m *MobileData) Text() (string, error) { return "Mobile data", nil }

func (m *MobileData) Activate(ctx context.Context, s option.Session) error {
	state := m.State()

	switch state {
	case MobileDataUnsupported:
		s.Toast(MsgNotSupported)
		return nil
	case MobileDataNoSIM:
		s.Toast(MsgInsertSIM)
		return nil
	case MobileDataBluetooth:
		s.Toast(MsgMobileDataBluetooth)
		return nil
	}

	if m.remind(state) {
		s.RequestClose()
		if m.launcher == nil {
			return option.Errorf("activate", m.name, option.ErrUnsupported)
		}
		if err := m.launcher.LaunchApp(ctx, MobileDataApp, map[string]string{"launch": "popup"}); err != nil {
			return option.Errorf("activate", m.name, err)
		}
		return nil
	}

	if err := m.store.SetBool(settings.KeyMobileData, state == MobileDataOff); err != nil {
		s.RequestClose()
		return option.Errorf("activate", m.name, err)
	}
	return nil
}

// remind reports whether the user asked to confirm switching away from state
// in the settings app.
func (m *MobileData) remind(state MobileDataState) bool {
	key := settings.KeyMobileDataOnReminder
	if state == MobileDataOn {
		key = settings.KeyMobileDataOffReminder
	}
	v, err := m.store.GetBool(key)
	return err == nil && v
}

func (m *MobileData) RegisterHandlers(s option.Session) error { return m.watch.register(m, s) }

func (m *MobileData) UnregisterHandlers(option.Session) error { return m.watch.unregister() }

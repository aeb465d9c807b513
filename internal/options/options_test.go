package options

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/devopts/internal/feedback/pattern"
	"github.com/jmylchreest/devopts/internal/gate"
	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/registry"
	"github.com/jmylchreest/devopts/internal/settings"
)

type launchCall struct {
	appID   string
	params  map[string]string
	content string
}

type fakeLauncher struct {
	mu    sync.Mutex
	calls []launchCall
	err   error
}

func (l *fakeLauncher) LaunchApp(_ context.Context, appID string, params map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, launchCall{appID: appID, params: params})
	return l.err
}

func (l *fakeLauncher) LaunchSyspopup(_ context.Context, content string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, launchCall{content: content})
	return l.err
}

type fakePower struct {
	calls []string
	err   error
}

func (p *fakePower) PowerOff(context.Context) error {
	p.calls = append(p.calls, "poweroff")
	return p.err
}

func (p *fakePower) Restart(context.Context) error {
	p.calls = append(p.calls, "restart")
	return p.err
}

type fakeFeedback struct {
	played []pattern.Pattern
}

func (f *fakeFeedback) Play(p pattern.Pattern) error {
	f.played = append(f.played, p)
	return nil
}

type fakeSession struct {
	mu      sync.Mutex
	changed []string
	toasts  []string
	closes  int
}

func (s *fakeSession) ID() string { return "test" }

func (s *fakeSession) Changed(o option.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = append(s.changed, o.Name())
}

func (s *fakeSession) Toast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, msg)
}

func (s *fakeSession) RequestClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
}

type fixture struct {
	store    *settings.Store
	launcher *fakeLauncher
	power    *fakePower
	feedback *fakeFeedback
	deps     Deps
}

func newFixture(t *testing.T, overrides map[string]any) *fixture {
	t.Helper()
	values := settings.Defaults()
	for k, v := range overrides {
		if v == nil {
			delete(values, k)
			continue
		}
		values[k] = v
	}
	f := &fixture{
		store:    settings.NewMemory(values, nil),
		launcher: &fakeLauncher{},
		power:    &fakePower{},
		feedback: &fakeFeedback{},
	}
	f.deps = Deps{Settings: f.store, Launcher: f.launcher, Power: f.power, Feedback: f.feedback}
	return f
}

func TestPlugins_Attributes(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name      string
		id        int
		class     option.LayoutClass
		terminate bool
	}{
		{NameAccessibility, IDAccessibility, option.LayoutFullOneTextOneIcon, true},
		{NamePowerOff, IDPowerOff, option.LayoutFullOneTextOneIcon, true},
		{NameRestart, IDRestart, option.LayoutFullOneTextOneIcon, true},
		{NameFlightMode, IDFlightMode, option.LayoutHalf, true},
		{NameWifi, IDWifi, option.LayoutHalf, false},
		{NameSound, IDSound, option.LayoutHalf, false},
		{NameMobileData, IDMobileData, option.LayoutHalf, false},
	}

	plugins := Plugins(f.deps)
	require.Len(t, plugins, len(tests))
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := plugins[i].Option
			assert.Equal(t, tt.name, o.Name())
			assert.Equal(t, tt.id, o.ID())
			assert.Equal(t, tt.class, o.LayoutClass())
			assert.Equal(t, tt.terminate, o.ShouldTerminate())

			icon, err := o.Icon()
			require.NoError(t, err)
			assert.NotEmpty(t, icon)
			text, err := o.Text()
			require.NoError(t, err)
			assert.NotEmpty(t, text)
		})
	}
}

func TestPlugins_Gates(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		want      []string
	}{
		{
			name: "normal device",
			want: []string{NamePowerOff, NameRestart, NameFlightMode, NameWifi, NameSound, NameMobileData},
		},
		{
			name:      "accessibility shortcut",
			overrides: map[string]any{settings.KeyAccessibilityPowerHold: settings.PowerKeyShortcutAccessibility},
			want:      []string{NameAccessibility, NamePowerOff, NameRestart, NameFlightMode, NameWifi, NameSound, NameMobileData},
		},
		{
			name:      "enhanced power saving",
			overrides: map[string]any{settings.KeyPowerSavingMode: settings.PowerSavingEnhanced},
			want:      []string{NamePowerOff, NameRestart},
		},
		{
			name:      "plain power saving",
			overrides: map[string]any{settings.KeyPowerSavingMode: settings.PowerSavingOn},
			want:      []string{NamePowerOff, NameRestart, NameFlightMode, NameWifi, NameSound, NameMobileData},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.overrides)
			reg := registry.New(nil)
			res := gate.Assemble(reg, Plugins(f.deps), f.store, nil, nil)
			assert.ElementsMatch(t, tt.want, res.Registered)
			assert.Empty(t, res.Failed)
		})
	}
}

func TestPlugins_RegistryOrder(t *testing.T) {
	f := newFixture(t, map[string]any{settings.KeyAccessibilityPowerHold: settings.PowerKeyShortcutAccessibility})
	reg := registry.New(nil)
	gate.Assemble(reg, Plugins(f.deps), f.store, nil, nil)

	var names []string
	for _, o := range reg.All() {
		names = append(names, o.Name())
	}
	assert.Equal(t, []string{
		NameAccessibility, NamePowerOff, NameRestart,
		NameFlightMode, NameWifi, NameSound, NameMobileData,
	}, names)
}

func TestAccessibility_Activate(t *testing.T) {
	f := newFixture(t, nil)
	a := NewAccessibility(f.deps)

	require.NoError(t, a.Activate(context.Background(), &fakeSession{}))
	require.Len(t, f.launcher.calls, 1)
	assert.Equal(t, AccessibilityApp, f.launcher.calls[0].appID)

	f.launcher.err = option.ErrCommunicationFailure
	err := a.Activate(context.Background(), &fakeSession{})
	assert.ErrorIs(t, err, option.ErrCommunicationFailure)
}

func TestPower_Activate(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, NewPowerOff(f.deps).Activate(context.Background(), &fakeSession{}))
	require.NoError(t, NewRestart(f.deps).Activate(context.Background(), &fakeSession{}))
	assert.Equal(t, []string{"poweroff", "restart"}, f.power.calls)

	f.power.err = errors.New("deviced said no")
	assert.Error(t, NewPowerOff(f.deps).Activate(context.Background(), &fakeSession{}))

	noPower := NewRestart(Deps{Settings: f.store})
	assert.ErrorIs(t, noPower.Activate(context.Background(), &fakeSession{}), option.ErrUnsupported)
}

func TestFlightMode(t *testing.T) {
	tests := []struct {
		name        string
		flight      any
		wantIcon    string
		wantContent string
		wantErr     error
	}{
		{"off", false, "airplane-mode-disabled-symbolic", FlightModeEnable, nil},
		{"on", true, "airplane-mode-symbolic", FlightModeDisable, nil},
		{"missing", nil, "", "", option.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]any{settings.KeyFlightMode: tt.flight})
			fm := NewFlightMode(f.deps)

			icon, err := fm.Icon()
			err2 := fm.Activate(context.Background(), &fakeSession{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err2, tt.wantErr)
				assert.Empty(t, f.launcher.calls)
				return
			}
			require.NoError(t, err)
			require.NoError(t, err2)
			assert.Equal(t, tt.wantIcon, icon)
			require.Len(t, f.launcher.calls, 1)
			assert.Equal(t, tt.wantContent, f.launcher.calls[0].content)
		})
	}
}

func TestWifi_Toggle(t *testing.T) {
	f := newFixture(t, map[string]any{settings.KeyWifiUse: WifiOn})
	w := NewWifi(f.deps)
	s := &fakeSession{}

	assert.False(t, w.IconDisabled())
	assert.False(t, option.IconDisabled(w))

	require.NoError(t, w.Activate(context.Background(), s))
	state, err := f.store.GetInt(settings.KeyWifiUse)
	require.NoError(t, err)
	assert.Equal(t, WifiOff, state)
	assert.True(t, w.IconDisabled())

	require.NoError(t, w.Activate(context.Background(), s))
	state, err = f.store.GetInt(settings.KeyWifiUse)
	require.NoError(t, err)
	assert.Equal(t, WifiOn, state)
	assert.Empty(t, s.toasts)
}

func TestWifi_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"missing key", nil},
		{"unknown state", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]any{settings.KeyWifiUse: tt.value})
			w := NewWifi(f.deps)
			s := &fakeSession{}

			err := w.Activate(context.Background(), s)
			assert.ErrorIs(t, err, option.ErrUnsupported)
			assert.Equal(t, []string{MsgNotSupported}, s.toasts)
			assert.False(t, w.IconDisabled())
		})
	}
}

func TestWifi_Text(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"", "Wi-Fi"},
		{"GB", "Wi-Fi"},
		{"CN", "WLAN"},
		{"cn", "WLAN"},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.country, func(t *testing.T) {
			f := newFixture(t, map[string]any{settings.KeyCountry: tt.country})
			text, err := NewWifi(f.deps).Text()
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestSound_Cycle(t *testing.T) {
	f := newFixture(t, map[string]any{
		settings.KeySoundStatus:     true,
		settings.KeyVibrationStatus: false,
		settings.KeyRingtoneVolume:  0,
	})
	snd := NewSound(f.deps)
	s := &fakeSession{}

	steps := []struct {
		want     SoundProfile
		wantText string
		wantIcon string
	}{
		{ProfileVibration, "Vibration", "phone-vibrate-symbolic"},
		{ProfileMute, "Mute", "audio-volume-muted-symbolic"},
		{ProfileSound, "Sound", "audio-volume-high-symbolic"},
	}

	for _, step := range steps {
		require.NoError(t, snd.Activate(context.Background(), s))
		p, err := snd.Profile()
		require.NoError(t, err)
		assert.Equal(t, step.want, p)

		text, err := snd.Text()
		require.NoError(t, err)
		assert.Equal(t, step.wantText, text)
		icon, err := snd.Icon()
		require.NoError(t, err)
		assert.Equal(t, step.wantIcon, icon)
	}

	assert.Equal(t, []pattern.Pattern{pattern.VibrationOn, pattern.SilentOff}, f.feedback.played)

	vol, err := f.store.GetInt(settings.KeyRingtoneVolume)
	require.NoError(t, err)
	assert.Equal(t, 1, vol, "silent ringtone restored when leaving mute")
}

func TestSound_KeepsRingtoneVolume(t *testing.T) {
	f := newFixture(t, map[string]any{
		settings.KeySoundStatus:     false,
		settings.KeyVibrationStatus: false,
		settings.KeyRingtoneVolume:  4,
	})
	require.NoError(t, NewSound(f.deps).Activate(context.Background(), &fakeSession{}))

	vol, err := f.store.GetInt(settings.KeyRingtoneVolume)
	require.NoError(t, err)
	assert.Equal(t, 4, vol)
}

func TestSound_Unreadable(t *testing.T) {
	f := newFixture(t, map[string]any{settings.KeySoundStatus: nil})
	snd := NewSound(f.deps)

	_, err := snd.Text()
	assert.ErrorIs(t, err, option.ErrUnsupported)
	_, err = snd.Icon()
	assert.ErrorIs(t, err, option.ErrUnsupported)
	assert.ErrorIs(t, snd.Activate(context.Background(), &fakeSession{}), option.ErrUnsupported)
}

func TestMobileData_State(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		want      MobileDataState
		wantIcon  string
	}{
		{"off", nil, MobileDataOff, "network-cellular-offline-symbolic"},
		{"on", map[string]any{settings.KeyMobileData: true}, MobileDataOn, "network-cellular-connected-symbolic"},
		{"no sim", map[string]any{settings.KeySIMSlot: settings.SIMNotPresent}, MobileDataNoSIM, "network-cellular-disabled-symbolic"},
		{"sim error", map[string]any{settings.KeySIMSlot: settings.SIMCardError}, MobileDataNoSIM, "network-cellular-disabled-symbolic"},
		{"no 3g key", map[string]any{settings.KeyMobileData: nil}, MobileDataUnsupported, "network-cellular-disabled-symbolic"},
		{"no sim key", map[string]any{settings.KeySIMSlot: nil}, MobileDataUnsupported, "network-cellular-disabled-symbolic"},
		{"bluetooth", map[string]any{settings.KeySAPConnType: settings.SAPBluetooth}, MobileDataBluetooth, "network-cellular-disabled-symbolic"},
		{"bluetooth and mobile", map[string]any{settings.KeySAPConnType: settings.SAPBluetooth | settings.SAPMobile}, MobileDataOff, "network-cellular-offline-symbolic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.overrides)
			m := NewMobileData(f.deps)
			assert.Equal(t, tt.want, m.State())
			icon, err := m.Icon()
			require.NoError(t, err)
			assert.Equal(t, tt.wantIcon, icon)
		})
	}
}

func TestMobileData_Activate(t *testing.T) {
	tests := []struct {
		name       string
		overrides  map[string]any
		wantToast  string
		wantLaunch bool
		wantClose  int
		wantData   bool
	}{
		{name: "turn on", wantData: true},
		{name: "turn off", overrides: map[string]any{settings.KeyMobileData: true}, wantData: false},
		{
			name:       "on reminder",
			overrides:  map[string]any{settings.KeyMobileDataOnReminder: true},
			wantLaunch: true,
			wantClose:  1,
		},
		{
			name:       "off reminder",
			overrides:  map[string]any{settings.KeyMobileData: true, settings.KeyMobileDataOffReminder: true},
			wantLaunch: true,
			wantClose:  1,
			wantData:   true,
		},
		{
			name:      "off reminder ignored when turning on",
			overrides: map[string]any{settings.KeyMobileDataOffReminder: true},
			wantData:  true,
		},
		{name: "no sim", overrides: map[string]any{settings.KeySIMSlot: settings.SIMNotPresent}, wantToast: MsgInsertSIM},
		{name: "bluetooth", overrides: map[string]any{settings.KeySAPConnType: settings.SAPBluetooth}, wantToast: MsgMobileDataBluetooth},
		{name: "unsupported", overrides: map[string]any{settings.KeySIMSlot: nil}, wantToast: MsgNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.overrides)
			m := NewMobileData(f.deps)
			s := &fakeSession{}

			require.NoError(t, m.Activate(context.Background(), s))

			if tt.wantToast != "" {
				assert.Equal(t, []string{tt.wantToast}, s.toasts)
			} else {
				assert.Empty(t, s.toasts)
			}
			if tt.wantLaunch {
				require.Len(t, f.launcher.calls, 1)
				assert.Equal(t, MobileDataApp, f.launcher.calls[0].appID)
				assert.Equal(t, map[string]string{"launch": "popup"}, f.launcher.calls[0].params)
			} else {
				assert.Empty(t, f.launcher.calls)
			}
			assert.Equal(t, tt.wantClose, s.closes)

			if on, err := f.store.GetBool(settings.KeyMobileData); err == nil {
				assert.Equal(t, tt.wantData, on)
			}
		})
	}
}

func TestMobileData_LaunchFailureCloses(t *testing.T) {
	f := newFixture(t, map[string]any{settings.KeyMobileDataOnReminder: true})
	f.launcher.err = option.ErrCommunicationFailure
	s := &fakeSession{}

	err := NewMobileData(f.deps).Activate(context.Background(), s)
	assert.ErrorIs(t, err, option.ErrCommunicationFailure)
	assert.Equal(t, 1, s.closes)
}

func TestMobileData_DisabledInFlightMode(t *testing.T) {
	f := newFixture(t, nil)
	m := NewMobileData(f.deps)
	assert.True(t, m.Enabled())

	require.NoError(t, f.store.SetBool(settings.KeyFlightMode, true))
	assert.False(t, m.Enabled())
}

func TestHandlers_RefreshOnKeyChange(t *testing.T) {
	tests := []struct {
		name string
		new  func(Deps) option.Option
		key  string
		val  any
	}{
		{NameFlightMode, func(d Deps) option.Option { return NewFlightMode(d) }, settings.KeyFlightMode, true},
		{NameWifi, func(d Deps) option.Option { return NewWifi(d) }, settings.KeyWifiUse, WifiOff},
		{NameSound, func(d Deps) option.Option { return NewSound(d) }, settings.KeyVibrationStatus, true},
		{NameMobileData, func(d Deps) option.Option { return NewMobileData(d) }, settings.KeyMobileData, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			o := tt.new(f.deps)
			s := &fakeSession{}

			require.NoError(t, o.RegisterHandlers(s))
			assert.Equal(t, 1, f.store.WatchCount(tt.key))

			require.NoError(t, f.store.Set(tt.key, tt.val))
			assert.Equal(t, []string{tt.name}, s.changed)

			require.NoError(t, o.UnregisterHandlers(s))
			assert.Equal(t, 0, f.store.WatchCount(tt.key))

			require.NoError(t, f.store.Set(tt.key, settings.Defaults()[tt.key]))
			assert.Len(t, s.changed, 1, "no refresh after unregister")
		})
	}
}

func TestKeyWatch_RegisterTwiceReplaces(t *testing.T) {
	f := newFixture(t, nil)
	w := newKeyWatch(f.store, settings.KeyWifiUse, settings.KeyCountry)
	o := NewWifi(f.deps)

	require.NoError(t, w.register(o, &fakeSession{}))
	require.NoError(t, w.register(o, &fakeSession{}))
	assert.Equal(t, 2, w.active())
	assert.Equal(t, 1, f.store.WatchCount(settings.KeyWifiUse))

	require.NoError(t, w.unregister())
	assert.Equal(t, 0, w.active())
	assert.Equal(t, 0, f.store.WatchCount(settings.KeyCountry))
}

// The package must stay free of the audio backend; only the pattern names
// are shared with feedback.
func TestPackage_DoesNotImportFeedbackBackend(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		src, err := os.ReadFile(name)
		require.NoError(t, err)
		f, err := parser.ParseFile(fset, name, src, parser.ImportsOnly)
		require.NoError(t, err, name)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotEqual(t, "github.com/jmylchreest/devopts/internal/feedback", path, name)
			assert.NotContains(t, path, "gopxl/beep", name)
		}
	}
}

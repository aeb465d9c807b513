package options

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/devopts/internal/feedback/pattern"
	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/settings"
)

// SoundProfile is the device ringer profile.
type SoundProfile int

const (
	ProfileSound SoundProfile = iota
	ProfileVibration
	ProfileMute
)

// String returns the label shown for the profile.
func (p SoundProfile) String() string {
	switch p {
	case ProfileSound:
		return "Sound"
	case ProfileVibration:
		return "Vibration"
	case ProfileMute:
		return "Mute"
	default:
		return fmt.Sprintf("SoundProfile(%d)", int(p))
	}
}

// defaultRingtoneVolume is restored when leaving mute with a silent ringtone.
const defaultRingtoneVolume = 1

// Sound cycles the profile sound -> vibration -> mute -> sound.
type Sound struct {
	item
	store    settings.Backend
	feedback Feedback
	logger   *slog.Logger
	watch    *keyWatch
}

// NewSound creates the sound profile provider.
func NewSound(d Deps) *Sound {
	return &Sound{
		item:     item{name: NameSound, id: IDSound, class: option.LayoutHalf},
		store:    d.Settings,
		feedback: d.Feedback,
		logger:   d.logger(),
		watch:    newKeyWatch(d.Settings, settings.KeySoundStatus, settings.KeyVibrationStatus),
	}
}

// Profile reads the current profile. Sound wins over vibration.
func (s *Sound) Profile() (SoundProfile, error) {
	snd, err := s.store.GetBool(settings.KeySoundStatus)
	if err != nil {
		return 0, err
	}
	if snd {
		return ProfileSound, nil
	}
	vib, err := s.store.GetBool(settings.KeyVibrationStatus)
	if err != nil {
		return 0, err
	}
	if vib {
		return ProfileVibration, nil
	}
	return ProfileMute, nil
}

func (s *Sound) Enabled() bool { return true }

func (s *Sound) Icon() (string, error) {
	p, err := s.Profile()
	if err != nil {
		return "", readErr("icon", s.name, err)
	}
	switch p {
	case ProfileSound:
		return "audio-volume-high-symbolic", nil
	case ProfileVibration:
		return "phone-vibrate-symbolic", nil
	default:
		return "audio-volume-muted-symbolic", nil
	}
}

func (s *Sound) Text() (string, error) {
	p, err := s.Profile()
	if err != nil {
		return "", readErr("text", s.name, err)
	}
	return p.String(), nil
}

func (s *Sound) Activate(_ context.Context, _ option.Session) error {
	current, err := s.Profile()
	if err != nil {
		return readErr("activate", s.name, err)
	}

	switch current {
	case ProfileSound:
		err = s.set(false, true)
		s.play(pattern.VibrationOn)
	case ProfileVibration:
		err = s.set(false, false)
	case ProfileMute:
		err = s.set(true, false)
		s.play(pattern.SilentOff)
		s.restoreRingtone()
	}
	if err != nil {
		return option.Errorf("activate", s.name, err)
	}
	return nil
}

func (s *Sound) set(sound, vibration bool) error {
	if err := s.store.SetBool(settings.KeySoundStatus, sound); err != nil {
		return err
	}
	return s.store.SetBool(settings.KeyVibrationStatus, vibration)
}

func (s *Sound) play(p pattern.Pattern) {
	if s.feedback == nil {
		return
	}
	if err := s.feedback.Play(p); err != nil {
		s.logger.Debug("feedback failed", "pattern", p.String(), "error", err)
	}
}

func (s *Sound) restoreRingtone() {
	vol, err := s.store.GetInt(settings.KeyRingtoneVolume)
	if err != nil || vol != 0 {
		return
	}
	if err := s.store.SetInt(settings.KeyRingtoneVolume, defaultRingtoneVolume); err != nil {
		s.logger.Warn("failed to set ringtone volume", "error", err)
	}
}

func (s *Sound) RegisterHandlers(sess option.Session) error { return s.watch.register(s, sess) }

func (s *Sound) UnregisterHandlers(option.Session) error { return s.watch.unregister() }

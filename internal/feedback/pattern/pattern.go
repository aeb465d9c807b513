// Package pattern names the feedback events that options and the daemon
// request. It has no audio dependencies, so callers that only request
// feedback do not link the sound backend.
package pattern

// Pattern names a feedback event.
type Pattern int

const (
	// Tap accompanies a plain item tap.
	Tap Pattern = iota
	// VibrationOn accompanies switching the profile to vibration.
	VibrationOn
	// SilentOff accompanies leaving mute for sound.
	SilentOff
)

// String returns the config key of the pattern.
func (p Pattern) String() string {
	switch p {
	case Tap:
		return "tap"
	case VibrationOn:
		return "vibration_on"
	case SilentOff:
		return "silent_off"
	default:
		return "unknown"
	}
}

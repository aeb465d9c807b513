package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPattern_String(t *testing.T) {
	tests := []struct {
		p    Pattern
		want string
	}{
		{Tap, "tap"},
		{VibrationOn, "vibration_on"},
		{SilentOff, "silent_off"},
		{Pattern(9), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.p.String())
	}
}

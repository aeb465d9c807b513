package dispatch

import (
	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/confirm"
)

// Renderer draws the popup. All methods are called on the event loop.
type Renderer interface {
	// Show creates the popup for c.
	Show(c *compose.Composition) error
	// RefreshSlot re-resolves and redraws only the slot at index.
	RefreshSlot(index int, c *compose.Composition)
	// Raise brings an already shown popup to the front.
	Raise()
	// Toast shows a transient notice.
	Toast(message string)
	// HideToast removes the notice.
	HideToast()
	// Teardown destroys the popup.
	Teardown()
}

// DialogRenderer is implemented by renderers that can show a confirmation
// dialog instead of the option list.
type DialogRenderer interface {
	ShowDialog(d confirm.Dialog) error
}

// CloseReason records why a session closed.
type CloseReason int

const (
	// ReasonActivated means a terminating option was activated.
	ReasonActivated CloseReason = iota
	// ReasonRequested means an option asked for the popup to close.
	ReasonRequested
	// ReasonDismissed means the user dismissed the popup (back key, outside tap).
	ReasonDismissed
	// ReasonLCDOff means the display turned off.
	ReasonLCDOff
	// ReasonPowerKey means the power key raised the home screen.
	ReasonPowerKey
	// ReasonDialog means a dialog button was chosen.
	ReasonDialog
	// ReasonExternal means a client asked over D-Bus.
	ReasonExternal
	// ReasonShutdown means the process is exiting.
	ReasonShutdown
)

// String returns the string representation of the reason.
func (r CloseReason) String() string {
	switch r {
	case ReasonActivated:
		return "activated"
	case ReasonRequested:
		return "requested"
	case ReasonDismissed:
		return "dismissed"
	case ReasonLCDOff:
		return "lcd-off"
	case ReasonPowerKey:
		return "power-key"
	case ReasonDialog:
		return "dialog"
	case ReasonExternal:
		return "external"
	case ReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// State is the controller state.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateClosing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

package option

import (
	"context"
	"fmt"
)

// LayoutClass classifies how an option is laid out in the popup list.
type LayoutClass int

const (
	// LayoutUnknown is the zero value and is rejected at registration.
	LayoutUnknown LayoutClass = iota
	// LayoutHalf shares its row with one sibling half item.
	LayoutHalf
	// LayoutFullOneTextOneIcon spans the row with one label and one icon.
	LayoutFullOneTextOneIcon
	// LayoutFullTwoText spans the row with a label and a sub label.
	LayoutFullTwoText
)

// String returns the string representation of the layout class.
func (c LayoutClass) String() string {
	switch c {
	case LayoutHalf:
		return "half"
	case LayoutFullOneTextOneIcon:
		return "full-1text-1icon"
	case LayoutFullTwoText:
		return "full-2text"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// Valid reports whether the class is one of the known layout classes.
func (c LayoutClass) Valid() bool {
	return c == LayoutHalf || c == LayoutFullOneTextOneIcon || c == LayoutFullTwoText
}

// IsFull reports whether the class occupies a whole row.
func (c LayoutClass) IsFull() bool {
	return c == LayoutFullOneTextOneIcon || c == LayoutFullTwoText
}

// Option is a single selectable device toggle or action.
//
// Query methods (Enabled, Icon, Text, ShouldTerminate) are called lazily at
// draw time and may be called repeatedly, so they must not have side effects.
// The layout class must not change after registration. Implementations
// should be pointer types: options are matched by identity, and values of
// an uncomparable type never match any slot.
type Option interface {
	// Name is a diagnostic name, e.g. "wifi".
	Name() string
	// ID is the sort key. It is not required to be unique.
	ID() int
	// LayoutClass is fixed for the option's lifetime.
	LayoutClass() LayoutClass
	// Enabled reports whether the item can be interacted with right now.
	Enabled() bool
	// Icon returns the icon identifier for the current state.
	Icon() (string, error)
	// Text returns the primary label.
	Text() (string, error)
	// ShouldTerminate reports whether the popup closes after activation.
	// It is queried immediately before Activate.
	ShouldTerminate() bool
	// Activate handles a user click.
	Activate(ctx context.Context, s Session) error
	// RegisterHandlers subscribes to the option's external state for the
	// lifetime of a popup session.
	RegisterHandlers(s Session) error
	// UnregisterHandlers releases what RegisterHandlers acquired.
	UnregisterHandlers(s Session) error
}

// SubTexter is implemented by options that provide a secondary label.
// LayoutFullTwoText options must implement it.
type SubTexter interface {
	SubText() (string, error)
}

// IconDimmer is implemented by options that can show a dimmed icon while
// remaining interactable.
type IconDimmer interface {
	IconDisabled() bool
}

// Session is the handle an option receives for one open popup.
type Session interface {
	// ID identifies the popup session.
	ID() string
	// Changed requests a refresh of the option's slot. Safe to call from any
	// goroutine; ignored once the session is closed.
	Changed(o Option)
	// Toast shows a transient notice to the user.
	Toast(message string)
	// RequestClose asks the popup to close once the current activation returns.
	RequestClose()
}

// SubText returns the option's secondary label, or ErrUnsupported if the
// option has none.
func SubText(o Option) (string, error) {
	st, ok := o.(SubTexter)
	if !ok {
		return "", &Error{Op: "subtext", Option: o.Name(), Err: ErrUnsupported}
	}
	return st.SubText()
}

// IconDisabled reports the option's dimmed-icon hint, false if it has none.
func IconDisabled(o Option) bool {
	d, ok := o.(IconDimmer)
	return ok && d.IconDisabled()
}

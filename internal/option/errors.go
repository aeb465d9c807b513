package option

import "errors"

var (
	// ErrInvalidArgument is returned for nil or empty required input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupported is returned when a feature is not available in the
	// current configuration or state.
	ErrUnsupported = errors.New("not supported")
	// ErrResourceExhausted is returned when allocation or connection setup fails.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrCommunicationFailure is returned when a remote call fails or times out.
	ErrCommunicationFailure = errors.New("communication failure")
	// ErrNotFound is returned when no option is registered for an expected id.
	ErrNotFound = errors.New("not found")
)

// Error describes a failure of an option operation.
type Error struct {
	Op     string // Operation, e.g. "activate", "icon"
	Option string // Option name, may be empty
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Option != "" {
		msg = e.Option + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf wraps err as an *Error for the given operation and option.
func Errorf(op, name string, err error) error {
	return &Error{Op: op, Option: name, Err: err}
}

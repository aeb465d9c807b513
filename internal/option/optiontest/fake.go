// Package optiontest provides a configurable option.Option for tests.
package optiontest

import (
	"context"
	"sync"

	"github.com/jmylchreest/devopts/internal/option"
)

// Fake is an option.Option whose behaviour is set through its fields.
type Fake struct {
	OptName   string
	OptID     int
	Class     option.LayoutClass
	Label     string
	Sub       string
	IconName  string
	Dimmed    bool
	Disabled  bool
	Terminate bool

	ActivateErr   error
	RegisterErr   error
	UnregisterErr error

	// OnActivate runs inside Activate before ActivateErr is returned.
	OnActivate func(f *Fake, s option.Session)

	mu          sync.Mutex
	activations int
	registers   int
	unregisters int
}

// New returns a fake option with the given name, id and class.
func New(name string, id int, class option.LayoutClass) *Fake {
	return &Fake{
		OptName:  name,
		OptID:    id,
		Class:    class,
		Label:    name,
		IconName: name + "-icon",
	}
}

func (f *Fake) Name() string { return f.OptName }
func (f *Fake) ID() int { return f.OptID }
func (f *Fake) LayoutClass() option.LayoutClass { return f.Class }
func (f *Fake) Enabled() bool { return !f.Disabled }
func (f *Fake) IconDisabled() bool { return f.Dimmed }

func (f *Fake) Icon() (string, error) {
	if f.IconName == "" {
		return "", option.Errorf("icon", f.OptName, option.ErrInvalidArgument)
	}
	return f.IconName, nil
}

func (f *Fake) Text() (string, error) {
	if f.Label == "" {
		return "", option.Errorf("text", f.OptName, option.ErrInvalidArgument)
	}
	return f.Label, nil
}

func (f *Fake) SubText() (string, error) {
	if f.Sub == "" {
		return "", option.Errorf("subtext", f.OptName, option.ErrUnsupported)
	}
	return f.Sub, nil
}

func (f *Fake) ShouldTerminate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Terminate
}

func (f *Fake) Activate(_ context.Context, s option.Session) error {
	f.mu.Lock()
	f.activations++
	hook := f.OnActivate
	f.mu.Unlock()
	if hook != nil {
		hook(f, s)
	}
	return f.ActivateErr
}

func (f *Fake) RegisterHandlers(option.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	return f.RegisterErr
}

func (f *Fake) UnregisterHandlers(option.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisters++
	return f.UnregisterErr
}

// SetTerminate changes the value ShouldTerminate returns.
func (f *Fake) SetTerminate(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Terminate = v
}

// Activations returns how many times Activate was called.
func (f *Fake) Activations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activations
}

// Registers returns how many times RegisterHandlers was called.
func (f *Fake) Registers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers
}

// Unregisters returns how many times UnregisterHandlers was called.
func (f *Fake) Unregisters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unregisters
}

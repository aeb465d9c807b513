package options

import (
	"context"

	"github.com/jmylchreest/devopts/internal/option"
)

// Accessibility opens the accessibility settings application.
type Accessibility struct {
	item
	noHandlers
	launcher Launcher
}

// NewAccessibility creates the accessibility provider.
func NewAccessibility(d Deps) *Accessibility {
	return &Accessibility{
		item:     item{name: NameAccessibility, id: IDAccessibility, class: option.LayoutFullOneTextOneIcon, terminate: true},
		launcher: d.Launcher,
	}
}

func (a *Accessibility) Enabled() bool { return true }

func (a *Accessibility) Icon() (string, error) {
	return "preferences-desktop-accessibility-symbolic", nil
}

func (a *Accessibility) Text() (string, error) { return "Accessibility", nil }

func (a *Accessibility) Activate(ctx context.Context, _ option.Session) error {
	if a.launcher == nil {
		return option.Errorf("activate", a.name, option.ErrUnsupported)
	}
	if err := a.launcher.LaunchApp(ctx, AccessibilityApp, nil); err != nil {
		return option.Errorf("activate", a.name, err)
	}
	return nil
}

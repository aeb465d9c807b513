// Package confirm describes modal confirmation dialogs, such as the power
// off prompt shown in place of the option list.
package confirm

import (
	"context"
	"errors"
)

// Choice identifies a dialog button.
type Choice int

const (
	ChoiceLeft Choice = iota
	ChoiceRight
)

// String returns the string representation of the choice.
func (c Choice) String() string {
	if c == ChoiceRight {
		return "right"
	}
	return "left"
}

// Button is a dialog button. A nil Action only closes the dialog.
type Button struct {
	Label  string
	Icon   string
	Action func(ctx context.Context) error
}

// Dialog is a title, a message and one or two buttons.
type Dialog struct {
	Title   string
	Content string
	Left    Button
	// Right is nil for single-button dialogs.
	Right *Button
}

// Validate checks the dialog can be drawn.
func (d Dialog) Validate() error {
	if d.Content == "" {
		return errors.New("confirm: dialog has no content")
	}
	if d.Left.Label == "" && d.Left.Icon == "" {
		return errors.New("confirm: left button has no label")
	}
	if d.Right != nil && d.Right.Label == "" && d.Right.Icon == "" {
		return errors.New("confirm: right button has no label")
	}
	return nil
}

// Button returns the button for c.
func (d Dialog) Button(c Choice) (Button, bool) {
	switch c {
	case ChoiceLeft:
		return d.Left, true
	case ChoiceRight:
		if d.Right != nil {
			return *d.Right, true
		}
	}
	return Button{}, false
}

// PowerController performs device power transitions.
type PowerController interface {
	PowerOff(ctx context.Context) error
	Restart(ctx context.Context) error
}

// PowerOff returns the power off confirmation dialog.
func PowerOff(p PowerController) Dialog {
	return Dialog{
		Title:   "Power off",
		Content: "Your device will power off.",
		Left:    Button{Label: "Cancel", Icon: "window-close-symbolic"},
		Right: &Button{
			Label:  "Power off",
			Icon:   "system-shutdown-symbolic",
			Action: p.PowerOff,
		},
	}
}

// Restart returns the restart confirmation dialog.
func Restart(p PowerController) Dialog {
	return Dialog{
		Title:   "Restart",
		Content: "Your device will restart.",
		Left:    Button{Label: "Cancel", Icon: "window-close-symbolic"},
		Right: &Button{
			Label:  "Restart",
			Icon:   "system-reboot-symbolic",
			Action: p.Restart,
		},
	}
}

package options

import (
	"context"

	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/option"
)

// Power requests a device power transition from the power controller.
type Power struct {
	item
	noHandlers
	icon   string
	label  string
	action func(ctx context.Context) error
}

// NewPowerOff creates the power off provider.
func NewPowerOff(d Deps) *Power {
	return newPower(item{name: NamePowerOff, id: IDPowerOff}, "system-shutdown-symbolic", "Power off", d.Power, confirm.PowerController.PowerOff)
}

// NewRestart creates the restart provider.
func NewRestart(d Deps) *Power {
	return newPower(item{name: NameRestart, id: IDRestart}, "system-reboot-symbolic", "Restart", d.Power, confirm.PowerController.Restart)
}

func newPower(it item, icon, label string, pc confirm.PowerController, fn func(confirm.PowerController, context.Context) error) *Power {
	it.class = option.LayoutFullOneTextOneIcon
	it.terminate = true
	return &Power{
		item:  it,
		icon:  icon,
		label: label,
		action: func(ctx context.Context) error {
			if pc == nil {
				return option.ErrUnsupported
			}
			return fn(pc, ctx)
		},
	}
}

func (p *Power) Enabled() bool { return true }

func (p *Power) Icon() (string, error) { return p.icon, nil }

func (p *Power) Text() (string, error) { return p.label, nil }

func (p *Power) Activate(ctx context.Context, _ option.Session) error {
	if err := p.action(ctx); err != nil {
		return option.Errorf("activate", p.name, err)
	}
	return nil
}

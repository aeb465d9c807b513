package compose

import (
	"errors"

	"github.com/jmylchreest/devopts/internal/option"
)

// ItemView is the draw-time state of a single option.
type ItemView struct {
	Name         string
	Class        option.LayoutClass
	Text         string
	SubText      string
	Icon         string
	Enabled      bool
	IconDisabled bool
	// Err holds the first query failure. The item is still drawn with
	// whatever was resolved.
	Err error
}

// SlotView is the draw-time state of one slot.
type SlotView struct {
	Index     int
	Full      bool
	NoDivider bool
	Left      ItemView
	Right     *ItemView
}

// ResolveItem queries o for everything a renderer draws. Queries have no side
// effects, so this may run on every redraw.
func ResolveItem(o option.Option) ItemView {
	v := ItemView{
		Name:         o.Name(),
		Class:        o.LayoutClass(),
		Enabled:      o.Enabled(),
		IconDisabled: option.IconDisabled(o),
	}

	var errs []error
	var err error
	if v.Text, err = o.Text(); err != nil {
		errs = append(errs, err)
	}
	if v.Icon, err = o.Icon(); err != nil {
		errs = append(errs, err)
	}
	if v.Class == option.LayoutFullTwoText {
		if v.SubText, err = option.SubText(o); err != nil {
			errs = append(errs, err)
		}
	}
	v.Err = errors.Join(errs...)
	return v
}

// ResolveSlot resolves the slot at index.
func (c *Composition) ResolveSlot(index int) (SlotView, bool) {
	if c == nil || index < 0 || index >= len(c.Slots) {
		return SlotView{}, false
	}
	s := c.Slots[index]

	v := SlotView{
		Index:     index,
		Full:      s.Full,
		NoDivider: s.NoDivider,
		Left:      ResolveItem(s.Left),
	}
	if s.Right != nil {
		r := ResolveItem(s.Right)
		v.Right = &r
	}
	return v, true
}

// Resolve resolves every slot.
func (c *Composition) Resolve() []SlotView {
	if c == nil {
		return nil
	}
	out := make([]SlotView, 0, len(c.Slots))
	for i := range c.Slots {
		v, _ := c.ResolveSlot(i)
		out = append(out, v)
	}
	return out
}

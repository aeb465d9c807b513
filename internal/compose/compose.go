// Package compose turns the registry into the ordered slot list of a popup.
package compose

import (
	"reflect"

	"github.com/jmylchreest/devopts/internal/layout"
	"github.com/jmylchreest/devopts/internal/option"
)

// Source is the read-only view of the registry the composer needs.
type Source interface {
	Full() []option.Option
	Half() []option.Option
	CountFull() int
	CountHalf() int
}

// Slot is one row of the popup list: a full-width option in Left, or a pair
// of half options with Right possibly nil.
type Slot struct {
	Left  option.Option
	Right option.Option
	// Full is set for full-width rows.
	Full bool
	// NoDivider hides the separator below the row.
	NoDivider bool
}

// Contains reports whether o is shown in the slot.
func (s Slot) Contains(o option.Option) bool {
	if o == nil {
		return false
	}
	return sameOption(s.Left, o) || sameOption(s.Right, o)
}

// sameOption compares option identity. Values of uncomparable dynamic type
// never match, since == on them panics.
func sameOption(a, b option.Option) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Composition is the result of composing a popup.
type Composition struct {
	Skin  layout.Skin
	Slots []Slot
}

// SlotCount returns the number of rows for the given class counts.
func SlotCount(countFull, countHalf int) int {
	return countFull + (countHalf+1)/2
}

// Build composes the popup from src. Full options come first in id order,
// then half options paired two per row in id order. The last row has no
// divider.
func Build(src Source, policy *layout.Policy) *Composition {
	full := src.Full()
	half := src.Half()

	c := &Composition{
		Skin:  policy.Choose(SlotCount(src.CountFull(), src.CountHalf())),
		Slots: make([]Slot, 0, SlotCount(len(full), len(half))),
	}

	for _, o := range full {
		c.Slots = append(c.Slots, Slot{Left: o, Full: true})
	}

	for i := 0; i < len(half); i += 2 {
		s := Slot{Left: half[i]}
		if i+1 < len(half) {
			s.Right = half[i+1]
		}
		c.Slots = append(c.Slots, s)
	}

	if n := len(c.Slots); n > 0 {
		c.Slots[n-1].NoDivider = true
	}
	return c
}

// IndexOf returns the index of the slot showing o, or -1.
func (c *Composition) IndexOf(o option.Option) int {
	if c == nil {
		return -1
	}
	for i, s := range c.Slots {
		if s.Contains(o) {
			return i
		}
	}
	return -1
}

// Options returns every option in display order.
func (c *Composition) Options() []option.Option {
	var out []option.Option
	for _, s := range c.Slots {
		out = append(out, s.Left)
		if s.Right != nil {
			out = append(out, s.Right)
		}
	}
	return out
}

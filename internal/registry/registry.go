// Package registry holds the registered device options, partitioned into
// full-width and half-width items and kept sorted by option id.
package registry

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/jmylchreest/devopts/internal/option"
)

// Registry stores options in two ordered sequences, one per row width.
//
// Membership only grows: options are added during startup registration and
// removed in bulk by Reset at shutdown. The registry does not own the options.
// It is not safe for concurrent use; all access happens on the event loop.
type Registry struct {
	logger *slog.Logger
	full   []option.Option
	half   []option.Option
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register inserts o into the sequence matching its layout class.
//
// A new option is placed after every existing option whose id is less than
// or equal to its own, so equal ids keep registration order. Duplicates are
// not detected. Invalid options are logged and skipped.
func (r *Registry) Register(o option.Option) error {
	if o == nil {
		r.logger.Error("invalid option: nil")
		return option.Errorf("register", "", option.ErrInvalidArgument)
	}

	class := o.LayoutClass()
	switch {
	case class == option.LayoutHalf:
		r.half = insertSorted(r.half, o)
	case class.IsFull():
		r.full = insertSorted(r.full, o)
	default:
		r.logger.Error("unknown item type", "option", o.Name(), "class", class.String())
		return option.Errorf("register", o.Name(), option.ErrInvalidArgument)
	}

	r.logger.Debug("registered option", "option", o.Name(), "id", o.ID(), "class", class.String())
	return nil
}

// insertSorted inserts o after the last element with id <= o.ID().
func insertSorted(items []option.Option, o option.Option) []option.Option {
	id := o.ID()
	idx := sort.Search(len(items), func(i int) bool {
		return items[i].ID() > id
	})
	return slices.Insert(items, idx, o)
}

// Full returns the full-width options in ascending id order.
func (r *Registry) Full() []option.Option {
	return slices.Clone(r.full)
}

// Half returns the half-width options in ascending id order.
func (r *Registry) Half() []option.Option {
	return slices.Clone(r.half)
}

// All returns the full-width options followed by the half-width options.
func (r *Registry) All() []option.Option {
	all := make([]option.Option, 0, len(r.full)+len(r.half))
	all = append(all, r.full...)
	return append(all, r.half...)
}

// CountFull returns the number of full-width options.
func (r *Registry) CountFull() int {
	return len(r.full)
}

// CountHalf returns the number of half-width options.
func (r *Registry) CountHalf() int {
	return len(r.half)
}

// Len returns the total number of registered options.
func (r *Registry) Len() int {
	return len(r.full) + len(r.half)
}

// Lookup returns the first registered option with the given name.
func (r *Registry) Lookup(name string) (option.Option, bool) {
	for _, o := range r.All() {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// Reset discards all registrations. Called at shutdown.
func (r *Registry) Reset() {
	r.full = nil
	r.half = nil
}

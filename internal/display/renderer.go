package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/config"
	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/layout"
	"github.com/jmylchreest/devopts/internal/option"
)

// Handlers receive user input from the popup. All are called on the GTK
// main loop; nil handlers are skipped.
type Handlers struct {
	// Activate is called when an option is clicked.
	Activate func(o option.Option)
	// Respond is called when a dialog button is clicked.
	Respond func(c confirm.Choice)
	// Dismiss is called on Escape or when the compositor closes the window.
	Dismiss func()
	// Tap is called for every press inside the popup.
	Tap func()
}

// Renderer draws the popup as a GTK layer-shell window. It implements the
// dispatch Renderer and DialogRenderer interfaces. It is not safe for
// concurrent use; call it from the GTK main loop only.
type Renderer struct {
	app      *gtk.Application
	cfg      *config.Config
	loader   *layout.Loader
	logger   *slog.Logger
	handlers Handlers
	display  *gdk.Display

	popup *Popup
	comp  *compose.Composition
}

// NewRenderer creates a renderer. Templates are loaded with loader.
func NewRenderer(app *gtk.Application, cfg *config.Config, loader *layout.Loader, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if loader == nil {
		loader = layout.NewLoader("")
	}
	return &Renderer{
		app:    app,
		cfg:    cfg,
		loader: loader,
		logger: logger,
	}
}

// SetHandlers sets the input handlers.
func (r *Renderer) SetHandlers(h Handlers) {
	r.handlers = h
}

// Start checks that a display is available.
func (r *Renderer) Start() error {
	r.display = gdk.DisplayGetDefault()
	if r.display == nil {
		return &DisplayError{Message: "no display available"}
	}
	r.logger.Info("display renderer started")
	return nil
}

// Show implements dispatch.Renderer.
func (r *Renderer) Show(c *compose.Composition) error {
	if r.display == nil {
		return &DisplayError{Message: "renderer not started"}
	}
	r.Teardown()

	tmpl, err := r.loader.LoadSkin(c.Skin)
	if err != nil {
		r.logger.Warn("layout template not found, using default", "skin", c.Skin.String(), "error", err)
	}

	p := r.newPopup(tmpl)
	p.onItem = func(slot int, right bool) {
		r.itemClicked(slot, right)
	}
	p.buildList(c)

	r.popup = p
	r.comp = c
	p.Present()

	r.logger.Debug("popup shown", "skin", c.Skin.String(), "slots", len(c.Slots))
	return nil
}

// ShowDialog implements dispatch.DialogRenderer.
func (r *Renderer) ShowDialog(d confirm.Dialog) error {
	if r.display == nil {
		return &DisplayError{Message: "renderer not started"}
	}
	r.Teardown()

	tmpl, err := r.loader.Load("confirm")
	if err != nil {
		return &DisplayError{Message: "confirm template unavailable", Cause: err}
	}

	p := r.newPopup(tmpl)
	p.onChoice = func(c confirm.Choice) {
		if r.handlers.Respond != nil {
			r.handlers.Respond(c)
		}
	}
	p.buildDialog(d)

	r.popup = p
	p.Present()

	r.logger.Debug("dialog shown", "title", d.Title)
	return nil
}

func (r *Renderer) newPopup(tmpl *layout.LayoutConfig) *Popup {
	monitor := monitorFor(r.display, r.cfg.Display.Monitor, r.logger)
	p := newPopup(r.app, r.cfg, tmpl, monitor, r.logger)
	p.onDismiss = func() {
		if r.handlers.Dismiss != nil {
			r.handlers.Dismiss()
		}
	}
	p.onTap = func() {
		if r.handlers.Tap != nil {
			r.handlers.Tap()
		}
	}
	return p
}

func (r *Renderer) itemClicked(slot int, right bool) {
	if r.comp == nil || slot < 0 || slot >= len(r.comp.Slots) {
		return
	}
	s := r.comp.Slots[slot]
	o := s.Left
	if right {
		o = s.Right
	}
	if o == nil || r.handlers.Activate == nil {
		return
	}
	r.handlers.Activate(o)
}

// RefreshSlot implements dispatch.Renderer.
func (r *Renderer) RefreshSlot(index int, c *compose.Composition) {
	if r.popup == nil {
		return
	}
	v, ok := c.ResolveSlot(index)
	if !ok {
		return
	}
	r.comp = c
	r.popup.RefreshSlot(v)
}

// Raise implements dispatch.Renderer.
func (r *Renderer) Raise() {
	if r.popup != nil {
		r.popup.Present()
	}
}

// Toast implements dispatch.Renderer.
func (r *Renderer) Toast(message string) {
	if r.popup != nil {
		r.popup.ShowToast(message)
	}
}

// HideToast implements dispatch.Renderer.
func (r *Renderer) HideToast() {
	if r.popup != nil {
		r.popup.HideToast()
	}
}

// Teardown implements dispatch.Renderer.
func (r *Renderer) Teardown() {
	if r.popup == nil {
		return
	}
	r.popup.Close()
	r.popup = nil
	r.comp = nil
}

// Visible reports whether a popup window exists.
func (r *Renderer) Visible() bool {
	return r.popup != nil
}

// UpdateConfig replaces the configuration. It applies from the next Show.
func (r *Renderer) UpdateConfig(cfg *config.Config, loader *layout.Loader) {
	if cfg != nil {
		r.cfg = cfg
	}
	if loader != nil {
		r.loader = loader
	}
	r.logger.Debug("display renderer config updated", "position", r.cfg.Display.Position)
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/layout"
	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/toast"
)

// ErrNotOpen is returned for operations that need an open popup.
var ErrNotOpen = errors.New("dispatch: popup not open")

// Registry is the registry view the controller uses.
type Registry interface {
	compose.Source
	All() []option.Option
}

// Controller drives popup sessions. Except for Post and Session methods, all
// methods must be called on the event loop.
type Controller struct {
	logger   *slog.Logger
	reg      Registry
	policy   *layout.Policy
	renderer Renderer
	poster   Poster
	spawn    func(func())
	toasts   *toast.Manager

	state          State
	current        *session
	comp           *compose.Composition
	dialog         *confirm.Dialog
	activating     bool
	closeRequested bool

	onOpen  func(sessionID string)
	onClose func(sessionID string, reason CloseReason)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSpawner sets how activations are run off the loop. The default starts
// a goroutine.
func WithSpawner(spawn func(func())) ControllerOption {
	return func(c *Controller) {
		if spawn != nil {
			c.spawn = spawn
		}
	}
}

// WithToasts replaces the toast manager.
func WithToasts(m *toast.Manager) ControllerOption {
	return func(c *Controller) {
		if m != nil {
			c.toasts = m
		}
	}
}

// WithOpenHandler sets a callback run after a session opens.
func WithOpenHandler(fn func(sessionID string)) ControllerOption {
	return func(c *Controller) { c.onOpen = fn }
}

// WithCloseHandler sets a callback run after a session closes.
func WithCloseHandler(fn func(sessionID string, reason CloseReason)) ControllerOption {
	return func(c *Controller) { c.onClose = fn }
}

// NewController creates a controller for reg that draws with renderer and
// runs on poster's loop.
func NewController(reg Registry, policy *layout.Policy, renderer Renderer, poster Poster, opts ...ControllerOption) *Controller {
	c := &Controller{
		logger:   slog.Default(),
		reg:      reg,
		policy:   policy,
		renderer: renderer,
		poster:   poster,
		spawn:    func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.toasts == nil {
		c.toasts = toast.NewManager(renderer, poster.Post, c.logger)
	}
	return c
}

// Post runs f on the event loop.
func (c *Controller) Post(f func()) {
	c.poster.Post(f)
}

// SetPolicy replaces the layout policy. It applies from the next Open.
func (c *Controller) SetPolicy(p *layout.Policy) {
	c.policy = p
}

// State returns the controller state.
func (c *Controller) State() State {
	return c.state
}

// SessionID returns the id of the open session, empty when idle.
func (c *Controller) SessionID() string {
	if c.current == nil {
		return ""
	}
	return c.current.id
}

// Composition returns the composition of the open popup, nil when idle or
// showing a dialog.
func (c *Controller) Composition() *compose.Composition {
	return c.comp
}

// Open composes and shows the popup, then subscribes every registered option
// to its change source. Opening an already open popup raises it.
func (c *Controller) Open(ctx context.Context) error {
	if c.state == StateOpen {
		c.logger.Debug("popup already open, raising")
		c.renderer.Raise()
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	comp := compose.Build(c.reg, c.policy)
	if len(comp.Slots) == 0 {
		c.logger.Warn("opening popup with no options")
	}

	s := newSession(c)
	c.current = s
	c.comp = comp
	c.state = StateOpen

	if err := c.renderer.Show(comp); err != nil {
		c.reset()
		return fmt.Errorf("failed to show popup: %w", err)
	}

	for _, o := range c.reg.All() {
		if err := o.RegisterHandlers(s); err != nil {
			c.logger.Warn("failed to register option handlers", "option", o.Name(), "error", err)
		}
	}

	c.logger.Info("popup opened", "session", s.id, "skin", comp.Skin.String(), "slots", len(comp.Slots))
	if c.onOpen != nil {
		c.onOpen(s.id)
	}
	return nil
}

// OpenDialog shows d in place of the option list.
func (c *Controller) OpenDialog(ctx context.Context, d confirm.Dialog) error {
	if c.state == StateOpen {
		c.renderer.Raise()
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	dr, ok := c.renderer.(DialogRenderer)
	if !ok {
		return fmt.Errorf("renderer cannot show dialogs: %w", option.ErrUnsupported)
	}

	s := newSession(c)
	c.current = s
	c.dialog = &d
	c.state = StateOpen

	if err := dr.ShowDialog(d); err != nil {
		c.reset()
		return fmt.Errorf("failed to show dialog: %w", err)
	}

	c.logger.Info("dialog opened", "session", s.id, "title", d.Title)
	if c.onOpen != nil {
		c.onOpen(s.id)
	}
	return nil
}

// Activate handles a click on o.
//
// Whether the popup closes afterwards is decided from ShouldTerminate as
// observed before the activation runs. The activation itself runs off the
// loop; its completion is posted back, after which the popup either closes
// or refreshes o's slot. A failed activation never closes the popup unless
// the option asked for it. Clicks arriving while an activation is running
// are ignored.
func (c *Controller) Activate(ctx context.Context, o option.Option) {
	if c.state != StateOpen || c.comp == nil {
		c.logger.Debug("activation ignored: popup not open", "option", o.Name())
		return
	}
	if c.activating {
		c.logger.Debug("activation ignored: another activation in progress", "option", o.Name())
		return
	}
	if c.comp.IndexOf(o) < 0 {
		c.logger.Warn("activation ignored: option not shown", "option", o.Name())
		return
	}
	if !o.Enabled() {
		c.logger.Debug("activation ignored: option disabled", "option", o.Name())
		return
	}

	c.toasts.Dismiss()

	terminate := o.ShouldTerminate()
	s := c.current
	c.activating = true

	c.logger.Debug("activating option", "option", o.Name(), "terminate", terminate)
	c.spawn(func() {
		err := o.Activate(ctx, s)
		c.poster.Post(func() {
			c.finishActivation(s, o, terminate, err)
		})
	})
}

func (c *Controller) finishActivation(s *session, o option.Option, terminate bool, err error) {
	if c.current != s {
		return
	}
	c.activating = false

	if err != nil {
		c.logger.Error("option activation failed", "option", o.Name(), "error", err)
		terminate = false
	}

	if terminate || c.closeRequested {
		reason := ReasonActivated
		if !terminate {
			reason = ReasonRequested
		}
		c.Close(reason)
		return
	}

	c.Changed(o)
}

// Respond handles a dialog button. The button action runs off the loop and
// the dialog closes when it returns.
func (c *Controller) Respond(ctx context.Context, choice confirm.Choice) {
	if c.state != StateOpen || c.dialog == nil {
		c.logger.Debug("dialog response ignored: no dialog", "choice", choice.String())
		return
	}
	if c.activating {
		return
	}

	btn, ok := c.dialog.Button(choice)
	if !ok {
		c.logger.Warn("dialog response ignored: no such button", "choice", choice.String())
		return
	}

	s := c.current
	if btn.Action == nil {
		c.Close(ReasonDialog)
		return
	}

	c.activating = true
	c.spawn(func() {
		err := btn.Action(ctx)
		c.poster.Post(func() {
			if c.current != s {
				return
			}
			c.activating = false
			if err != nil {
				c.logger.Error("dialog action failed", "choice", choice.String(), "error", err)
			}
			c.Close(ReasonDialog)
		})
	})
}

// Changed refreshes the slot showing o, if any.
func (c *Controller) Changed(o option.Option) {
	if c.state != StateOpen || c.comp == nil {
		return
	}
	idx := c.comp.IndexOf(o)
	if idx < 0 {
		c.logger.Debug("change ignored: option not shown", "option", o.Name())
		return
	}
	c.renderer.RefreshSlot(idx, c.comp)
}

// DismissToast hides a visible toast, e.g. on any tap.
func (c *Controller) DismissToast() {
	c.toasts.Dismiss()
}

// Close unsubscribes every registered option and destroys the popup. Each
// option is unsubscribed independently; failures are logged.
func (c *Controller) Close(reason CloseReason) {
	if c.state != StateOpen {
		return
	}
	c.state = StateClosing

	s := c.current
	s.closed.Store(true)
	c.toasts.Reset()

	if c.dialog == nil {
		for _, o := range c.reg.All() {
			if err := o.UnregisterHandlers(s); err != nil {
				c.logger.Warn("failed to unregister option handlers", "option", o.Name(), "error", err)
			}
		}
	}

	c.renderer.Teardown()
	c.reset()

	c.logger.Info("popup closed", "session", s.id, "reason", reason.String())
	if c.onClose != nil {
		c.onClose(s.id, reason)
	}
}

func (c *Controller) reset() {
	if c.current != nil {
		c.current.closed.Store(true)
	}
	c.current = nil
	c.comp = nil
	c.dialog = nil
	c.activating = false
	c.closeRequested = false
	c.state = StateIdle
}

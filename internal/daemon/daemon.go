package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/devopts/internal/config"
	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/dispatch"
	"github.com/jmylchreest/devopts/internal/feedback"
	"github.com/jmylchreest/devopts/internal/gate"
	"github.com/jmylchreest/devopts/internal/layout"
	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/options"
	"github.com/jmylchreest/devopts/internal/registry"
	"github.com/jmylchreest/devopts/internal/settings"
	"github.com/jmylchreest/devopts/internal/toast"
)

// Options configures a Daemon.
type Options struct {
	Config   *config.Config
	Settings *settings.Store
	Renderer dispatch.Renderer
	Poster   dispatch.Poster

	// Optional collaborators. Nil values make the matching options report
	// unsupported.
	Launcher options.Launcher
	Power    confirm.PowerController
	Feedback options.Feedback
	Notifier *InternalNotifier

	Logger *slog.Logger
	// Spawn runs activations off the loop. Nil starts a goroutine.
	Spawn func(func())
}

// Daemon owns the option registry and the popup controller, and turns
// device events into popup closes.
type Daemon struct {
	logger   *slog.Logger
	store    *settings.Store
	poster   dispatch.Poster
	feedback options.Feedback
	notifier *InternalNotifier
	power    confirm.PowerController

	reg      *registry.Registry
	assembly gate.Result
	toasts   *toast.Manager
	ctrl     *dispatch.Controller
	sessions *SessionLog

	mu       sync.RWMutex
	cfg      *config.Config
	ctx      context.Context
	cancelPM func()
	onOpened func(id string)
	onClosed func(id, reason string)
}

// New builds the registry from the option providers and creates the
// controller. Provider gates are evaluated once, here.
func New(opts Options) (*Daemon, error) {
	if opts.Settings == nil {
		return nil, errors.New("daemon: settings store is required")
	}
	if opts.Renderer == nil || opts.Poster == nil {
		return nil, errors.New("daemon: renderer and poster are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	policy, err := PolicyFor(cfg.Layout)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		logger:   logger,
		store:    opts.Settings,
		poster:   opts.Poster,
		feedback: opts.Feedback,
		notifier: opts.Notifier,
		cfg:      cfg,
		ctx:      context.Background(),
		sessions: NewSessionLog(0),
	}
	d.power = opts.Power
	if d.power != nil && d.notifier != nil {
		d.power = reportingPower{PowerController: opts.Power, report: d.notifier.NotifyPowerError}
	}

	d.reg = registry.New(logger)
	d.assembly = gate.Assemble(d.reg, options.Plugins(options.Deps{
		Settings: opts.Settings,
		Launcher: opts.Launcher,
		Power:    d.power,
		Feedback: opts.Feedback,
		Logger:   logger,
	}), opts.Settings, cfg.Options.Disabled, logger)

	logger.Info("options assembled",
		"registered", d.assembly.Registered,
		"gated", d.assembly.Gated,
		"disabled", d.assembly.Disabled,
	)
	if len(d.assembly.Failed) > 0 {
		logger.Warn("options failed to register", "options", d.assembly.Failed)
	}

	d.toasts = toast.NewManager(opts.Renderer, opts.Poster.Post, logger)
	d.toasts.SetTimeout(cfg.Toast.Timeout.Duration())
	d.toasts.SetMinInterval(cfg.Toast.MinInterval.Duration())

	d.ctrl = dispatch.NewController(d.reg, policy, opts.Renderer, opts.Poster,
		dispatch.WithLogger(logger),
		dispatch.WithSpawner(opts.Spawn),
		dispatch.WithToasts(d.toasts),
		dispatch.WithOpenHandler(d.opened),
		dispatch.WithCloseHandler(d.closed),
	)
	return d, nil
}

// PolicyFor returns the layout policy for lc. Adaptive layouts use the
// compact skin table; otherwise lc.Skin is used for every popup.
func PolicyFor(lc config.LayoutConfig) (*layout.Policy, error) {
	if lc.Adaptive {
		return layout.NewPolicy(layout.AdaptiveTable()), nil
	}
	skin, err := layout.ParseSkin(lc.Skin)
	if err != nil {
		return nil, fmt.Errorf("invalid layout skin: %w", err)
	}
	if skin == layout.SkinDefault {
		return layout.NewPolicy(nil), nil
	}
	return layout.NewPolicy([]layout.Rule{{MaxSlots: math.MaxInt, Skin: skin}}), nil
}

// Controller returns the popup controller.
func (d *Daemon) Controller() *dispatch.Controller {
	return d.ctrl
}

// Registry returns the option registry.
func (d *Daemon) Registry() *registry.Registry {
	return d.reg
}

// Assembly reports which providers were registered at startup.
func (d *Daemon) Assembly() gate.Result {
	return d.assembly
}

// Sessions returns the popup session log.
func (d *Daemon) Sessions() *SessionLog {
	return d.sessions
}

// Config returns the current configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// SetOpenedHook sets a callback run on the loop after a popup opens.
func (d *Daemon) SetOpenedHook(fn func(id string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onOpened = fn
}

// SetClosedHook sets a callback run on the loop after a popup closes.
func (d *Daemon) SetClosedHook(fn func(id, reason string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClosed = fn
}

func (d *Daemon) opened(id string) {
	d.sessions.Opened(id)

	d.mu.RLock()
	hook := d.onOpened
	d.mu.RUnlock()
	if hook != nil {
		hook(id)
	}
}

func (d *Daemon) closed(id string, reason dispatch.CloseReason) {
	if s, ok := d.sessions.Closed(id, reason.String()); ok {
		d.logger.Debug("popup session ended", "session", id, "reason", s.Reason, "duration", s.Duration(time.Now()))
	}

	d.mu.RLock()
	hook := d.onClosed
	d.mu.RUnlock()
	if hook != nil {
		hook(id, reason.String())
	}
}

// Start subscribes to the display power state. Opening and activation use
// ctx.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()

	cancel, err := d.store.Watch(settings.KeyPMState, d.pmStateChanged)
	if err != nil {
		return fmt.Errorf("failed to watch display state: %w", err)
	}

	d.mu.Lock()
	d.cancelPM = cancel
	d.mu.Unlock()

	d.logger.Info("daemon started", "options", d.reg.Len())
	return nil
}

// Stop unsubscribes from device events and closes the popup. It must be
// called on the event loop.
func (d *Daemon) Stop() {
	d.mu.Lock()
	cancel := d.cancelPM
	d.cancelPM = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.ctrl.Close(dispatch.ReasonShutdown)
	d.toasts.Reset()
	d.logger.Info("daemon stopped")
}

func (d *Daemon) runContext() context.Context {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ctx
}

// pmStateChanged runs on the goroutine that changed the setting.
func (d *Daemon) pmStateChanged(key string) {
	state, err := d.store.GetInt(key)
	if err != nil {
		d.logger.Debug("failed to read display state", "error", err)
		return
	}
	if state != settings.PMStateLCDOff {
		return
	}
	if !d.Config().Popup.CloseOnLCDOff {
		return
	}
	d.poster.Post(func() {
		d.ctrl.Close(dispatch.ReasonLCDOff)
	})
}

// PowerKey handles the home-raise signal sent on a power key press. It may be
// called from any goroutine.
func (d *Daemon) PowerKey() {
	if !d.Config().Popup.CloseOnPowerKey {
		return
	}
	d.poster.Post(func() {
		d.ctrl.Close(dispatch.ReasonPowerKey)
	})
}

// Show opens the popup in style and waits for the loop to report the
// result. An empty style uses the configured one. It may be called from any
// goroutine except the loop itself.
func (d *Daemon) Show(ctx context.Context, style string) error {
	errCh := make(chan error, 1)
	d.poster.Post(func() {
		errCh <- d.open(style)
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Daemon) open(style string) error {
	if style == "" {
		style = d.Config().Popup.Style
	}
	ctx := d.runContext()

	switch style {
	case config.StyleList:
		return d.ctrl.Open(ctx)
	case config.StyleConfirm, StylePowerOff:
		if d.power == nil {
			return fmt.Errorf("power control unavailable: %w", option.ErrUnsupported)
		}
		return d.ctrl.OpenDialog(ctx, confirm.PowerOff(d.power))
	case StyleRestart:
		if d.power == nil {
			return fmt.Errorf("power control unavailable: %w", option.ErrUnsupported)
		}
		return d.ctrl.OpenDialog(ctx, confirm.Restart(d.power))
	default:
		return fmt.Errorf("unknown popup style %q: %w", style, option.ErrInvalidArgument)
	}
}

// Extra styles accepted by Show besides the configurable ones.
const (
	StylePowerOff = "poweroff"
	StyleRestart  = "restart"
)

// Hide closes the popup. It may be called from any goroutine.
func (d *Daemon) Hide() {
	d.poster.Post(func() {
		d.ctrl.Close(dispatch.ReasonExternal)
	})
}

// Activate handles a click on o. It must be called on the event loop.
func (d *Daemon) Activate(o option.Option) {
	if d.feedback != nil {
		if err := d.feedback.Play(feedback.PatternTap); err != nil {
			d.logger.Debug("tap feedback failed", "error", err)
		}
	}
	d.ctrl.Activate(d.runContext(), o)
}

// Respond handles a dialog button. It must be called on the event loop.
func (d *Daemon) Respond(c confirm.Choice) {
	d.ctrl.Respond(d.runContext(), c)
}

// Dismiss closes the popup on user request. It must be called on the event
// loop.
func (d *Daemon) Dismiss() {
	d.ctrl.Close(dispatch.ReasonDismissed)
}

// Tap dismisses a visible toast. It must be called on the event loop.
func (d *Daemon) Tap() {
	d.ctrl.DismissToast()
}

// UpdateConfig applies a reloaded configuration. It must be called on the
// event loop. Changes to the option set only apply after a restart.
func (d *Daemon) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	d.toasts.SetTimeout(cfg.Toast.Timeout.Duration())
	d.toasts.SetMinInterval(cfg.Toast.MinInterval.Duration())

	if cfg.Layout != old.Layout {
		policy, err := PolicyFor(cfg.Layout)
		if err != nil {
			d.logger.Warn("keeping previous layout policy", "error", err)
		} else {
			d.ctrl.SetPolicy(policy)
		}
	}

	if !slices.Equal(cfg.Options.Disabled, old.Options.Disabled) {
		d.logger.Warn("disabled options changed, restart to apply",
			"old", old.Options.Disabled,
			"new", cfg.Options.Disabled,
		)
		if d.notifier != nil {
			d.notifier.NotifyRestartRequired("[options] disabled")
		}
	}

	d.logger.Debug("daemon config updated",
		"close_on_lcd_off", cfg.Popup.CloseOnLCDOff,
		"close_on_power_key", cfg.Popup.CloseOnPowerKey,
	)
}

// reportingPower reports failed power transitions to the user.
type reportingPower struct {
	confirm.PowerController
	report func(err error)
}

func (p reportingPower) PowerOff(ctx context.Context) error {
	err := p.PowerController.PowerOff(ctx)
	if err != nil {
		p.report(err)
	}
	return err
}

func (p reportingPower) Restart(ctx context.Context) error {
	err := p.PowerController.Restart(ctx)
	if err != nil {
		p.report(err)
	}
	return err
}

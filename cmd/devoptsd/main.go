// Package main is the entry point for the devoptsd quick settings daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/devopts/internal/config"
	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/daemon"
	"github.com/jmylchreest/devopts/internal/dbus"
	"github.com/jmylchreest/devopts/internal/dispatch"
	"github.com/jmylchreest/devopts/internal/display"
	"github.com/jmylchreest/devopts/internal/feedback"
	"github.com/jmylchreest/devopts/internal/layout"
	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/settings"
	"github.com/jmylchreest/devopts/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.devoptsd"
	appName = "devoptsd"

	showTimeout   = 5 * time.Second
	notifyTimeout = 2 * time.Second
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default $XDG_CONFIG_HOME/devopts/devoptsd.toml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	os.Exit(run(*configPath, logger))
}

// glibPoster runs posted functions on the GTK main loop.
var glibPoster = dispatch.PosterFunc(func(f func()) {
	glib.IdleAdd(f)
})

func run(configPath string, logger *slog.Logger) int {
	logger.Info("starting devoptsd", "version", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		store         *settings.Store
		storeWatcher  *settings.FileWatcher
		deviceBus     *dbus.Client
		sessionBus    *dbus.Client
		popupServer   *dbus.PopupServer
		signalWatcher *dbus.SignalWatcher
		renderer      *display.Renderer
		themes        *theme.Provider
		sounds        *feedback.Manager
		configWatcher *daemon.ConfigWatcher
		d             *daemon.Daemon
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := func() {
		if !running.Swap(false) {
			return
		}
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if signalWatcher != nil {
			_ = signalWatcher.Stop()
		}
		if popupServer != nil {
			_ = popupServer.Stop()
		}
		if d != nil {
			d.Stop()
		}
		if themes != nil {
			themes.Stop()
		}
		if sounds != nil {
			sounds.Stop()
		}
		if storeWatcher != nil {
			_ = storeWatcher.Stop()
		}
		if deviceBus != nil {
			_ = deviceBus.Close()
		}
		if sessionBus != nil {
			_ = sessionBus.Close()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		glib.IdleAdd(func() {
			shutdown()
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		store, err = openSettings(cfg.Settings, logger)
		if err != nil {
			logger.Error("failed to open settings", "error", err)
			app.Quit()
			return
		}
		if cfg.Settings.Watch {
			storeWatcher, err = settings.NewFileWatcher(store, logger)
			if err == nil {
				err = storeWatcher.Start()
			}
			if err != nil {
				logger.Warn("failed to watch settings file", "error", err)
			}
		}

		bus := dbus.BusSession
		if cfg.DBus.System {
			bus = dbus.BusSystem
		}
		deviceBus = dbus.NewClient(bus, logger)
		deviceBus.SetRetry(cfg.DBus.RetryMax, cfg.DBus.RetryDelay.Duration())
		sessionBus = dbus.NewClient(dbus.BusSession, logger)

		notifier := daemon.NewInternalNotifier(logger)
		notifier.SetNotifyHandler(func(n dbus.Notification) error {
			// Called from the GTK main loop; delivery blocks on the bus.
			go func() {
				nctx, ncancel := context.WithTimeout(ctx, notifyTimeout)
				defer ncancel()
				if _, err := sessionBus.Notify(nctx, n); err != nil {
					logger.Debug("failed to deliver notification", "summary", n.Summary, "error", err)
				}
			}()
			return nil
		})

		sounds = feedback.NewManager(cfg.Feedback, logger)
		sounds.Start(ctx)

		themeDir, err := theme.Dir()
		if err != nil {
			logger.Warn("failed to get theme directory", "error", err)
		}
		themes = theme.NewProvider(themeDir, logger)
		themes.Use(cfg.Theme.Name)
		themes.Apply(nil)
		themes.Watch(ctx, glibPoster.Post)

		renderer = display.NewRenderer(&app.Application, cfg, layout.NewLoader(cfg.LayoutsDir()), logger)
		if err := renderer.Start(); err != nil {
			logger.Error("failed to start display renderer", "error", err)
			app.Quit()
			return
		}

		d, err = daemon.New(daemon.Options{
			Config:   cfg,
			Settings: store,
			Renderer: renderer,
			Poster:   glibPoster,
			Launcher: dbus.NewLauncher(deviceBus, logger),
			Power:    dbus.NewDeviced(deviceBus, logger),
			Feedback: sounds,
			Notifier: notifier,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("failed to create daemon", "error", err)
			app.Quit()
			return
		}

		renderer.SetHandlers(display.Handlers{
			Activate: func(o option.Option) { d.Activate(o) },
			Respond:  func(c confirm.Choice) { d.Respond(c) },
			Dismiss:  d.Dismiss,
			Tap:      d.Tap,
		})

		if err := d.Start(ctx); err != nil {
			logger.Error("failed to start daemon", "error", err)
			app.Quit()
			return
		}

		popupServer = dbus.NewPopupServer(logger)
		popupServer.SetShowHandler(func(style string) error {
			sctx, scancel := context.WithTimeout(ctx, showTimeout)
			defer scancel()
			return d.Show(sctx, style)
		})
		popupServer.SetCloseHandler(d.Hide)
		d.SetOpenedHook(func(id string) {
			if err := popupServer.EmitOpened(id); err != nil {
				logger.Warn("failed to emit opened signal", "session", id, "error", err)
			}
		})
		d.SetClosedHook(func(id, reason string) {
			if err := popupServer.EmitClosed(id, reason); err != nil {
				logger.Warn("failed to emit closed signal", "session", id, "error", err)
			}
		})
		if err := popupServer.Start(); err != nil {
			logger.Error("failed to start D-Bus server", "error", err)
			app.Quit()
			return
		}

		signalWatcher = dbus.NewSignalWatcher(deviceBus, logger)
		if err := signalWatcher.Start(ctx, d.PowerKey); err != nil {
			logger.Warn("failed to watch power key", "error", err)
		}

		configWatcher, err = daemon.NewConfigWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.Config) {
				glib.IdleAdd(func() {
					applyConfig(newConfig, cfg, d, renderer, sounds, themes, notifier, logger)
					cfg = newConfig
					notifier.NotifyConfigReloaded()
				})
			})
			configWatcher.SetErrorCallback(notifier.NotifyConfigError)
			if err := configWatcher.Start(ctx, cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		logger.Info("devoptsd ready",
			"dbus_interface", dbus.ServiceIface,
			"options", d.Registry().Len(),
			"theme", themes.Current(),
		)

		// Hidden window to keep the application running between popups
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		shutdown()
	})

	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}
	logger.Info("devoptsd stopped")
	return 0
}

// openSettings opens the device settings store named by sc.
func openSettings(sc config.SettingsConfig, logger *slog.Logger) (*settings.Store, error) {
	path := config.ExpandPath(sc.Path)
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings path: %w", err)
		}
		path = p
	}
	store, err := settings.Open(path, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("settings store opened", "path", path, "entries", len(store.Entries()))
	return store, nil
}

// applyConfig pushes a reloaded config to every component. It runs on the
// GTK main loop.
func applyConfig(
	newConfig, oldConfig *config.Config,
	d *daemon.Daemon,
	renderer *display.Renderer,
	sounds *feedback.Manager,
	themes *theme.Provider,
	notifier *daemon.InternalNotifier,
	logger *slog.Logger,
) {
	d.UpdateConfig(newConfig)
	renderer.UpdateConfig(newConfig, layout.NewLoader(newConfig.LayoutsDir()))
	sounds.UpdateConfig(newConfig.Feedback)

	if newConfig.Theme.Name != oldConfig.Theme.Name {
		themes.Use(newConfig.Theme.Name)
		if themes.Current() != newConfig.Theme.Name {
			notifier.NotifyThemeError(fmt.Errorf("theme %q not found", newConfig.Theme.Name))
		}
		logger.Info("theme changed", "theme", themes.Current())
	}

	if newConfig.Settings != oldConfig.Settings || newConfig.DBus != oldConfig.DBus {
		notifier.NotifyRestartRequired("[settings] and [dbus]")
	}
}

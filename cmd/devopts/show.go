package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/daemon"
	"github.com/jmylchreest/devopts/internal/dbus"
	"github.com/jmylchreest/devopts/internal/dispatch"
	"github.com/jmylchreest/devopts/internal/settings"
	"github.com/jmylchreest/devopts/internal/tui"
)

var showOpts struct {
	dialog string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Open the popup in the terminal",
	Long: `Open the quick settings popup in the terminal, without devoptsd.

Options act on the settings store and the device services directly, just as
they do in the graphical popup.

Key bindings:
  j/k, ↑/↓    Move between rows
  h/l, ←/→    Move within a row, or between dialog buttons
  enter       Activate the focused option or button
  esc         Close the popup
  ?           Show help
  q           Quit`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showOpts.dialog, "dialog", "",
		"Show a confirmation dialog instead of the list (poweroff, restart)")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	if watcher, err := settings.NewFileWatcher(store, logger); err != nil {
		logger.Warn("failed to watch settings file", "error", err)
	} else if err := watcher.Start(); err != nil {
		logger.Warn("failed to watch settings file", "error", err)
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	client := deviceClient()
	defer func() { _ = client.Close() }()
	power := dbus.NewDeviced(client, logger)

	var dialog *confirm.Dialog
	switch showOpts.dialog {
	case "":
	case daemon.StylePowerOff:
		d := confirm.PowerOff(power)
		dialog = &d
	case daemon.StyleRestart:
		d := confirm.Restart(power)
		dialog = &d
	default:
		return fmt.Errorf("unknown dialog %q (poweroff, restart)", showOpts.dialog)
	}

	loop := dispatch.NewLoop()
	renderer := tui.NewRenderer()

	d, err := daemon.New(daemon.Options{
		Config:   cfg,
		Settings: store,
		Renderer: renderer,
		Poster:   loop,
		Launcher: dbus.NewLauncher(client, logger),
		Power:    power,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		return err
	}
	// Run leaves the loop stopped, so Stop runs here without racing it.
	defer d.Stop()

	return tui.Run(ctx, tui.RunOptions{
		Controller: d.Controller(),
		Renderer:   renderer,
		Loop:       loop,
		Dialog:     dialog,
	})
}

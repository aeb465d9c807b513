package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/devopts/internal/dbus"
)

const popupTimeout = 10 * time.Second

var openCmd = &cobra.Command{
	Use:   "open [style]",
	Short: "Ask devoptsd to open the popup",
	Long: `Ask a running devoptsd to open the popup.

Styles:
  list       The option list (default unless configured otherwise)
  confirm    The power off confirmation
  poweroff   Same as confirm
  restart    The restart confirmation`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style := ""
		if len(args) > 0 {
			style = args[0]
		}
		return withPopupClient(func(ctx context.Context, p *dbus.PopupClient) error {
			return p.Show(ctx, style)
		})
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Ask devoptsd to close the popup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPopupClient(func(ctx context.Context, p *dbus.PopupClient) error {
			return p.Close(ctx)
		})
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the popup state of devoptsd",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPopupClient(func(ctx context.Context, p *dbus.PopupClient) error {
			state, session, err := p.State(ctx)
			if err != nil {
				return err
			}
			if session == "" {
				fmt.Fprintln(cmd.OutOrStdout(), state)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, session)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(openCmd, closeCmd, stateCmd)
}

// withPopupClient runs fn against devoptsd on the session bus.
func withPopupClient(fn func(ctx context.Context, p *dbus.PopupClient) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), popupTimeout)
	defer cancel()

	client := dbus.NewClient(dbus.BusSession, logger)
	defer func() { _ = client.Close() }()

	return fn(ctx, dbus.NewPopupClient(client))
}

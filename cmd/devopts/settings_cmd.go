package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/devopts/internal/settings"
)

var settingsOpts struct {
	output string
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change device settings",
	Long: `Inspect and change the device settings the options read and write.

Values are booleans (true, false), integers, or strings. Changes are written
to the settings file and picked up by a running devoptsd.

Examples:
  devopts settings list
  devopts settings get wifi/wearable_wifi_use
  devopts settings set pm/state 3
  devopts settings watch sound/status`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsWatchCmd = &cobra.Command{
	Use:   "watch <key>...",
	Short: "Print settings as they change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsWatch,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd, settingsWatchCmd)

	settingsListCmd.Flags().StringVarP(&settingsOpts.output, "output", "o", formatText,
		"Output format (text, json, yaml)")
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	entries := store.Entries()

	return writeOutput(cmd.OutOrStdout(), settingsOpts.output, entries, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tVALUE\tUPDATED")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%v\t%s\n", e.Key, e.Value, formatUpdated(e.UpdatedAt))
		}
		return tw.Flush()
	})
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	v, err := store.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Set(args[0], settings.ParseValue(args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	logger.Debug("setting changed", "key", args[0], "value", args[1], "path", store.Path())
	return nil
}

func runSettingsWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	watcher, err := settings.NewFileWatcher(store, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch settings file: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	out := cmd.OutOrStdout()
	for _, key := range args {
		cancel, err := store.Watch(key, func(key string) {
			v, err := store.Get(key)
			if err != nil {
				fmt.Fprintf(out, "%s %s <deleted>\n", time.Now().Format(time.TimeOnly), key)
				return
			}
			fmt.Fprintf(out, "%s %s %v\n", time.Now().Format(time.TimeOnly), key, v)
		})
		if err != nil {
			return err
		}
		defer cancel()
	}

	<-ctx.Done()
	return nil
}

// formatUpdated formats a change time relative to now.
func formatUpdated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

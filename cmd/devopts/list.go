package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/daemon"
	"github.com/jmylchreest/devopts/internal/gate"
	"github.com/jmylchreest/devopts/internal/options"
	"github.com/jmylchreest/devopts/internal/registry"
)

var listOpts struct {
	output string
}

// optionInfo is the listing of one registered option.
type optionInfo struct {
	Name    string `json:"name" yaml:"name"`
	ID      int    `json:"id" yaml:"id"`
	Class   string `json:"class" yaml:"class"`
	Text    string `json:"text" yaml:"text"`
	SubText string `json:"subtext,omitempty" yaml:"subtext,omitempty"`
	Icon    string `json:"icon" yaml:"icon"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	On      bool   `json:"on" yaml:"on"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// listing is what the list command prints.
type listing struct {
	Skin     string       `json:"skin" yaml:"skin"`
	Slots    int          `json:"slots" yaml:"slots"`
	Options  []optionInfo `json:"options" yaml:"options"`
	Gated    []string     `json:"gated,omitempty" yaml:"gated,omitempty"`
	Disabled []string     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Failed   []string     `json:"failed,omitempty" yaml:"failed,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the options the popup would show",
	Long: `List the options registered for this device and their current state.

Options gated off by device state (for example in enhanced power saving
mode) or disabled in the config are reported separately.

Examples:
  devopts list
  devopts list -o json | jq '.options[] | select(.on)'`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.output, "output", "o", formatText,
		"Output format (text, json, yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	reg := registry.New(logger)
	res := gate.Assemble(reg, options.Plugins(options.Deps{
		Settings: store,
		Logger:   logger,
	}), store, cfg.Options.Disabled, logger)

	policy, err := daemon.PolicyFor(cfg.Layout)
	if err != nil {
		return err
	}
	comp := compose.Build(reg, policy)

	out := listing{
		Skin:     comp.Skin.String(),
		Slots:    len(comp.Slots),
		Gated:    res.Gated,
		Disabled: res.Disabled,
		Failed:   res.Failed,
	}
	for _, o := range comp.Options() {
		v := compose.ResolveItem(o)
		info := optionInfo{
			Name:    v.Name,
			ID:      o.ID(),
			Class:   v.Class.String(),
			Text:    v.Text,
			SubText: v.SubText,
			Icon:    v.Icon,
			Enabled: v.Enabled,
			On:      !v.IconDisabled,
		}
		if v.Err != nil {
			info.Error = v.Err.Error()
		}
		out.Options = append(out.Options, info)
	}

	return writeOutput(cmd.OutOrStdout(), listOpts.output, out, func(w io.Writer) error {
		return writeListText(w, out)
	})
}

func writeListText(w io.Writer, l listing) error {
	fmt.Fprintf(w, "Skin: %s (%d rows)\n\n", l.Skin, l.Slots)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCLASS\tLABEL\tSTATE")
	for _, o := range l.Options {
		state := "on"
		if !o.On {
			state = "off"
		}
		if !o.Enabled {
			state += " (unavailable)"
		}
		label := o.Text
		if o.SubText != "" {
			label += " / " + o.SubText
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Name, o.Class, label, state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(l.Gated) > 0 {
		fmt.Fprintf(w, "\nGated off: %v\n", l.Gated)
	}
	if len(l.Disabled) > 0 {
		fmt.Fprintf(w, "Disabled in config: %v\n", l.Disabled)
	}
	if len(l.Failed) > 0 {
		fmt.Fprintf(w, "Failed: %v\n", l.Failed)
	}
	return nil
}

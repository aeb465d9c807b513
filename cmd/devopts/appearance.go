package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/devopts/internal/layout"
	"github.com/jmylchreest/devopts/internal/theme"
)

var appearanceOpts struct {
	output string
}

// assetInfo describes an available layout template or theme.
type assetInfo struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Bundled bool   `json:"bundled" yaml:"bundled"`
	Active  bool   `json:"active" yaml:"active"`
}

var layoutsCmd = &cobra.Command{
	Use:   "layouts [name]",
	Short: "List layout templates, or print one",
	Long: `List the popup layout templates, or print the XML of one.

Templates in the layout directory (~/.config/devopts/layouts by default)
override the bundled ones of the same name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayouts,
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE:  runThemes,
}

func init() {
	rootCmd.AddCommand(layoutsCmd, themesCmd)

	for _, cmd := range []*cobra.Command{layoutsCmd, themesCmd} {
		cmd.Flags().StringVarP(&appearanceOpts.output, "output", "o", formatText,
			"Output format (text, json, yaml)")
	}
}

func runLayouts(cmd *cobra.Command, args []string) error {
	dir := cfg.LayoutsDir()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		return printLayout(out, dir, args[0])
	}

	var layouts []assetInfo
	index := make(map[string]int)
	for _, name := range layout.ListEmbeddedTemplates() {
		index[name] = len(layouts)
		layouts = append(layouts, assetInfo{Name: name, Bundled: true})
	}
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read layout directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
				continue
			}
			info := assetInfo{Name: strings.TrimSuffix(entry.Name(), ".xml"), Path: filepath.Join(dir, entry.Name())}
			if i, ok := index[info.Name]; ok {
				layouts[i] = info
				continue
			}
			layouts = append(layouts, info)
		}
	}

	active := activeSkins()
	for i := range layouts {
		layouts[i].Active = slices.Contains(active, layouts[i].Name)
	}

	return writeOutput(out, appearanceOpts.output, layouts, func(w io.Writer) error {
		return writeAssets(w, layouts)
	})
}

// activeSkins returns the skins the configured layout policy can choose.
func activeSkins() []string {
	if cfg.Layout.Adaptive {
		return []string{
			layout.SkinDefault.String(),
			layout.SkinTwoItems.String(),
			layout.SkinThreeItems.String(),
		}
	}
	return []string{cfg.Layout.Skin}
}

func printLayout(w io.Writer, dir, name string) error {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name+".xml"))
		if err == nil {
			_, err = w.Write(data)
			return err
		}
		if !os.IsNotExist(err) {
			return err
		}
	}
	xml, ok := layout.EmbeddedTemplateXML(name)
	if !ok {
		return fmt.Errorf("layout template not found: %s", name)
	}
	_, err := io.WriteString(w, xml)
	return err
}

func runThemes(cmd *cobra.Command, args []string) error {
	dir, err := theme.Dir()
	if err != nil {
		logger.Warn("failed to get theme directory", "error", err)
	}
	list, err := theme.List(dir)
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}

	themes := make([]assetInfo, 0, len(list))
	for _, t := range list {
		themes = append(themes, assetInfo{
			Name:    t.Name,
			Path:    t.Path,
			Bundled: t.Bundled,
			Active:  t.Name == cfg.Theme.Name,
		})
	}

	return writeOutput(cmd.OutOrStdout(), appearanceOpts.output, themes, func(w io.Writer) error {
		return writeAssets(w, themes)
	})
}

func writeAssets(w io.Writer, assets []assetInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tACTIVE")
	for _, a := range assets {
		source := "bundled"
		if !a.Bundled {
			source = a.Path
		}
		active := ""
		if a.Active {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, source, active)
	}
	return tw.Flush()
}

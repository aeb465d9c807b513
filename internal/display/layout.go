package display

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/devopts/internal/config"
)

// Placement is the set of layer-shell anchors and margins for a position.
// No anchors centers the surface.
type Placement struct {
	Top, Bottom, Left, Right bool
	MarginX, MarginY         int
}

// PlacementFor returns the anchors for pos, offset from the anchored edges.
// Unknown positions are centered.
func PlacementFor(pos config.Position, offsetX, offsetY int) Placement {
	p := Placement{MarginX: offsetX, MarginY: offsetY}
	switch pos {
	case config.PositionTopLeft:
		p.Top, p.Left = true, true
	case config.PositionTopRight:
		p.Top, p.Right = true, true
	case config.PositionTopCenter:
		p.Top = true
	case config.PositionBottomLeft:
		p.Bottom, p.Left = true, true
	case config.PositionBottomRight:
		p.Bottom, p.Right = true, true
	case config.PositionBottomCenter:
		p.Bottom = true
	default:
		p.MarginX, p.MarginY = 0, 0
	}
	return p
}

// apply sets the anchors and margins on window.
func (p Placement) apply(window *gtk.Window) {
	edges := []struct {
		edge   layershell.LayerShellEdge
		on     bool
		margin int
	}{
		{layershell.LayerShellEdgeTop, p.Top, p.MarginY},
		{layershell.LayerShellEdgeBottom, p.Bottom, p.MarginY},
		{layershell.LayerShellEdgeLeft, p.Left, p.MarginX},
		{layershell.LayerShellEdgeRight, p.Right, p.MarginX},
	}
	for _, e := range edges {
		layershell.SetAnchor(window, e.edge, e.on)
		if e.on {
			layershell.SetMargin(window, e.edge, e.margin)
		} else {
			layershell.SetMargin(window, e.edge, 0)
		}
	}
}

// monitorFor returns the 1-indexed monitor n, or nil to let the compositor
// choose. A monitor that is not connected falls back to the first one.
func monitorFor(display *gdk.Display, n int, logger *slog.Logger) *gdk.Monitor {
	if display == nil || n <= 0 {
		return nil
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors available")
		return nil
	}

	index := uint(n - 1)
	if index >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first",
			"configured", n,
			"available", monitors.NItems(),
		)
		index = 0
	}

	obj := monitors.Item(index)
	if obj == nil {
		return nil
	}
	monitor, ok := obj.Cast().(*gdk.Monitor)
	if !ok {
		return nil
	}
	return monitor
}

// colorSchemeClass returns "light" or "dark" for scheme, asking systemDark
// when the scheme follows the system.
func colorSchemeClass(scheme config.ColorScheme, systemDark func() bool) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if systemDark != nil && systemDark() {
			return "dark"
		}
		return "light"
	}
}

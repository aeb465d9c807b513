package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/config"
	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/layout"
)

// Popup is one popup window: either the option list or a confirm dialog.
type Popup struct {
	window *gtk.Window
	cfg    *config.Config
	layout *layout.LayoutConfig
	logger *slog.Logger

	box      *gtk.Box
	slots    []*gtk.Box
	toastLbl *gtk.Label

	// Templates for one slot, taken from the <list> element.
	rowTmpl     layout.LayoutElement
	pairTmpl    layout.LayoutElement
	dividerTmpl *layout.LayoutElement

	onItem    func(slot int, right bool)
	onChoice  func(c confirm.Choice)
	onDismiss func()
	onTap     func()

	closed bool
}

func newPopup(app *gtk.Application, cfg *config.Config, tmpl *layout.LayoutConfig, monitor *gdk.Monitor, logger *slog.Logger) *Popup {
	p := &Popup{
		cfg:    cfg,
		layout: tmpl,
		logger: logger,
	}

	p.window = gtk.NewWindow()
	if app != nil {
		p.window.SetApplication(app)
	}
	p.window.SetDecorated(false)
	p.window.SetResizable(false)

	width := tmpl.MaxWidth
	if cfg.Display.Width > 0 {
		width = cfg.Display.Width
	}
	minWidth := tmpl.MinWidth
	if minWidth == 0 || minWidth > width {
		minWidth = width
	}
	p.window.SetDefaultSize(width, -1)
	p.window.SetSizeRequest(minWidth, tmpl.MinHeight)
	if cfg.Display.Opacity < 1.0 {
		p.window.SetOpacity(cfg.Display.Opacity)
	}

	layershell.InitForWindow(p.window)
	layershell.SetLayer(p.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(p.window, 0)
	layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeOnDemand)
	layershell.SetNamespace(p.window, "devopts-popup")
	if monitor != nil {
		layershell.SetMonitor(p.window, monitor)
	}
	PlacementFor(config.Position(cfg.Display.Position), cfg.Display.OffsetX, cfg.Display.OffsetY).apply(p.window)

	p.box = gtk.NewBox(gtk.OrientationVertical, 6)
	p.box.AddCSSClass("devopts-popup")
	p.box.AddCSSClass(colorSchemeClass(config.ColorScheme(cfg.Theme.ColorScheme), systemDark))
	if cfg.Display.Opacity < 1.0 {
		p.box.AddCSSClass("translucent")
	}
	p.window.SetChild(p.box)

	p.connectSignals()
	return p
}

func systemDark() bool {
	return adw.StyleManagerGetDefault().Dark()
}

// buildList fills the window with the slots of c.
func (p *Popup) buildList(c *compose.Composition) {
	p.box.AddCSSClass("skin-" + c.Skin.String())

	for _, elem := range p.layout.Elements {
		switch elem.Type {
		case layout.ElementTypeList:
			p.box.Append(p.buildSlots(elem, c))
		case layout.ElementTypeToast:
			p.box.Append(p.buildToast())
		}
	}
	if p.toastLbl == nil {
		p.box.Append(p.buildToast())
	}
}

func (p *Popup) buildSlots(elem layout.LayoutElement, c *compose.Composition) gtk.Widgetter {
	for _, child := range elem.Children {
		switch child.Type {
		case layout.ElementTypeRow:
			p.rowTmpl = child
		case layout.ElementTypePair:
			p.pairTmpl = child
		case layout.ElementTypeDivider:
			d := child
			p.dividerTmpl = &d
		}
	}

	list := gtk.NewBox(gtk.OrientationVertical, elem.IntAttr("spacing", 0))
	list.AddCSSClass("devopts-list")
	if elem.Attr("valign", "") == "center" {
		list.SetVAlign(gtk.AlignCenter)
		list.SetVExpand(true)
	}

	views := c.Resolve()
	p.slots = make([]*gtk.Box, len(views))
	for i, v := range views {
		slot := gtk.NewBox(gtk.OrientationHorizontal, 0)
		slot.AddCSSClass("devopts-slot")
		p.slots[i] = slot
		p.fillSlot(slot, v)
		list.Append(slot)

		if p.dividerTmpl != nil && !v.NoDivider && i < len(views)-1 {
			sep := gtk.NewSeparator(gtk.OrientationHorizontal)
			sep.AddCSSClass("devopts-divider")
			list.Append(sep)
		}
	}

	scroller := gtk.NewScrolledWindow()
	scroller.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scroller.SetPropagateNaturalHeight(true)
	if p.layout.MaxHeight > 0 {
		scroller.SetMaxContentHeight(p.layout.MaxHeight)
	}
	scroller.SetChild(list)
	return scroller
}

// fillSlot replaces the content of slot with v.
func (p *Popup) fillSlot(slot *gtk.Box, v compose.SlotView) {
	for child := slot.FirstChild(); child != nil; child = slot.FirstChild() {
		slot.Remove(child)
	}

	if v.Full || v.Right == nil {
		slot.SetHomogeneous(false)
		slot.RemoveCSSClass("devopts-slot-half")
		slot.Append(p.buildItem(p.rowTmpl, v.Left, v.Index, false))
		return
	}

	slot.SetHomogeneous(true)
	slot.AddCSSClass("devopts-slot-half")
	slot.Append(p.buildItem(p.pairTmpl, v.Left, v.Index, false))
	slot.Append(p.buildItem(p.pairTmpl, *v.Right, v.Index, true))
}

func (p *Popup) buildItem(tmpl layout.LayoutElement, item compose.ItemView, slot int, right bool) gtk.Widgetter {
	if item.Err != nil {
		p.logger.Debug("option resolved with errors", "option", item.Name, "error", item.Err)
	}

	orientation := gtk.OrientationHorizontal
	if tmpl.Type == layout.ElementTypePair {
		orientation = gtk.OrientationVertical
	}
	content := gtk.NewBox(orientation, tmpl.IntAttr("spacing", 8))
	for _, child := range tmpl.Children {
		if w := p.buildItemElement(child, item); w != nil {
			content.Append(w)
		}
	}

	btn := gtk.NewButton()
	btn.AddCSSClass("flat")
	btn.AddCSSClass("devopts-item")
	btn.SetHExpand(true)
	btn.SetChild(content)
	if !item.Enabled {
		btn.SetSensitive(false)
		btn.AddCSSClass("devopts-item-disabled")
	}
	btn.ConnectClicked(func() {
		if p.onItem != nil {
			p.onItem(slot, right)
		}
	})
	return btn
}

func (p *Popup) buildItemElement(elem layout.LayoutElement, item compose.ItemView) gtk.Widgetter {
	switch elem.Type {
	case layout.ElementTypeIcon:
		img := gtk.NewImageFromIconName(item.Icon)
		img.AddCSSClass("devopts-icon")
		img.SetPixelSize(elem.IntAttr("size", 48))
		if item.IconDisabled {
			img.AddCSSClass("devopts-icon-dimmed")
		}
		return img

	case layout.ElementTypeText:
		lbl := gtk.NewLabel(item.Text)
		lbl.AddCSSClass("devopts-text")
		lbl.SetXAlign(0)
		lbl.SetEllipsize(3) // PANGO_ELLIPSIZE_END
		return lbl

	case layout.ElementTypeSubText:
		if item.SubText == "" {
			return nil
		}
		lbl := gtk.NewLabel(item.SubText)
		lbl.AddCSSClass("devopts-subtext")
		lbl.SetXAlign(0)
		lbl.SetEllipsize(3)
		return lbl

	case layout.ElementTypeBox:
		orientation := gtk.OrientationHorizontal
		if elem.Attr("orientation", "") == "vertical" {
			orientation = gtk.OrientationVertical
		}
		box := gtk.NewBox(orientation, elem.IntAttr("spacing", 2))
		box.SetHExpand(true)
		box.SetVAlign(gtk.AlignCenter)
		for _, child := range elem.Children {
			if w := p.buildItemElement(child, item); w != nil {
				box.Append(w)
			}
		}
		return box

	default:
		return nil
	}
}

func (p *Popup) buildToast() gtk.Widgetter {
	p.toastLbl = gtk.NewLabel("")
	p.toastLbl.AddCSSClass("devopts-toast")
	p.toastLbl.SetWrap(true)
	p.toastLbl.SetVisible(false)
	return p.toastLbl
}

// buildDialog fills the window with d.
func (p *Popup) buildDialog(d confirm.Dialog) {
	p.box.AddCSSClass("devopts-dialog")

	for _, elem := range p.layout.Elements {
		switch elem.Type {
		case layout.ElementTypeTitle:
			lbl := gtk.NewLabel(d.Title)
			lbl.AddCSSClass("devopts-title")
			p.box.Append(lbl)

		case layout.ElementTypeContent:
			if d.Content == "" {
				continue
			}
			lbl := gtk.NewLabel(d.Content)
			lbl.AddCSSClass("devopts-content")
			lbl.SetWrap(true)
			lbl.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
			p.box.Append(lbl)

		case layout.ElementTypeButtons:
			buttons := gtk.NewBox(gtk.OrientationHorizontal, elem.IntAttr("spacing", 8))
			buttons.SetHomogeneous(true)
			buttons.Append(p.buildButton(d.Left, confirm.ChoiceLeft))
			if d.Right != nil {
				btn := p.buildButton(*d.Right, confirm.ChoiceRight)
				btn.AddCSSClass("confirm")
				buttons.Append(btn)
			}
			p.box.Append(buttons)
		}
	}
}

func (p *Popup) buildButton(b confirm.Button, choice confirm.Choice) *gtk.Button {
	var btn *gtk.Button
	if b.Icon != "" {
		btn = gtk.NewButtonFromIconName(b.Icon)
		btn.SetTooltipText(b.Label)
	} else {
		btn = gtk.NewButtonWithLabel(b.Label)
	}
	btn.AddCSSClass("devopts-button")
	btn.ConnectClicked(func() {
		if p.onChoice != nil {
			p.onChoice(choice)
		}
	})
	return btn
}

func (p *Popup) connectSignals() {
	keyCtrl := gtk.NewEventControllerKey()
	keyCtrl.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		if keyval != gdk.KEY_Escape {
			return false
		}
		if p.onDismiss != nil {
			p.onDismiss()
		}
		return true
	})
	p.window.AddController(keyCtrl)

	// Any tap dismisses a visible toast before the item sees it.
	clickCtrl := gtk.NewGestureClick()
	clickCtrl.SetPropagationPhase(gtk.PhaseCapture)
	clickCtrl.ConnectPressed(func(nPress int, x, y float64) {
		if p.onTap != nil {
			p.onTap()
		}
	})
	p.window.AddController(clickCtrl)

	p.window.ConnectCloseRequest(func() bool {
		if !p.closed {
			p.closed = true
			if p.onDismiss != nil {
				p.onDismiss()
			}
		}
		return false
	})
}

// RefreshSlot redraws the slot at v.Index.
func (p *Popup) RefreshSlot(v compose.SlotView) {
	if p.closed || v.Index < 0 || v.Index >= len(p.slots) {
		return
	}
	p.fillSlot(p.slots[v.Index], v)
}

// ShowToast shows message until HideToast.
func (p *Popup) ShowToast(message string) {
	if p.closed || p.toastLbl == nil {
		return
	}
	p.toastLbl.SetText(message)
	p.toastLbl.SetVisible(true)
}

// HideToast hides the toast.
func (p *Popup) HideToast() {
	if p.closed || p.toastLbl == nil {
		return
	}
	p.toastLbl.SetVisible(false)
}

// Present shows the window or brings it to the front.
func (p *Popup) Present() {
	if p.closed {
		return
	}
	p.window.Present()
}

// Close destroys the window without running the dismiss callback.
func (p *Popup) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.window.Close()
}

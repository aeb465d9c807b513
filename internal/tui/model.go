// Package tui provides a BubbleTea terminal rendition of the quick settings
// popup, driven by the same controller as the GTK popup.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/confirm"
	"github.com/jmylchreest/devopts/internal/dispatch"
	"github.com/jmylchreest/devopts/internal/option"
)

// Controller is the part of dispatch.Controller the TUI drives. Every
// method except Post must run on the event loop, so the model posts them.
type Controller interface {
	Post(f func())
	Open(ctx context.Context) error
	OpenDialog(ctx context.Context, d confirm.Dialog) error
	Activate(ctx context.Context, o option.Option)
	Respond(ctx context.Context, c confirm.Choice)
	DismissToast()
	Close(reason dispatch.CloseReason)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	subTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	toastStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type errMsg struct {
	err error
}

// Model is the main TUI model.
type Model struct {
	ctx  context.Context
	ctrl Controller
	keys KeyMap
	help help.Model

	comp   *compose.Composition
	views  []compose.SlotView
	dialog *confirm.Dialog

	cursor int
	right  bool
	choice confirm.Choice

	toast    string
	err      error
	open     bool
	showHelp bool
	width    int
}

// New creates a new TUI model.
func New(ctx context.Context, ctrl Controller) Model {
	return Model{
		ctx:  ctx,
		ctrl: ctrl,
		keys: DefaultKeyMap(),
		help: help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case showMsg:
		m.comp = msg.comp
		m.views = msg.views
		m.dialog = nil
		m.open = true
		m.cursor = 0
		m.right = false
		return m, nil

	case slotMsg:
		if msg.view.Index >= 0 && msg.view.Index < len(m.views) {
			m.views[msg.view.Index] = msg.view
			if m.cursor == msg.view.Index && msg.view.Right == nil {
				m.right = false
			}
		}
		return m, nil

	case dialogMsg:
		d := msg.dialog
		m.dialog = &d
		m.comp = nil
		m.views = nil
		m.open = true
		m.choice = confirm.ChoiceLeft
		return m, nil

	case toastMsg:
		m.toast = msg.text
		return m, nil

	case hideToastMsg:
		m.toast = ""
		return m, nil

	case raiseMsg:
		return m, nil

	case teardownMsg:
		m.open = false
		return m, tea.Quit

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if !m.open {
		return m, nil
	}

	// Any key dismisses the toast, like a tap on the popup.
	if m.toast != "" {
		m.ctrl.Post(m.ctrl.DismissToast)
	}

	if key.Matches(msg, m.keys.Back) {
		m.post(func(c Controller) { c.Close(dispatch.ReasonDismissed) })
		return m, nil
	}

	if m.dialog != nil {
		return m.handleDialogKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.right = m.right && m.hasRight(m.cursor)
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.views)-1 {
			m.cursor++
			m.right = m.right && m.hasRight(m.cursor)
		}
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		m.right = false
	case key.Matches(msg, m.keys.End):
		if len(m.views) > 0 {
			m.cursor = len(m.views) - 1
		}
		m.right = false
	case key.Matches(msg, m.keys.Left):
		m.right = false
	case key.Matches(msg, m.keys.Right):
		m.right = m.hasRight(m.cursor)
	case key.Matches(msg, m.keys.Activate):
		if o := m.selected(); o != nil {
			ctx := m.ctx
			m.post(func(c Controller) { c.Activate(ctx, o) })
		}
	}
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.choice = confirm.ChoiceLeft
	case key.Matches(msg, m.keys.Right):
		if m.dialog.Right != nil {
			m.choice = confirm.ChoiceRight
		}
	case key.Matches(msg, m.keys.Activate):
		ctx, choice := m.ctx, m.choice
		m.post(func(c Controller) { c.Respond(ctx, choice) })
	}
	return m, nil
}

func (m Model) post(f func(c Controller)) {
	ctrl := m.ctrl
	ctrl.Post(func() { f(ctrl) })
}

func (m Model) hasRight(index int) bool {
	return index >= 0 && index < len(m.views) && m.views[index].Right != nil
}

// selected returns the option under the cursor.
func (m Model) selected() option.Option {
	if m.comp == nil || m.cursor < 0 || m.cursor >= len(m.comp.Slots) {
		return nil
	}
	s := m.comp.Slots[m.cursor]
	if m.right && s.Right != nil {
		return s.Right
	}
	return s.Left
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if !m.open {
		return "Opening..."
	}

	var b strings.Builder
	if m.dialog != nil {
		b.WriteString(m.viewDialog())
	} else {
		b.WriteString(m.viewList())
	}

	if m.toast != "" {
		b.WriteString("\n" + toastStyle.Render(m.toast) + "\n")
	}

	m.help.ShowAll = m.showHelp
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) viewList() string {
	if len(m.views) == 0 {
		return disabledStyle.Render("No options available") + "\n"
	}

	half := m.width / 2
	if half < 16 {
		half = 16
	}

	var b strings.Builder
	for i, v := range m.views {
		focused := i == m.cursor
		if v.Right == nil {
			b.WriteString(renderItem(v.Left, focused, 0))
		} else {
			b.WriteString(renderItem(v.Left, focused && !m.right, half))
			b.WriteString(renderItem(*v.Right, focused && m.right, 0))
		}
		b.WriteString("\n")

		if !v.NoDivider && i < len(m.views)-1 {
			b.WriteString(dividerStyle.Render(strings.Repeat("─", half)) + "\n")
		}
	}
	return b.String()
}

func renderItem(v compose.ItemView, focused bool, width int) string {
	marker := "  "
	if focused {
		marker = "› "
	}
	state := "●"
	if v.IconDisabled {
		state = "○"
	}

	text := marker + state + " " + v.Text
	if v.SubText != "" {
		text += "  " + subTextStyle.Render(v.SubText)
	}

	style := lipgloss.NewStyle()
	switch {
	case !v.Enabled:
		style = disabledStyle
	case focused:
		style = selectedStyle
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(text)
}

func (m Model) viewDialog() string {
	d := m.dialog
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title) + "\n\n")
	b.WriteString(d.Content + "\n\n")

	buttons := []string{renderButton(d.Left.Label, m.choice == confirm.ChoiceLeft)}
	if d.Right != nil {
		buttons = append(buttons, renderButton(d.Right.Label, m.choice == confirm.ChoiceRight))
	}
	b.WriteString(strings.Join(buttons, "  ") + "\n")
	return b.String()
}

func renderButton(label string, focused bool) string {
	if focused {
		return selectedStyle.Render("[ " + label + " ]")
	}
	return "  " + label + "  "
}

// EventLoop runs the controller's posted functions.
type EventLoop interface {
	Run(ctx context.Context) error
	Quit()
}

// RunOptions configures the TUI.
type RunOptions struct {
	Controller Controller
	Renderer   *Renderer
	Loop       EventLoop
	// Dialog, when set, is shown instead of the option list.
	Dialog *confirm.Dialog
}

// Run opens the popup in the terminal and blocks until it closes or ctx is
// cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	ctrl := opts.Controller
	g, gctx := errgroup.WithContext(ctx)

	p := tea.NewProgram(New(gctx, ctrl), tea.WithAltScreen(), tea.WithContext(gctx))
	opts.Renderer.Attach(p.Send)

	g.Go(func() error {
		err := opts.Loop.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer ctrl.Post(func() {
			ctrl.Close(dispatch.ReasonShutdown)
			opts.Loop.Quit()
		})

		ctrl.Post(func() {
			var err error
			if opts.Dialog != nil {
				err = ctrl.OpenDialog(gctx, *opts.Dialog)
			} else {
				err = ctrl.Open(gctx)
			}
			if err != nil {
				p.Send(errMsg{err: err})
			}
		})

		final, err := p.Run()
		if err != nil {
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		}
		if fm, ok := final.(Model); ok && fm.err != nil {
			return fm.err
		}
		return nil
	})

	return g.Wait()
}

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/devopts/internal/compose"
	"github.com/jmylchreest/devopts/internal/confirm"
)

// Messages sent from the renderer to the model.
type (
	showMsg struct {
		comp  *compose.Composition
		views []compose.SlotView
	}
	slotMsg struct {
		view compose.SlotView
	}
	dialogMsg struct {
		dialog confirm.Dialog
	}
	toastMsg struct {
		text string
	}
	hideToastMsg struct{}
	raiseMsg     struct{}
	teardownMsg  struct{}
)

// Renderer forwards popup drawing to a running bubbletea program. It
// implements the dispatch Renderer and DialogRenderer interfaces.
// Options are resolved on the calling goroutine, which is the event loop.
type Renderer struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewRenderer creates a renderer. Messages are dropped until Attach.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Attach sets where messages are sent, usually tea.Program.Send.
func (r *Renderer) Attach(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *Renderer) emit(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Show implements dispatch.Renderer.
func (r *Renderer) Show(c *compose.Composition) error {
	r.emit(showMsg{comp: c, views: c.Resolve()})
	return nil
}

// ShowDialog implements dispatch.DialogRenderer.
func (r *Renderer) ShowDialog(d confirm.Dialog) error {
	r.emit(dialogMsg{dialog: d})
	return nil
}

// RefreshSlot implements dispatch.Renderer.
func (r *Renderer) RefreshSlot(index int, c *compose.Composition) {
	if v, ok := c.ResolveSlot(index); ok {
		r.emit(slotMsg{view: v})
	}
}

// Raise implements dispatch.Renderer.
func (r *Renderer) Raise() { r.emit(raiseMsg{}) }

// Toast implements dispatch.Renderer.
func (r *Renderer) Toast(message string) { r.emit(toastMsg{text: message}) }

// HideToast implements dispatch.Renderer.
func (r *Renderer) HideToast() { r.emit(hideToastMsg{}) }

// Teardown implements dispatch.Renderer.
func (r *Renderer) Teardown() { r.emit(teardownMsg{}) }

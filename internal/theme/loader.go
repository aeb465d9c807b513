package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Provider installs a theme as a GTK CSS provider and keeps it current.
type Provider struct {
	mu       sync.Mutex
	logger   *slog.Logger
	dir      string
	provider *gtk.CSSProvider
	theme    *Theme
	watcher  *Watcher
}

// NewProvider creates a provider that resolves user themes from dir.
// Must be called after GTK is initialized.
func NewProvider(dir string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		logger:   logger,
		dir:      dir,
		provider: gtk.NewCSSProvider(),
	}
}

// Use loads name, falling back to the default theme.
func (p *Provider) Use(name string) {
	t, err := LoadOrDefault(name, p.dir)
	if err != nil {
		p.logger.Warn("theme not found, using default", "theme", name, "error", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = t
	p.provider.LoadFromString(t.CSS)
	p.logger.Info("loaded theme", "name", t.Name, "bundled", t.Bundled)
}

// Apply attaches the provider to display, or the default display when nil.
func (p *Provider) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		p.logger.Warn("no display available, cannot apply theme")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, p.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// Watch re-applies the current theme whenever its file changes. post runs
// the reload on the GTK main loop.
func (p *Provider) Watch(ctx context.Context, post func(func())) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watcher != nil {
		p.watcher.Stop()
	}
	p.watcher = NewWatcher(p.theme, func(css string) {
		post(func() { p.provider.LoadFromString(css) })
	}, p.logger)
	p.watcher.Start(ctx)
}

// Stop stops watching the theme file.
func (p *Provider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher != nil {
		p.watcher.Stop()
		p.watcher = nil
	}
}

// Current returns the name of the loaded theme.
func (p *Provider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.theme == nil {
		return ""
	}
	return p.theme.Name
}

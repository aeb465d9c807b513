package theme

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSS(t *testing.T, dir, name, css string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(css), 0644))
	return path
}

func TestBundled(t *testing.T) {
	css, ok := Bundled("default")
	require.True(t, ok)
	assert.Contains(t, css, ".devopts-popup")
	assert.Contains(t, css, "@window_bg_color")

	_, ok = Bundled("_base.css")
	assert.True(t, ok, "partials are reachable for imports")

	_, ok = Bundled("nonexistent")
	assert.False(t, ok)
}

func TestListBundled(t *testing.T) {
	names := ListBundled()
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "amoled")
	assert.NotContains(t, names, "_base")
}

func TestLoad_BundledInlinesPartials(t *testing.T) {
	th, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, DefaultName, th.Name)
	assert.True(t, th.Bundled)
	assert.Contains(t, th.CSS, "/* _base.css (bundled) */")
	assert.Contains(t, th.CSS, ".devopts-slot")
	assert.NotContains(t, th.CSS, "@import")
}

func TestLoad_UserOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	path := writeCSS(t, dir, "default.css", `.devopts-popup { color: red; }`)

	th, err := Load("default", dir)
	require.NoError(t, err)
	assert.False(t, th.Bundled)
	assert.Equal(t, path, th.Path)
	assert.Contains(t, th.CSS, "color: red")
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("nope", t.TempDir())
	assert.Error(t, err)

	th, err := LoadOrDefault("nope", "")
	assert.Error(t, err)
	require.NotNil(t, th)
	assert.Equal(t, DefaultName, th.Name)
}

func TestInlineImports(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "_colors.css", `:root { --fg: #fff; }`)
	writeCSS(t, dir, "_a.css", "@import \"_b.css\";\n.a {}")
	writeCSS(t, dir, "_b.css", "@import \"_a.css\";\n.b {}")

	tests := []struct {
		name     string
		css      string
		contains []string
	}{
		{"none", `.x { color: red; }`, []string{".x { color: red; }"}},
		{"file", `@import "_colors.css";`, []string{"/* _colors.css */", "--fg: #fff"}},
		{"url form", `@import url('_colors.css');`, []string{"--fg: #fff"}},
		{"circular", `@import "_a.css";`, []string{".a {}", ".b {}", "skipped circular import: _a.css"}},
		{"bundled fallback", `@import "_base.css";`, []string{"(bundled)", ".devopts-item"}},
		{"missing", `@import "nope.css";`, []string{"missing import: nope.css"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := inlineImports(tt.css, dir, nil)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestTheme_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeCSS(t, dir, "mine.css", `.devopts-popup { color: red; }`)

	th, err := Load("mine", dir)
	require.NoError(t, err)

	changed, err := th.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "unchanged mtime")

	writeCSS(t, dir, "mine.css", `.devopts-popup { color: blue; }`)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	changed, err = th.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, th.CSS, "color: blue")

	bundled, err := Load("default", "")
	require.NoError(t, err)
	changed, err = bundled.Reload()
	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "default.css", `.x {}`)
	writeCSS(t, dir, "mine.css", `.x {}`)
	writeCSS(t, dir, "_partial.css", `.x {}`)
	writeCSS(t, dir, "notes.txt", `x`)

	themes, err := List(dir)
	require.NoError(t, err)

	byName := make(map[string]Info)
	for _, info := range themes {
		byName[info.Name] = info
	}
	assert.Len(t, byName, len(themes), "names are unique")
	assert.False(t, byName["default"].Bundled, "user theme shadows bundled")
	assert.True(t, byName["amoled"].Bundled)
	assert.Contains(t, byName, "mine")
	assert.NotContains(t, byName, "_partial")
	assert.NotContains(t, byName, "notes")

	themes, err = List(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, themes, len(ListBundled()))
}

func TestWatcher_Poll(t *testing.T) {
	dir := t.TempDir()
	path := writeCSS(t, dir, "mine.css", `.a {}`)
	th, err := Load("mine", dir)
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		got []string
	)
	w := NewWatcher(th, func(css string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, css)
	}, nil)

	w.poll()
	assert.Empty(t, got)

	writeCSS(t, dir, "mine.css", `.b {}`)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	w.poll()
	require.Len(t, got, 1)
	assert.Contains(t, got[0], ".b {}")
}

func TestWatcher_IgnoresBundled(t *testing.T) {
	th, err := Load("default", "")
	require.NoError(t, err)

	w := NewWatcher(th, nil, nil)
	w.Start(t.Context())
	assert.False(t, w.running)
	w.Stop()
}

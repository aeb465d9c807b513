package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// importRe matches @import "f.css"; @import 'f.css'; and @import url("f.css");
var importRe = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a loaded stylesheet.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string // with imports inlined
	ModTime time.Time
	Bundled bool
}

// Dir returns the user theme directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "devopts", "themes"), nil
}

// Load resolves name from dir first and then from the bundled themes.
func Load(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}

	if dir != "" {
		p := filepath.Join(dir, name+".css")
		if _, err := os.Stat(p); err == nil {
			return loadFile(name, p)
		}
	}

	if css, ok := Bundled(name); ok {
		return &Theme{
			Name:    name,
			CSS:     inlineImports(css, "", nil),
			Bundled: true,
		}, nil
	}

	return nil, fmt.Errorf("theme %q not found", name)
}

// LoadOrDefault is Load falling back to the bundled default theme.
func LoadOrDefault(name, dir string) (*Theme, error) {
	t, err := Load(name, dir)
	if err == nil {
		return t, nil
	}
	def, _ := Load(DefaultName, "")
	return def, err
}

func loadFile(name, path string) (*Theme, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}
	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     inlineImports(string(data), filepath.Dir(path), nil),
		ModTime: info.ModTime(),
	}, nil
}

// inlineImports replaces @import statements with the imported CSS.
// Relative imports resolve against baseDir and fall back to bundled files.
func inlineImports(css, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRe.ReplaceAllStringFunc(css, func(stmt string) string {
		m := importRe.FindStringSubmatch(stmt)
		if len(m) < 2 {
			return stmt
		}
		ref := m[1]

		full := ref
		if !filepath.IsAbs(ref) {
			full = filepath.Join(baseDir, ref)
		}
		if seen[full] {
			return "/* skipped circular import: " + ref + " */"
		}
		seen[full] = true

		if baseDir != "" || filepath.IsAbs(ref) {
			if data, err := os.ReadFile(full); err == nil {
				return "/* " + ref + " */\n" + inlineImports(string(data), filepath.Dir(full), seen)
			}
		}
		if data, ok := Bundled(filepath.Base(ref)); ok {
			return "/* " + ref + " (bundled) */\n" + inlineImports(data, "", seen)
		}
		return "/* missing import: " + ref + " */"
	})
}

// Reload re-reads a user theme if its file changed. It reports whether the
// CSS differs.
func (t *Theme) Reload() (bool, error) {
	if t.Bundled {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := loadFile(t.Name, t.Path)
	if err != nil {
		return false, err
	}
	changed := fresh.CSS != t.CSS
	t.CSS = fresh.CSS
	t.ModTime = fresh.ModTime
	return changed, nil
}

// Info describes an available theme.
type Info struct {
	Name    string
	Path    string
	Bundled bool
}

// List returns the bundled themes followed by user themes in dir. A user
// theme that shadows a bundled one is listed once, as a user theme.
func List(dir string) ([]Info, error) {
	var themes []Info
	index := make(map[string]int)

	for _, name := range ListBundled() {
		index[name] = len(themes)
		themes = append(themes, Info{Name: name, Bundled: true})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		info := Info{Name: strings.TrimSuffix(name, ".css"), Path: filepath.Join(dir, name)}
		if i, ok := index[info.Name]; ok {
			themes[i] = info
			continue
		}
		index[info.Name] = len(themes)
		themes = append(themes, info)
	}
	return themes, nil
}

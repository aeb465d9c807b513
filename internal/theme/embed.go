package theme

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed themes/*.css
var bundled embed.FS

// DefaultName is the name of the built-in default theme.
const DefaultName = "default"

// Bundled returns the CSS of a bundled theme or partial.
func Bundled(name string) (string, bool) {
	if !strings.HasSuffix(name, ".css") {
		name += ".css"
	}
	data, err := bundled.ReadFile(path.Join("themes", name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ListBundled returns the names of the bundled themes, without partials.
func ListBundled() []string {
	entries, err := fs.ReadDir(bundled, "themes")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || path.Ext(name) != ".css" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".css"))
	}
	return names
}

package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// bundledFS contains the theme CSS files shipped with shade.
//
//go:embed themes/*.css
var bundledFS embed.FS

// DefaultName is the name of the built-in default theme.
const DefaultName = "default"

// bundledRestart marks bundled themes whose activation requires an
// application restart rather than an in-place style swap.
var bundledRestart = map[string]bool{
	"high-contrast": true,
}

// BundledCSS retrieves a bundled theme by name. Imports are not inlined
// here; callers that need a fully resolved theme go through InlineImports.
func BundledCSS(name string) (string, bool) {
	data, err := bundledFS.ReadFile("themes/" + name + ".css")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BundledPartial retrieves a bundled partial (files starting with _).
func BundledPartial(name string) (string, bool) {
	if !strings.HasPrefix(name, "_") {
		name = "_" + name
	}
	if !strings.HasSuffix(name, ".css") {
		name += ".css"
	}
	data, err := bundledFS.ReadFile("themes/" + name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BundledThemes returns the names of all bundled themes, excluding partials.
func BundledThemes() []string {
	var names []string
	entries, err := fs.ReadDir(bundledFS, "themes")
	if err != nil {
		return names
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "_") {
			continue
		}
		if filepath.Ext(name) == ".css" {
			names = append(names, strings.TrimSuffix(name, ".css"))
		}
	}
	return names
}

// IsBundled reports whether name is a bundled theme.
func IsBundled(name string) bool {
	_, ok := BundledCSS(name)
	return ok
}

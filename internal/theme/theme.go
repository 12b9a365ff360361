// Package theme provides CSS theme discovery, loading and application for
// the shade client and host.
package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FileScheme prefixes theme file references that resolve to a bundled theme
// rather than a path on disk, e.g. "theme://dark".
const FileScheme = "theme://"

// importPattern matches @import "file.css"; in its quoted and url() forms.
var importPattern = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Info describes an installed theme. It is the value exchanged with the
// host over the wire and is passed through the protocol layers untouched.
type Info struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Bundled bool   `json:"bundled,omitempty"`
	Default bool   `json:"default,omitempty"`
	// Restart reports that activating this theme requires an application
	// restart instead of an in-place style swap.
	Restart bool `json:"restart,omitempty"`
}

// File returns the theme file reference the host hands to clients: a
// theme:// ref for bundled themes, the on-disk path otherwise.
func (i Info) File() string {
	if i.Bundled {
		return FileScheme + i.Name
	}
	return i.Path
}

// Theme is a loaded CSS theme with its imports inlined.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string
	ModTime time.Time
	Bundled bool
}

// Load reads a theme from a CSS file and inlines its @import statements.
func Load(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     InlineImports(string(css), filepath.Dir(path), nil),
		ModTime: fi.ModTime(),
	}, nil
}

// InlineImports resolves @import statements and splices the imported CSS in
// place. Relative imports resolve against baseDir; files that cannot be read
// fall back to bundled partials, then bundled themes. The seen map guards
// against circular imports.
func InlineImports(css, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importPattern.ReplaceAllStringFunc(css, func(match string) string {
		sub := importPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		ref := sub[1]

		full := ref
		if !filepath.IsAbs(ref) {
			full = filepath.Join(baseDir, ref)
		}
		if seen[full] {
			return "/* circular import skipped: " + ref + " */"
		}
		seen[full] = true

		imported, err := os.ReadFile(full)
		if err != nil {
			base := filepath.Base(ref)
			if strings.HasPrefix(base, "_") {
				if css, ok := BundledPartial(base); ok {
					return "/* imported (bundled): " + ref + " */\n" + css
				}
			}
			if css, ok := BundledCSS(strings.TrimSuffix(base, ".css")); ok {
				return "/* imported (bundled): " + ref + " */\n" + css
			}
			return "/* import failed: " + ref + " - " + err.Error() + " */"
		}

		inlined := InlineImports(string(imported), filepath.Dir(full), seen)
		return "/* imported: " + ref + " */\n" + inlined
	})
}

// Reload re-reads the theme from disk if its mtime advanced.
// Returns true when the CSS content changed.
func (t *Theme) Reload() (bool, error) {
	if t.Bundled {
		return false, nil
	}
	fi, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !fi.ModTime().After(t.ModTime) {
		return false, nil
	}

	css, err := os.ReadFile(t.Path)
	if err != nil {
		return false, err
	}

	old := t.CSS
	t.CSS = InlineImports(string(css), filepath.Dir(t.Path), nil)
	t.ModTime = fi.ModTime()
	return old != t.CSS, nil
}

// Scan lists the themes available in dir together with the bundled set.
// A user theme with the same name as a bundled one overrides it.
func Scan(dir string) ([]Info, error) {
	seen := make(map[string]bool)
	var infos []Info

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if filepath.Ext(name) != ".css" || strings.HasPrefix(name, "_") {
				continue
			}
			themeName := strings.TrimSuffix(name, ".css")
			if seen[themeName] {
				continue
			}
			seen[themeName] = true
			infos = append(infos, Info{
				Name:    themeName,
				Path:    filepath.Join(dir, name),
				Restart: sidecarRestart(filepath.Join(dir, themeName+".toml")),
			})
		}
	}

	for _, name := range BundledThemes() {
		if seen[name] {
			continue
		}
		seen[name] = true
		infos = append(infos, Info{
			Name:    name,
			Bundled: true,
			Default: name == DefaultName,
			Restart: bundledRestart[name],
		})
	}

	return infos, nil
}

package theme

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// sidecar is the optional per-theme metadata file placed next to a user
// theme, e.g. themes/solarized.toml next to themes/solarized.css.
type sidecar struct {
	RequiresRestart bool `toml:"requires_restart"`
}

// sidecarRestart reads the restart flag from a sidecar file. A missing or
// unreadable sidecar means no restart is required.
func sidecarRestart(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var sc sidecar
	if err := toml.Unmarshal(data, &sc); err != nil {
		return false
	}
	return sc.RequiresRestart
}

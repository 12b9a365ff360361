package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, TransportDBus, cfg.Client.Transport)
	assert.Equal(t, TransportDBus, cfg.Host.Transport)
	assert.Equal(t, DefaultWSURL, cfg.Client.WSURL)
	assert.Equal(t, DefaultTheme, cfg.Theme.Default)
	assert.True(t, cfg.Theme.HotReload)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[client]
transport = "ws"
ws_url = "ws://example:9999/channel"

[host]
themes_dir = "/srv/themes"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, TransportWS, cfg.Client.Transport)
	assert.Equal(t, "ws://example:9999/channel", cfg.Client.WSURL)
	assert.Equal(t, "/srv/themes", cfg.Host.ThemesDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, TransportDBus, cfg.Host.Transport)
	assert.Equal(t, DefaultTheme, cfg.Theme.Default)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Theme.Default = "dark"
	require.NoError(t, cfg.Save(path))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", reloaded.Theme.Default)
}

func TestResolvedPaths(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ThemesDir(), cfg.ResolvedThemesDir())
	assert.Equal(t, StatePath(), cfg.ResolvedStateFile())

	cfg.Host.ThemesDir = "/srv/themes"
	cfg.Host.StateFile = "/var/lib/shade/state.toml"
	assert.Equal(t, "/srv/themes", cfg.ResolvedThemesDir())
	assert.Equal(t, "/var/lib/shade/state.toml", cfg.ResolvedStateFile())
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	assert.Equal(t, "/xdg/config/shade/config.toml", ConfigPath())
	assert.Equal(t, "/xdg/config/shade/themes", ThemesDir())
	assert.Equal(t, "/xdg/config/shade/current.css", CurrentCSSPath())
	assert.Equal(t, "/xdg/state/shade/state.toml", StatePath())
}

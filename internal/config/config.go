// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Transport names accepted in the client and host sections.
const (
	TransportDBus = "dbus"
	TransportWS   = "ws"
)

// Default configuration values.
const (
	DefaultTransport = TransportDBus
	DefaultWSURL     = "ws://127.0.0.1:7365/channel"
	DefaultListen    = "127.0.0.1:7365"
	DefaultTheme     = "default"
)

// Config represents the shade configuration, shared by shadectl and shaded.
type Config struct {
	Client ClientConfig `toml:"client"`
	Host   HostConfig   `toml:"host"`
	Theme  ThemeConfig  `toml:"theme"`
}

// ClientConfig holds shadectl settings.
type ClientConfig struct {
	Transport string `toml:"transport"` // dbus, ws
	WSURL     string `toml:"ws_url"`
}

// HostConfig holds shaded settings.
type HostConfig struct {
	Transport string `toml:"transport"` // dbus, ws
	Listen    string `toml:"listen"`
	ThemesDir string `toml:"themes_dir"` // empty = default themes directory
	StateFile string `toml:"state_file"` // empty = default state path
}

// ThemeConfig holds theme behavior settings.
type ThemeConfig struct {
	Default   string `toml:"default"`
	HotReload bool   `toml:"hot_reload"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Transport: DefaultTransport,
			WSURL:     DefaultWSURL,
		},
		Host: HostConfig{
			Transport: DefaultTransport,
			Listen:    DefaultListen,
		},
		Theme: ThemeConfig{
			Default:   DefaultTheme,
			HotReload: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "shade", "config.toml")
}

// ThemesDir returns the default user themes directory.
func ThemesDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "shade", "themes")
}

// CurrentCSSPath returns the file the client writes the active theme's
// resolved CSS to. Applications pick the stylesheet up from here.
func CurrentCSSPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "shade", "current.css")
}

// StatePath returns the default host state file path.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state.
func StatePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "shade", "state.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolvedThemesDir returns the configured themes directory or the default.
func (c *Config) ResolvedThemesDir() string {
	if c.Host.ThemesDir != "" {
		return c.Host.ThemesDir
	}
	return ThemesDir()
}

// ResolvedStateFile returns the configured state file or the default.
func (c *Config) ResolvedStateFile() string {
	if c.Host.StateFile != "" {
		return c.Host.StateFile
	}
	return StatePath()
}

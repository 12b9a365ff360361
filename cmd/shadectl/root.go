// Package main provides the CLI entrypoint for shadectl.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/shade/internal/client"
	"github.com/jmylchreest/shade/internal/config"
	"github.com/jmylchreest/shade/internal/dbus"
	"github.com/jmylchreest/shade/internal/theme"
	"github.com/jmylchreest/shade/internal/wire"
	"github.com/jmylchreest/shade/internal/ws"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		transport  string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shadectl",
	Short: "Theme control client for the shade daemon",
	Long: `shadectl talks to shaded, the privileged theme host, to list
installed themes, inspect the active one and activate another.

Running shadectl without a subcommand launches the interactive picker.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to the picker when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/shade/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.transport, "transport", "",
		"Channel transport: dbus or ws (default: from config)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// dialChannel opens the configured transport to the host.
func dialChannel(ctx context.Context) (wire.Channel, error) {
	transport := globalOpts.transport
	if transport == "" {
		transport = cfg.Client.Transport
	}

	switch transport {
	case config.TransportDBus:
		return dbus.DialSession(logger)
	case config.TransportWS:
		return ws.Dial(ctx, cfg.Client.WSURL, logger)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// newThemeClient dials the host and wraps the channel in a protocol client.
// The style loader writes the resolved CSS to the current.css file so that
// applications can pick it up; it is returned so long-running commands can
// start hot reload on it.
func newThemeClient(ctx context.Context) (*client.Client, *theme.CSSLoader, error) {
	ch, err := dialChannel(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reach theme host: %w", err)
	}

	loader := theme.NewCSSLoader(applyCurrentCSS, logger)
	return client.New(ch, loader, logger), loader, nil
}

// applyCurrentCSS is the style injection point of the CLI: the resolved CSS
// lands in current.css for applications to import.
func applyCurrentCSS(css string) {
	path := config.CurrentCSSPath()
	if path == "" {
		logger.Warn("cannot determine current.css path")
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warn("failed to create config directory", "error", err)
		return
	}
	if err := os.WriteFile(path, []byte(css), 0644); err != nil {
		logger.Warn("failed to write current.css", "path", path, "error", err)
		return
	}
	logger.Debug("wrote current.css", "path", path, "bytes", len(css))
}

func main() {
	Execute()
}

// Package main is the entry point for shaded, the privileged theme host.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmylchreest/shade/internal/config"
	"github.com/jmylchreest/shade/internal/dbus"
	"github.com/jmylchreest/shade/internal/host"
	"github.com/jmylchreest/shade/internal/ws"
)

const appName = "shaded"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/shade/config.toml)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting shaded", "version", version)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	themesDir := cfg.ResolvedThemesDir()
	if err := os.MkdirAll(themesDir, 0755); err != nil {
		logger.Error("failed to create themes directory", "dir", themesDir, "error", err)
		os.Exit(1)
	}

	service := host.NewService(themesDir, cfg.ResolvedStateFile(), cfg.Theme.Default, logger)
	logger.Info("theme host ready", "themes_dir", themesDir, "active", service.Active())

	var stop func()
	switch cfg.Host.Transport {
	case config.TransportDBus:
		bridge := dbus.NewHost(service.Attach, logger)
		if err := bridge.Start(); err != nil {
			logger.Error("failed to start dbus channel", "error", err)
			os.Exit(1)
		}
		stop = func() {
			if err := bridge.Stop(); err != nil {
				logger.Warn("error stopping dbus channel", "error", err)
			}
		}
	case config.TransportWS:
		srv := ws.NewServer(cfg.Host.Listen, service.Attach, logger)
		if err := srv.Start(); err != nil {
			logger.Error("failed to start websocket channel", "error", err)
			os.Exit(1)
		}
		stop = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("error stopping websocket channel", "error", err)
			}
		}
	default:
		logger.Error("unknown transport", "transport", cfg.Host.Transport)
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	stop()

	for _, entry := range service.Journal().Entries() {
		logger.Debug("activation", "id", entry.ID, "theme", entry.Theme, "restart", entry.Restart, "at", entry.At)
	}
	logger.Info("shaded stopped")
}

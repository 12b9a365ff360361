package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/shade/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive theme picker",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	c, loader, err := newThemeClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	var hr tui.HotReloader
	if cfg.Theme.HotReload {
		hr = loader
		defer loader.StopHotReload()
	}
	return tui.Run(c, hr)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

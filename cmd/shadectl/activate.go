package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate <theme>",
	Short: "Activate a theme",
	Long: `Activate asks the theme host to make the named theme active.

If the host can apply the theme in place, its stylesheet is resolved and
written to current.css. Themes marked as requiring a restart only take
effect after the application restarts; shade signals the host accordingly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		c, _, err := newThemeClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Activate(ctx, name); err != nil {
			return fmt.Errorf("activate %s: %w", name, err)
		}

		info, err := c.ActiveThemeInfo(ctx)
		if err == nil && info.Restart {
			fmt.Printf("Activated %s (application restart required)\n", name)
			return nil
		}
		fmt.Printf("Activated %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/shade/internal/theme"
)

// requestTimeout bounds a single host exchange started from the CLI.
const requestTimeout = 10 * time.Second

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		c, _, err := newThemeClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		themes, err := c.ListThemes(ctx)
		if err != nil {
			return fmt.Errorf("list themes: %w", err)
		}
		active, err := c.ActiveThemeInfo(ctx)
		if err != nil {
			logger.Warn("failed to read active theme", "error", err)
		}

		printThemes(themes, active.Name)
		return nil
	},
}

func printThemes(themes []theme.Info, active string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tMODIFIED\tNOTES")

	for _, info := range themes {
		source := "bundled"
		modified := "-"
		if !info.Bundled {
			source = info.Path
			if fi, err := os.Stat(info.Path); err == nil {
				modified = humanize.Time(fi.ModTime())
			}
		}

		var notes []string
		if info.Name == active {
			notes = append(notes, "active")
		}
		if info.Default {
			notes = append(notes, "default")
		}
		if info.Restart {
			notes = append(notes, "requires restart")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, source, modified, strings.Join(notes, ", "))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
}

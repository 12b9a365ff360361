package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var activeOpts struct {
	output string
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the currently active theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		c, _, err := newThemeClient(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		info, err := c.ActiveThemeInfo(ctx)
		if err != nil {
			return fmt.Errorf("read active theme: %w", err)
		}

		switch activeOpts.output {
		case "yaml":
			data, err := yaml.Marshal(info)
			if err != nil {
				return err
			}
			os.Stdout.Write(data)
		default:
			fmt.Println(info.Name)
			if info.Bundled {
				fmt.Println("source: bundled")
			} else {
				fmt.Println("source:", info.Path)
			}
			if info.Restart {
				fmt.Println("note: activation requires an application restart")
			}
		}
		return nil
	},
}

func init() {
	activeCmd.Flags().StringVarP(&activeOpts.output, "output", "o", "text",
		"Output format: text or yaml")
	rootCmd.AddCommand(activeCmd)
}

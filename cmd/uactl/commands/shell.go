package commands

import (
	"fmt"

	"github.com/reeflective/console"
	"github.com/spf13/cobra"
)

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive uactl shell",
		Long:  "Launches a readline-based REPL exposing the same subcommands as the CLI.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			app := console.New("uactl")
			app.ActiveMenu().SetCommands(func() *cobra.Command {
				return rootCmd
			})

			if err := app.Start(); err != nil {
				return fmt.Errorf("uactl shell: %w", err)
			}
			return nil
		},
	}
}

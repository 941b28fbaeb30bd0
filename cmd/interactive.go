package cmd

import (
	"ekiroute/pkg/tui"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive TUI",
	Long:  `Launch the Text User Interface to resolve a CSV of trips, browse routes and export results interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		defer logger.Sync()
		return tui.RunTUI(logger)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

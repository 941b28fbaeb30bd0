package cmd

import (
	"fmt"
	"strings"

	"ekiroute/pkg/config"
	"ekiroute/pkg/tui"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ekiroute configuration",
	Long:  "View or edit your local configuration settings (API key, query delay, route proxy, theme).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		changed := false

		if cmd.Flags().Changed("set-key") {
			key, _ := cmd.Flags().GetString("set-key")
			cfg.APIKey = strings.TrimSpace(key)
			changed = true
		}
		if cmd.Flags().Changed("set-delay") {
			ms, _ := cmd.Flags().GetInt("set-delay")
			if ms < 0 {
				return fmt.Errorf("--set-delay must not be negative")
			}
			cfg.RequestDelayMillis = &ms
			changed = true
		}
		if cmd.Flags().Changed("set-proxy") {
			cfg.ProxyURL, _ = cmd.Flags().GetString("set-proxy")
			changed = true
		}

		if changed {
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Println("✅ Configuration saved.")
			return nil
		}

		// If no flags are given, launch the interactive TUI flow
		return tui.RunConfigTUI()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("set-key", "s", "", "Save your Ekispert API key")
	configCmd.Flags().Int("set-delay", config.DefaultDelayMillis, "Save the pause between queries in milliseconds")
	configCmd.Flags().String("set-proxy", "", "Save a route proxy URL (empty to query Ekispert directly)")
}

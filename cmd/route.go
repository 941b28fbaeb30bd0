package cmd

import (
	"context"
	"fmt"
	"strings"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/report"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Look up the fastest route between two coordinates",
	Example: `  ekiroute route --from 33.5902,130.4017 --to 33.5903,130.4208
  ekiroute route --from 33.5902,130.4017 --to 33.2637,130.3009 --from-name 福岡市役所 --to-name 佐賀駅`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		defer logger.Sync()

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		fromName, _ := cmd.Flags().GetString("from-name")
		toName, _ := cmd.Flags().GetString("to-name")

		row := batch.Row{ID: "1", OriginName: fromName, DestName: toName}
		if row.OriginLat, row.OriginLng, err = splitPair(from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		if row.DestLat, row.DestLng, err = splitPair(to); err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		searcher, err := batch.NewSearcher(settings.APIKey, settings.ProxyURL)
		if err != nil {
			return err
		}

		var results []batch.Result
		var runErr error
		_ = spinner.New().
			Title(fmt.Sprintf("Routing %s,%s -> %s,%s...", row.OriginLat, row.OriginLng, row.DestLat, row.DestLng)).
			Action(func() {
				results, runErr = batch.New(searcher, batch.WithLogger(logger)).Run(context.Background(), []batch.Row{row})
			}).
			Run()

		if runErr != nil {
			return runErr
		}

		res := results[0]
		if !res.OK() {
			return res.Err
		}

		fmt.Printf("\n--- 🧭 %s -> %s ---\n", res.OriginName, res.DestName)
		fmt.Printf("Distance: %s km   Time: %s min   Cost: %s\n\n", res.Distance(), res.Duration(), report.FormatCost(res))
		fmt.Print(report.Steps(res))
		return nil
	},
}

// splitPair parses "lat,lng" keeping each component as written.
func splitPair(s string) (lat, lng string, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected lat,lng but got %q", s)
	}
	lat, lng = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lat == "" || lng == "" {
		return "", "", fmt.Errorf("expected lat,lng but got %q", s)
	}
	return lat, lng, nil
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().String("from", "", "Origin as lat,lng")
	routeCmd.Flags().String("to", "", "Destination as lat,lng")
	routeCmd.Flags().String("from-name", "", "Display name of the origin")
	routeCmd.Flags().String("to-name", "", "Display name of the destination")
	addQueryFlags(routeCmd)
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
}

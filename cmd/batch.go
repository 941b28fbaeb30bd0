package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/config"
	"ekiroute/pkg/report"
	"ekiroute/pkg/table"
	"ekiroute/pkg/tui"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve every row of a CSV file into a route",
	Long: `Reads a CSV with origin_lat, origin_lng, dest_lat and dest_lng columns
(plus optional id, origin_name and dest_name), queries Ekispert once per row
and prints a result table. Rows that fail are reported, never skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		defer logger.Sync()

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		mapOut, _ := cmd.Flags().GetString("map")
		quiet, _ := cmd.Flags().GetBool("quiet")

		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("could not open input: %w", err)
		}
		rows, err := table.ReadRows(f)
		f.Close()
		if err != nil {
			return err
		}

		searcher, err := batch.NewSearcher(settings.APIKey, settings.ProxyURL)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := []batch.Option{batch.WithDelay(settings.RequestDelay()), batch.WithLogger(logger)}
		if !quiet {
			opts = append(opts, batch.WithProgress(func(p batch.Progress) {
				fmt.Fprint(os.Stderr, "\r\033[K"+report.ProgressLine(p))
			}))
		}

		results, err := batch.New(searcher, opts...).Run(ctx, rows)
		if !quiet {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}
		if err != nil {
			return err
		}

		fmt.Println(report.Table(results, lipgloss.Color(tui.AccentColor())))
		fmt.Println(report.Summary(results))

		if output != "" {
			if err := writeFile(output, func(f *os.File) error { return table.WriteResults(f, results) }); err != nil {
				return err
			}
			fmt.Printf("✨ Results exported to: %s\n", output)
		}
		if mapOut != "" {
			if err := writeFile(mapOut, func(f *os.File) error { return report.WriteMap(f, "Ekispert routes", results) }); err != nil {
				return err
			}
			fmt.Printf("🗺️  Route map written to: %s\n", mapOut)
		}

		logger.Info("batch finished", zap.String("input", input), zap.Int("rows", len(results)))
		return nil
	},
}

// loadSettings resolves configuration with command-line flags taking
// precedence over the environment and the config file.
func loadSettings(cmd *cobra.Command) (*config.AppConfig, error) {
	settings, err := config.Resolve()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("api-key") {
		settings.APIKey, _ = cmd.Flags().GetString("api-key")
	}
	if cmd.Flags().Changed("proxy") {
		settings.ProxyURL, _ = cmd.Flags().GetString("proxy")
	}
	if cmd.Flags().Changed("delay") {
		d, _ := cmd.Flags().GetDuration("delay")
		if d < 0 {
			return nil, fmt.Errorf("--delay must not be negative")
		}
		ms := int(d / time.Millisecond)
		settings.RequestDelayMillis = &ms
	}
	return settings, nil
}

func addQueryFlags(c *cobra.Command) {
	c.Flags().StringP("api-key", "k", "", "Ekispert API key (defaults to EKISPERT_API_KEY or the saved key)")
	c.Flags().String("proxy", "", "Send queries through a route proxy at this URL")
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringP("input", "i", "", "CSV file with the rows to resolve")
	batchCmd.Flags().StringP("output", "o", "", "Export results to this CSV file")
	batchCmd.Flags().StringP("map", "m", "", "Write an HTML map of the resolved routes to this file")
	batchCmd.Flags().Duration("delay", batch.DefaultDelay, "Pause between two queries")
	batchCmd.Flags().BoolP("quiet", "q", false, "Do not print per-row progress")
	addQueryFlags(batchCmd)
	_ = batchCmd.MarkFlagRequired("input")
}

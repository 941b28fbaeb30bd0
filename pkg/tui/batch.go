package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/config"
	"ekiroute/pkg/report"
	"ekiroute/pkg/table"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// RunBatchTUI asks for a credential and an input table, resolves every row and
// lets the user browse and export the results.
func RunBatchTUI(logger *zap.Logger) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}

	apiKey := cfg.APIKey
	inputPath := cfg.LastInputPath
	saveKey := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ekispert API key").
				Description("Sent with every query. Leave as-is to use the saved key.").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("an API key is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Input CSV").
				Description("Needs origin_lat, origin_lng, dest_lat and dest_lng columns.").
				Placeholder("routes.csv").
				Value(&inputPath).
				Validate(func(s string) error {
					if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("cannot open file: %w", err)
					}
					return nil
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}
	apiKey = strings.TrimSpace(apiKey)
	inputPath = strings.TrimSpace(inputPath)

	if apiKey != cfg.APIKey {
		confirm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save this API key to ~/.ekiroute.json?").
					Value(&saveKey).
					Affirmative("Save").
					Negative("Just this once"),
			),
		).WithTheme(GetTheme())
		if err := confirm.Run(); err != nil {
			return err
		}
	}

	rows, err := readRows(inputPath)
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %v", err)))
		return nil
	}

	if err := rememberInput(apiKey, inputPath, saveKey); err != nil {
		logger.Warn("could not update config", zap.Error(err))
	}

	searcher, err := batch.NewSearcher(apiKey, cfg.ProxyURL)
	if err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\nResolving %d rows from %s...", len(rows), inputPath)))
	results, err := resolveRows(logger, searcher, cfg.RequestDelay(), rows)
	if err != nil {
		return err
	}

	fmt.Println(report.Table(results, lipgloss.Color(AccentColor())))
	fmt.Println(mutedStyle.Render(report.Summary(results)))

	return browseResults(results)
}

func readRows(path string) ([]batch.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open input: %w", err)
	}
	defer f.Close()
	return table.ReadRows(f)
}

// rememberInput stores the last used input path, and the key when asked to.
func rememberInput(apiKey, inputPath string, saveKey bool) error {
	stored, err := config.Load()
	if err != nil {
		return err
	}
	stored.LastInputPath = inputPath
	if saveKey {
		stored.APIKey = apiKey
	}
	return config.Save(stored)
}

// resolveRows runs the pipeline, printing a progress line per row. Ctrl+C
// stops querying; remaining rows are reported as cancelled.
func resolveRows(logger *zap.Logger, searcher batch.Searcher, delay time.Duration, rows []batch.Row) ([]batch.Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := batch.New(searcher,
		batch.WithDelay(delay),
		batch.WithLogger(logger),
		batch.WithProgress(func(pr batch.Progress) {
			fmt.Print("\r\033[K" + report.ProgressLine(pr))
		}),
	)

	results, err := p.Run(ctx, rows)
	fmt.Print("\r\033[K")
	return results, err
}

func browseResults(results []batch.Result) error {
	for {
		options := []huh.Option[string]{
			huh.NewOption("💾 Export results as CSV", "csv"),
			huh.NewOption("🗺️  Write route map (HTML)", "map"),
		}
		for i, r := range results {
			label := fmt.Sprintf("%s: %s -> %s", r.ID, r.OriginName, r.DestName)
			if !r.OK() {
				label = errorStyle.Render(label)
			}
			options = append(options, huh.NewOption(label, fmt.Sprint(i)))
		}
		options = append(options, huh.NewOption("Back to Main Menu", "back"))

		var choice string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Pick a row for details, or export").
					Options(options...).
					Value(&choice).
					Height(14),
			),
		).WithTheme(GetTheme())

		if err := form.Run(); err != nil {
			return err
		}

		switch choice {
		case "back":
			return nil
		case "csv":
			exportFile("ekispert_results", ".csv", func(f *os.File) error { return table.WriteResults(f, results) })
		case "map":
			exportFile("ekispert_routes", ".html", func(f *os.File) error { return report.WriteMap(f, "Ekispert routes", results) })
		default:
			if idx, err := strconv.Atoi(choice); err == nil && idx < len(results) {
				printDetail(results[idx])
			}
		}
	}
}

func printDetail(r batch.Result) {
	fmt.Println(accentStyle.Render(fmt.Sprintf("\n--- %s: %s -> %s ---", r.ID, r.OriginName, r.DestName)))
	if !r.OK() {
		fmt.Println(errorStyle.Render(r.Status()))
		fmt.Println()
		return
	}
	fmt.Printf("Distance: %s km   Time: %s min   Cost: %s\n\n", r.Distance(), r.Duration(), report.FormatCost(r))
	fmt.Println(report.Steps(r))
}

func exportFile(prefix, ext string, write func(*os.File) error) {
	filename := fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102_150405"), ext)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Save as").
				Value(&filename),
		),
	).WithTheme(GetTheme())
	if err := form.Run(); err != nil {
		return
	}

	f, err := os.Create(filename)
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Failed to create %s: %v", filename, err)))
		return
	}
	defer f.Close()

	if err := write(f); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Failed to write %s: %v", filename, err)))
		return
	}
	fmt.Printf("\n✨ Successfully saved: %s\n\n", filename)
}

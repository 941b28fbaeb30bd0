package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ekiroute/pkg/batch"
	"ekiroute/pkg/config"
	"ekiroute/pkg/table"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"go.uber.org/zap"
)

func validateCoordinate(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("enter a decimal degree such as 33.5902")
	}
	return nil
}

// RunRouteTUI resolves a single origin/destination pair.
func RunRouteTUI(logger *zap.Logger) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		fmt.Println(errorStyle.Render("No API key configured."))
		fmt.Println("Please run 'Settings' from the main menu or 'ekiroute config --set-key' first.")
		return nil
	}

	var row batch.Row
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Origin name").Placeholder("optional").Value(&row.OriginName),
			huh.NewInput().Title("Origin latitude").Placeholder("33.5902").Value(&row.OriginLat).Validate(validateCoordinate),
			huh.NewInput().Title("Origin longitude").Placeholder("130.4017").Value(&row.OriginLng).Validate(validateCoordinate),
		),
		huh.NewGroup(
			huh.NewInput().Title("Destination name").Placeholder("optional").Value(&row.DestName),
			huh.NewInput().Title("Destination latitude").Placeholder("33.5903").Value(&row.DestLat).Validate(validateCoordinate),
			huh.NewInput().Title("Destination longitude").Placeholder("130.4208").Value(&row.DestLng).Validate(validateCoordinate),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	searcher, err := batch.NewSearcher(cfg.APIKey, cfg.ProxyURL)
	if err != nil {
		return err
	}

	var results []batch.Result
	var runErr error
	_ = spinner.New().
		Title("Asking Ekispert for the fastest route...").
		Action(func() {
			results, runErr = batch.New(searcher, batch.WithLogger(logger)).Run(context.Background(), []batch.Row{row})
		}).
		Run()

	if runErr != nil {
		return runErr
	}
	printDetail(results[0])
	return nil
}

func runTemplateTUI() error {
	filename := "ekispert_template.csv"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Write template to").
				Value(&filename),
		),
	).WithTheme(GetTheme())
	if err := form.Run(); err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create template: %w", err)
	}
	defer f.Close()

	if err := table.WriteTemplate(f); err != nil {
		return err
	}
	fmt.Printf("\n✨ Template written to: %s\n\n", filename)
	return nil
}

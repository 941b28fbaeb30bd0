package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ekiroute/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// RunConfigTUI launches the interactive experience for managing configurations
func RunConfigTUI() error {
	for {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var action string

		initialForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configuration Settings").
					Options(
						huh.NewOption("Set Accent Color (Theme)", "theme"),
						huh.NewOption("Set Ekispert API Key", "key"),
						huh.NewOption("Set Delay Between Queries", "delay"),
						huh.NewOption("Set Route Proxy URL", "proxy"),
						huh.NewOption("View Current Config", "view"),
						huh.NewOption("Back to Main Menu", "back"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := initialForm.Run(); err != nil {
			return err
		}

		switch action {
		case "back":
			return nil
		case "theme":
			err = runSetThemeTUI(cfg)
		case "key":
			err = runSetKeyTUI(cfg)
		case "delay":
			err = runSetDelayTUI(cfg)
		case "proxy":
			err = runSetProxyTUI(cfg)
		case "view":
			printConfig(cfg)
		}

		if err != nil {
			return err
		}
	}
}

func printConfig(cfg *config.AppConfig) {
	fmt.Println(accentStyle.Render("\n--- Current Configuration (~/.ekiroute.json) ---"))
	if cfg.APIKey == "" {
		fmt.Println("API Key: Not set")
	} else {
		fmt.Printf("API Key: %s\n", MaskKey(cfg.APIKey))
	}
	fmt.Printf("Delay Between Queries: %v\n", cfg.RequestDelay())
	if cfg.ProxyURL == "" {
		fmt.Println("Route Proxy: Not set (querying Ekispert directly)")
	} else {
		fmt.Printf("Route Proxy: %s\n", cfg.ProxyURL)
	}
	fmt.Printf("Accent Color: %s\n", cfg.AccentColor)
	fmt.Println()
}

// MaskKey hides all but the last four characters of a credential.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func runSetKeyTUI(cfg *config.AppConfig) error {
	var input string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your Ekispert API key").
				Description("Stored in ~/.ekiroute.json, readable only by you. EKISPERT_API_KEY overrides it.").
				EchoMode(huh.EchoModePassword).
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		fmt.Println("Operation cancelled: No key provided.")
		return nil
	}

	cfg.APIKey = input
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ API key saved (%s)\n", MaskKey(input))))
	return nil
}

func runSetDelayTUI(cfg *config.AppConfig) error {
	input := strconv.Itoa(int(cfg.RequestDelay().Milliseconds()))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Delay between queries (milliseconds)").
				Description("Spreads the batch out so the provider's rate limits are not hit.").
				Value(&input).
				Validate(func(s string) error {
					ms, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || ms < 0 {
						return errors.New("please enter a non-negative whole number")
					}
					return nil
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	ms, _ := strconv.Atoi(strings.TrimSpace(input))
	cfg.RequestDelayMillis = &ms
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Delay set to %d ms\n", ms)))
	return nil
}

func runSetProxyTUI(cfg *config.AppConfig) error {
	input := cfg.ProxyURL

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Route proxy URL").
				Description("Leave empty to query Ekispert directly.").
				Placeholder("http://localhost:8080/api/ekispert/route").
				Value(&input).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s != "" && !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return errors.New("must start with http:// or https://")
					}
					return nil
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.ProxyURL = strings.TrimSpace(input)
	if err := config.Save(cfg); err != nil {
		return err
	}

	if cfg.ProxyURL == "" {
		fmt.Println(accentStyle.Render("\n✅ Proxy cleared, querying Ekispert directly.\n"))
	} else {
		fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Queries now go through %s\n", cfg.ProxyURL)))
	}
	return nil
}

func colorBlock(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

func runSetThemeTUI(cfg *config.AppConfig) error {
	var input string

	inputForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose an Accent Color for ekiroute").
				Description("Select a curated Charm style or choose Custom to enter your own Hex.").
				Options(
					huh.NewOption(fmt.Sprintf("%s Rail Blue", colorBlock(DefaultAccent)), DefaultAccent),
					huh.NewOption(fmt.Sprintf("%s Sakura Pink", colorBlock("205")), "205"),
					huh.NewOption(fmt.Sprintf("%s Ocean Teal", colorBlock("86")), "86"),
					huh.NewOption(fmt.Sprintf("%s Matcha Green", colorBlock("42")), "42"),
					huh.NewOption("✨ Custom Hex Code", "custom"),
				).
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := inputForm.Run(); err != nil {
		return err
	}

	if input == "custom" {
		var hexInput string
		hexForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter a Hex Color Code").
					Description("Include the `#` symbol. Example: #FF00FF").
					Placeholder("#").
					Value(&hexInput).
					Validate(func(str string) error {
						if len(str) != 7 || !strings.HasPrefix(str, "#") {
							return fmt.Errorf("must be a valid 6-character hex code starting with #")
						}
						return nil
					}),
			),
		).WithTheme(GetCustomTheme(AccentColor()))

		if err := hexForm.Run(); err != nil {
			return err
		}
		cfg.AccentColor = hexInput
	} else {
		cfg.AccentColor = input
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(GetCustomTheme(cfg.AccentColor).Focused.Title.Render("\n✅ The theme color is now saved.\n"))
	return nil
}

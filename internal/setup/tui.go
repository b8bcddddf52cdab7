package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/voxtrade/riskpilot/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the
// resulting yaml config.
func RunTUI() error {
	var (
		platform        string
		watchlistStr    string
		minNotionalStr  string
		pollIntervalStr string
		decisionMode    string
		apiURL          string
		model           string
		confirm         bool
	)

	// defaults
	watchlistStr = "BTC/USDC:USDC,ETH/USDC:USDC"
	minNotionalStr = fmt.Sprintf("%d", config.DefaultMinNotional)
	pollIntervalStr = config.DefaultPollInterval.String()
	apiURL = config.DefaultLLMAPIURL
	model = config.DefaultLLMModel

	clearScreen()
	fmt.Println(headerStyle.Render("RISKPILOT CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Risk-scored trading on autopilot.\n"))

	fmt.Println(stepStyle.Render("STEP 1: PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Hyperliquid", "hyperliquid"),
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("RISKPILOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: WATCHLIST"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Watched Assets").
				Description("Comma separated (e.g. BTC/USDC:USDC,ETH/USDC:USDC)").
				Value(&watchlistStr).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("watchlist cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("RISKPILOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: SIZING AND TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Min Order Notional").
				Description("Smallest order value in quote currency").
				Value(&minNotionalStr).
				Validate(validateNotional),
			huh.NewInput().
				Title("Cycle Interval").
				Description("Duration string (e.g. 20s, 1m)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("RISKPILOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: DECISIONS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Decision Mode").
				Options(
					huh.NewOption("Risk thresholds (below 40 buy, above 60 sell)", config.DecisionModeThreshold),
					huh.NewOption("LLM decides from risk scores", config.DecisionModeLLM),
				).
				Value(&decisionMode),
			huh.NewInput().
				Title("LLM API URL").
				Value(&apiURL),
			huh.NewInput().
				Title("Model Name").
				Value(&model),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("RISKPILOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Platform: %s\nWatchlist: %s\nMin Notional: %s\nInterval: %s\nDecisions: %s\n",
		platform, watchlistStr, minNotionalStr, pollIntervalStr, decisionMode,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)
	cfg := config.ConfigTmp{
		Platform:     platform,
		Watchlist:    splitWatchlist(watchlistStr),
		MinNotional:  minNotionalStr,
		PollInterval: pollInterval,
		DecisionMode: decisionMode,
		LLMAPIURL:    apiURL,
		LLMModel:     model,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s\nStarting bot...", filename)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func validateNotional(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func splitWatchlist(s string) []string {
	parts := strings.Split(s, ",")
	assets := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			assets = append(assets, trimmed)
		}
	}
	return assets
}

// Package config loads the bot configuration from a yaml file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/voxtrade/riskpilot/internal/domain"
)

const (
	DefaultMinNotional  = 10
	DefaultPollInterval = 20 * time.Second
	DefaultWebAddr      = ":8080"
	DefaultWALDir       = "./wal/trades"
	DefaultLLMAPIURL    = "https://openrouter.ai/api/v1/chat/completions"
	DefaultLLMModel     = "deepseek/deepseek-chat-v3-0324"
)

// DecisionMode selects how scored assets become trade decisions.
const (
	DecisionModeThreshold = "threshold"
	DecisionModeLLM       = "llm"
)

type Config struct {
	Platform     string
	Watchlist    []domain.Asset
	MinNotional  decimal.Decimal
	PollInterval time.Duration
	DecisionMode string
	LLMAPIURL    string
	LLMModel     string
	WALDir       string
	WebAddr      string
	TLSHost      string
}

type ConfigTmp struct {
	Platform     string        `yaml:"platform"`
	Watchlist    []string      `yaml:"watchlist"`
	MinNotional  string        `yaml:"min_notional,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	DecisionMode string        `yaml:"decision_mode,omitempty"`
	LLMAPIURL    string        `yaml:"llm_api_url,omitempty"`
	LLMModel     string        `yaml:"llm_model,omitempty"`
	WALDir       string        `yaml:"wal_dir,omitempty"`
	WebAddr      string        `yaml:"web_addr,omitempty"`
	TLSHost      string        `yaml:"tls_host,omitempty"`
}

// Get loads the configuration, preferring a yaml file when --config is set.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	platform := flag.String("platform", "hyperliquid", "trading platform: hyperliquid, binance or bybit")
	watchlist := flag.String("watchlist", "BTC/USDC:USDC,ETH/USDC:USDC", "comma separated assets to trade")
	minNotional := flag.String("minnotional", "", "minimal order notional in quote currency")
	pollInterval := flag.Duration("pollinterval", DefaultPollInterval, "trading cycle interval")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	tmp := ConfigTmp{
		Platform:     *platform,
		Watchlist:    strings.Split(*watchlist, ","),
		MinNotional:  *minNotional,
		PollInterval: *pollInterval,
	}
	return tmp.validate()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}
	return tmp.validate()
}

func (c ConfigTmp) validate() (Config, error) {
	switch c.Platform {
	case "hyperliquid", "binance", "bybit":
	default:
		return Config{}, fmt.Errorf("unsupported platform: %q", c.Platform)
	}

	assets := make([]domain.Asset, 0, len(c.Watchlist))
	for _, name := range c.Watchlist {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		assets = append(assets, domain.Asset(name))
	}
	if len(assets) == 0 {
		return Config{}, fmt.Errorf("watchlist is empty")
	}

	minNotional := decimal.NewFromInt(DefaultMinNotional)
	if c.MinNotional != "" {
		parsed, err := decimal.NewFromString(c.MinNotional)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'min_notional' param: %w", err)
		}
		if parsed.LessThanOrEqual(decimal.Zero) {
			return Config{}, fmt.Errorf("'min_notional' must be positive, got %s", parsed)
		}
		minNotional = parsed
	}

	conf := Config{
		Platform:     c.Platform,
		Watchlist:    assets,
		MinNotional:  minNotional,
		PollInterval: c.PollInterval,
		DecisionMode: c.DecisionMode,
		LLMAPIURL:    c.LLMAPIURL,
		LLMModel:     c.LLMModel,
		WALDir:       c.WALDir,
		WebAddr:      c.WebAddr,
		TLSHost:      c.TLSHost,
	}

	if conf.PollInterval <= 0 {
		conf.PollInterval = DefaultPollInterval
	}
	switch conf.DecisionMode {
	case "":
		conf.DecisionMode = DecisionModeLLM
	case DecisionModeThreshold, DecisionModeLLM:
	default:
		return Config{}, fmt.Errorf("unsupported decision_mode: %q", conf.DecisionMode)
	}
	if conf.LLMAPIURL == "" {
		conf.LLMAPIURL = DefaultLLMAPIURL
	}
	if conf.LLMModel == "" {
		conf.LLMModel = DefaultLLMModel
	}
	if conf.WALDir == "" {
		conf.WALDir = DefaultWALDir
	}
	if conf.WebAddr == "" {
		conf.WebAddr = DefaultWebAddr
	}

	return conf, nil
}

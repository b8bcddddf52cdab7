// Command riskpilot runs the risk-scored trading bot. Each cycle it scores
// the watched assets with an LLM, turns the scores into buy/sell/hold
// decisions and places the minimal set of position-aware orders.
//
// Usage:
//
//	riskpilot --config config.yaml
//	riskpilot setup   (interactive configuration wizard)
//
// Required environment variables:
//
//	LLM_API_KEY for the scoring model
//	For Hyperliquid: HYPERLIQUID_PRIVATE_KEY
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/config"
	"github.com/voxtrade/riskpilot/internal"
	"github.com/voxtrade/riskpilot/internal/clients"
	"github.com/voxtrade/riskpilot/internal/domain"
	"github.com/voxtrade/riskpilot/internal/services/decision"
	"github.com/voxtrade/riskpilot/internal/services/executor"
	"github.com/voxtrade/riskpilot/internal/services/gateway"
	"github.com/voxtrade/riskpilot/internal/services/scorer"
	"github.com/voxtrade/riskpilot/internal/services/watchlist"
	"github.com/voxtrade/riskpilot/internal/setup"
	"github.com/voxtrade/riskpilot/internal/storage/tradelog"
	"github.com/voxtrade/riskpilot/internal/web"
)

const hyperliquidAPIURL = "https://api.hyperliquid.xyz"

// exchangeGateway is everything a venue implementation provides: prices,
// candles, positions and order placement.
type exchangeGateway interface {
	internal.MarketData
	internal.PositionProvider
	executor.OrderGateway
	RecentCloses(ctx context.Context, asset domain.Asset, limit int) ([]decimal.Decimal, error)
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		os.Args = []string{os.Args[0], "--config", "config.gen.yaml"}
	}

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	gw, err := buildGateway(conf)
	if err != nil {
		logger.Fatal("failed to build exchange gateway", zap.Error(err))
	}

	llmAPIKey := os.Getenv("LLM_API_KEY")
	if llmAPIKey == "" {
		logger.Fatal("LLM_API_KEY environment variable must be set")
	}
	llm := clients.NewOpenAICompatibleClient(conf.LLMAPIURL, llmAPIKey, conf.LLMModel)

	walStore, err := tradelog.NewWALStore(conf.WALDir)
	if err != nil {
		logger.Fatal("failed to open trade journal", zap.Error(err))
	}
	defer walStore.Close()
	trades := tradelog.New(walStore)

	var decisions internal.DecisionSource
	if conf.DecisionMode == config.DecisionModeThreshold {
		decisions = decision.NewThreshold()
	} else {
		decisions = decision.NewLLM(llm, logger)
	}

	engine := internal.NewEngine(
		gw,
		gw,
		scorer.New(llm, gw, logger),
		decisions,
		executor.New(gw, trades, logger),
		watchlist.New(conf.Watchlist...),
		conf.MinNotional,
		conf.PollInterval,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(engine.Start())
	defer engine.Stop()

	server := web.NewServer(conf.WebAddr, engine, trades, gw, logger)
	if conf.TLSHost != "" {
		err = server.StartWithAutoTLS(ctx, conf.TLSHost, "./certs")
	} else {
		err = server.Start(ctx)
	}
	if err != nil {
		logger.Fatal("web server failed", zap.Error(err))
	}
}

func buildGateway(conf config.Config) (exchangeGateway, error) {
	switch conf.Platform {
	case "hyperliquid":
		privateKey := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
		if privateKey == "" {
			return nil, fmt.Errorf("HYPERLIQUID_PRIVATE_KEY environment variable must be set")
		}
		client, err := clients.NewHyperliquidClient(privateKey, hyperliquidAPIURL)
		if err != nil {
			return nil, err
		}
		return gateway.NewHyperliquid(client.Exchange(), client.AccountAddress())
	case "binance":
		apiKey, apiSecret := os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		return gateway.NewBinance(clients.NewBinanceClient(apiKey, apiSecret))
	case "bybit":
		apiKey, apiSecret := os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("BYBIT_API_KEY and BYBIT_API_SECRET environment variables must be set")
		}
		return gateway.NewBybit(clients.NewBybitClient(apiKey, apiSecret))
	default:
		return nil, fmt.Errorf("unsupported platform: %s", conf.Platform)
	}
}

// Package scorer produces per-asset risk scores by asking an LLM to assess
// each watched token against its recent market data.
package scorer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// closesLimit is how many recent closes feed the indicator summary; enough
// for RSI14 and EMA20 with headroom.
const closesLimit = 50

type llmClient interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type marketData interface {
	LatestPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error)
	RecentCloses(ctx context.Context, asset domain.Asset, limit int) ([]decimal.Decimal, error)
}

// Scorer asks the LLM for risk scores over the current watchlist batch.
type Scorer struct {
	llm    llmClient
	market marketData
	logger *zap.Logger
}

// New creates an LLM-backed risk scorer.
func New(llm llmClient, market marketData, logger *zap.Logger) *Scorer {
	return &Scorer{llm: llm, market: market, logger: logger}
}

// Score returns a risk score per asset. Assets whose market data cannot be
// fetched are still scored, just without indicator context; the scorer only
// fails when the LLM call or the response parse fails for the whole batch.
func (s *Scorer) Score(ctx context.Context, assets []domain.Asset) (map[domain.Asset]domain.RiskScore, error) {
	if len(assets) == 0 {
		return map[domain.Asset]domain.RiskScore{}, nil
	}

	contexts := make([]assetContext, 0, len(assets))
	for _, asset := range assets {
		price, err := s.market.LatestPrice(ctx, asset)
		if err != nil {
			s.logger.Warn("no price for asset, scoring without market context",
				zap.String("asset", string(asset)), zap.Error(err))
			contexts = append(contexts, assetContext{asset: asset, price: decimal.Zero})
			continue
		}

		assetCtx := assetContext{asset: asset, price: price}
		if closes, err := s.market.RecentCloses(ctx, asset, closesLimit); err == nil {
			if summary, err := summarizeIndicators(closes); err == nil {
				assetCtx.indicators = &summary
			}
		}
		contexts = append(contexts, assetCtx)
	}

	response, err := s.llm.Chat(ctx, systemPrompt, buildUserPrompt(contexts))
	if err != nil {
		return nil, errors.Wrap(err, "risk scoring request failed")
	}

	scores, err := domain.ParseRiskReport(response, assets)
	if err != nil {
		return nil, errors.Wrap(err, "parse risk report")
	}

	for asset, score := range scores {
		s.logger.Debug("risk score",
			zap.String("asset", string(asset)),
			zap.Float64("score", float64(score)))
	}

	return scores, nil
}

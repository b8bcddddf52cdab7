package scorer

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
)

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Chat(_ context.Context, _ string, userPrompt string) (string, error) {
	f.lastPrompt = userPrompt
	return f.response, f.err
}

type fakeMarket struct {
	prices map[domain.Asset]decimal.Decimal
	closes []decimal.Decimal
}

func (m *fakeMarket) LatestPrice(_ context.Context, asset domain.Asset) (decimal.Decimal, error) {
	price, ok := m.prices[asset]
	if !ok {
		return decimal.Zero, errors.New("price not available")
	}
	return price, nil
}

func (m *fakeMarket) RecentCloses(_ context.Context, _ domain.Asset, _ int) ([]decimal.Decimal, error) {
	if m.closes == nil {
		return nil, errors.New("no candles")
	}
	return m.closes, nil
}

func TestScoreParsesReport(t *testing.T) {
	llm := &fakeLLM{response: `{"tokens": [
		{"name": "BTC", "risk_score": 35},
		{"name": "ETH", "risk_score": 72}
	]}`}
	market := &fakeMarket{prices: map[domain.Asset]decimal.Decimal{
		"BTC/USDC:USDC": decimal.NewFromInt(80000),
		"ETH/USDC:USDC": decimal.NewFromInt(2000),
	}}

	s := New(llm, market, zap.NewNop())
	scores, err := s.Score(context.Background(), []domain.Asset{"BTC/USDC:USDC", "ETH/USDC:USDC"})
	require.NoError(t, err)

	assert.Equal(t, domain.RiskScore(35), scores["BTC/USDC:USDC"])
	assert.Equal(t, domain.RiskScore(72), scores["ETH/USDC:USDC"])

	assert.Contains(t, llm.lastPrompt, "BTC")
	assert.Contains(t, llm.lastPrompt, "80000")
}

func TestScoreFencedResponse(t *testing.T) {
	llm := &fakeLLM{response: "```json\n{\"tokens\": [{\"name\": \"SOL\", \"risk_score\": 20}]}\n```"}
	market := &fakeMarket{prices: map[domain.Asset]decimal.Decimal{
		"SOL/USDC:USDC": decimal.NewFromInt(150),
	}}

	s := New(llm, market, zap.NewNop())
	scores, err := s.Score(context.Background(), []domain.Asset{"SOL/USDC:USDC"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskScore(20), scores["SOL/USDC:USDC"])
}

func TestScoreSurvivesMissingMarketData(t *testing.T) {
	llm := &fakeLLM{response: `{"tokens": [{"name": "BTC", "risk_score": 50}]}`}
	market := &fakeMarket{prices: map[domain.Asset]decimal.Decimal{}}

	s := New(llm, market, zap.NewNop())
	scores, err := s.Score(context.Background(), []domain.Asset{"BTC/USDC:USDC"})
	require.NoError(t, err, "missing market data degrades the prompt, not the batch")
	assert.Len(t, scores, 1)
}

func TestScoreLLMFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	market := &fakeMarket{prices: map[domain.Asset]decimal.Decimal{
		"BTC/USDC:USDC": decimal.NewFromInt(80000),
	}}

	s := New(llm, market, zap.NewNop())
	_, err := s.Score(context.Background(), []domain.Asset{"BTC/USDC:USDC"})
	assert.Error(t, err)
}

func TestScoreMalformedReport(t *testing.T) {
	llm := &fakeLLM{response: "I think BTC looks risky today."}
	market := &fakeMarket{prices: map[domain.Asset]decimal.Decimal{
		"BTC/USDC:USDC": decimal.NewFromInt(80000),
	}}

	s := New(llm, market, zap.NewNop())
	_, err := s.Score(context.Background(), []domain.Asset{"BTC/USDC:USDC"})
	assert.Error(t, err)
}

func TestScoreEmptyBatch(t *testing.T) {
	s := New(&fakeLLM{}, &fakeMarket{}, zap.NewNop())
	scores, err := s.Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

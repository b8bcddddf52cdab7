package decision

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
)

func TestThresholdDecide(t *testing.T) {
	scores := map[domain.Asset]domain.RiskScore{
		"BTC/USDC:USDC": 39.9, // below 40 -> buy
		"ETH/USDC:USDC": 40,   // boundary -> hold
		"SOL/USDC:USDC": 60,   // boundary -> hold
		"ARB/USDC:USDC": 60.1, // above 60 -> sell
	}

	set, err := NewThreshold().Decide(context.Background(), scores)
	require.NoError(t, err)
	require.True(t, set.IsStructured())

	assert.Equal(t, domain.DecisionBuy, set.Structured["BTC/USDC:USDC"])
	assert.Equal(t, domain.DecisionHold, set.Structured["ETH/USDC:USDC"])
	assert.Equal(t, domain.DecisionHold, set.Structured["SOL/USDC:USDC"])
	assert.Equal(t, domain.DecisionSell, set.Structured["ARB/USDC:USDC"])
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(_ context.Context, _, _ string) (string, error) {
	return f.response, f.err
}

func TestLLMDecideStructured(t *testing.T) {
	llm := &fakeLLM{response: `{"BTC": "buy", "ETH": "sell"}`}
	source := NewLLM(llm, zap.NewNop())

	set, err := source.Decide(context.Background(), map[domain.Asset]domain.RiskScore{
		"BTC/USDC:USDC": 30,
		"ETH/USDC:USDC": 70,
	})
	require.NoError(t, err)
	require.True(t, set.IsStructured())

	assert.Equal(t, domain.DecisionBuy, set.Structured["BTC/USDC:USDC"])
	assert.Equal(t, domain.DecisionSell, set.Structured["ETH/USDC:USDC"])
}

func TestLLMDecideUnparsedFallsThrough(t *testing.T) {
	llm := &fakeLLM{response: "I would buy BTC here, the rest looks shaky."}
	source := NewLLM(llm, zap.NewNop())

	set, err := source.Decide(context.Background(), map[domain.Asset]domain.RiskScore{
		"BTC/USDC:USDC": 30,
	})
	require.NoError(t, err, "an unparseable payload is degraded mode, not an error")
	assert.False(t, set.IsStructured())
	assert.Equal(t, llm.response, set.Raw)
}

func TestLLMDecideTransportError(t *testing.T) {
	source := NewLLM(&fakeLLM{err: errors.New("connection reset")}, zap.NewNop())

	_, err := source.Decide(context.Background(), map[domain.Asset]domain.RiskScore{
		"BTC/USDC:USDC": 30,
	})
	assert.Error(t, err)
}

func TestLLMDecideEmptyBatch(t *testing.T) {
	source := NewLLM(&fakeLLM{}, zap.NewNop())

	set, err := source.Decide(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, set.IsStructured())
	assert.Empty(t, set.Structured)
}

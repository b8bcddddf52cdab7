// Package decision turns risk scores into per-asset trade decisions.
package decision

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// Threshold maps risk scores through the fixed thresholds: below 40 buy,
// above 60 sell, otherwise hold. It needs no external collaborator.
type Threshold struct{}

// NewThreshold creates the rule-based decision source.
func NewThreshold() Threshold {
	return Threshold{}
}

// Decide converts the scored batch into structured decisions.
func (Threshold) Decide(_ context.Context, scores map[domain.Asset]domain.RiskScore) (domain.DecisionSet, error) {
	return domain.StructuredDecisions(domain.DecisionsFromScores(scores)), nil
}

const llmSystemPrompt = `You are a trading decision maker. Given per-token risk scores
(0-100, lower is safer), decide for each token whether to buy, sell or hold.

Respond with ONLY a JSON object mapping token symbol to decision, no prose:
{"BTC": "buy", "ETH": "hold"}`

type llmClient interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLM asks the model for decisions over the scored batch. When the reply is
// not parseable as structured decisions the raw text is handed back so the
// loop can apply its keyword fallback; a malformed payload is not an error.
type LLM struct {
	llm    llmClient
	logger *zap.Logger
}

// NewLLM creates the LLM-backed decision source.
func NewLLM(llm llmClient, logger *zap.Logger) *LLM {
	return &LLM{llm: llm, logger: logger}
}

// Decide requests decisions for every scored asset.
func (l *LLM) Decide(ctx context.Context, scores map[domain.Asset]domain.RiskScore) (domain.DecisionSet, error) {
	if len(scores) == 0 {
		return domain.StructuredDecisions(nil), nil
	}

	assets := make([]domain.Asset, 0, len(scores))
	for asset := range scores {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })

	response, err := l.llm.Chat(ctx, llmSystemPrompt, buildDecisionPrompt(assets, scores))
	if err != nil {
		return domain.DecisionSet{}, errors.Wrap(err, "decision request failed")
	}

	set := domain.ParseDecisionSet(response, assets)
	if !set.IsStructured() {
		l.logger.Warn("decision payload not parseable, handing raw text to fallback",
			zap.Int("assets", len(assets)))
	}
	return set, nil
}

func buildDecisionPrompt(assets []domain.Asset, scores map[domain.Asset]domain.RiskScore) string {
	var b strings.Builder
	b.WriteString("Risk scores:\n")
	for _, asset := range assets {
		fmt.Fprintf(&b, "- %s: %.0f\n", asset.Base(), float64(scores[asset]))
	}
	b.WriteString("\nDecide buy, sell or hold for each token.")
	return b.String()
}

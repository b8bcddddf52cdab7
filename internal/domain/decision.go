package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// RiskScore is a per-asset risk estimate in [0,100], lower = safer.
type RiskScore float64

// Risk thresholds mapping a score onto a trade decision.
const (
	// BuyRiskThreshold scores strictly below this are safe enough to buy.
	BuyRiskThreshold RiskScore = 40
	// SellRiskThreshold scores strictly above this are risky enough to sell.
	SellRiskThreshold RiskScore = 60
)

// TradeDecision is the per-asset action requested for one cycle.
type TradeDecision int

const (
	DecisionHold TradeDecision = iota
	DecisionBuy
	DecisionSell
)

const (
	decisionStringBuy  = "buy"
	decisionStringSell = "sell"
	decisionStringHold = "hold"
)

// String returns the string representation of the decision.
func (d TradeDecision) String() string {
	switch d {
	case DecisionBuy:
		return decisionStringBuy
	case DecisionSell:
		return decisionStringSell
	default:
		return decisionStringHold
	}
}

// ParseTradeDecision normalizes a decision label to the enum.
func ParseTradeDecision(s string) (TradeDecision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case decisionStringBuy:
		return DecisionBuy, nil
	case decisionStringSell:
		return DecisionSell, nil
	case decisionStringHold, "":
		return DecisionHold, nil
	default:
		return DecisionHold, errors.Errorf("unknown trade decision: %q", s)
	}
}

// DecisionFromScore maps a risk score through the fixed thresholds.
func DecisionFromScore(score RiskScore) TradeDecision {
	switch {
	case score < BuyRiskThreshold:
		return DecisionBuy
	case score > SellRiskThreshold:
		return DecisionSell
	default:
		return DecisionHold
	}
}

// DecisionsFromScores maps a batch of risk scores to decisions.
func DecisionsFromScores(scores map[Asset]RiskScore) map[Asset]TradeDecision {
	decisions := make(map[Asset]TradeDecision, len(scores))
	for asset, score := range scores {
		decisions[asset] = DecisionFromScore(score)
	}
	return decisions
}

// DecisionSet is the payload produced by a decision source. It is either
// structured (per-asset decisions already normalized) or raw text that
// could not be parsed and must go through the keyword heuristic.
type DecisionSet struct {
	Structured map[Asset]TradeDecision
	Raw        string
}

// IsStructured reports whether the set was parsed into per-asset decisions.
func (d DecisionSet) IsStructured() bool {
	return d.Structured != nil
}

// StructuredDecisions wraps an already-normalized decision map.
func StructuredDecisions(decisions map[Asset]TradeDecision) DecisionSet {
	if decisions == nil {
		decisions = map[Asset]TradeDecision{}
	}
	return DecisionSet{Structured: decisions}
}

// UnparsedDecisions wraps a payload the structured parser rejected.
func UnparsedDecisions(raw string) DecisionSet {
	return DecisionSet{Raw: raw}
}

// ParseDecisionSet attempts to decode a decision payload into per-asset
// decisions. Accepted shapes:
//
//	{"BTC/USDC:USDC": "buy", "ETH/USDC:USDC": "hold"}
//	{"decisions": {"BTC/USDC:USDC": "buy"}}
//
// Keys may also be bare base symbols; they are matched against the given
// assets. On any parse failure the raw payload is preserved for the
// heuristic fallback instead of returning an error to the caller.
func ParseDecisionSet(raw string, assets []Asset) DecisionSet {
	payload := sanitizePayload(raw)

	if !json.Valid([]byte(payload)) {
		return UnparsedDecisions(raw)
	}

	var wrapped struct {
		Decisions map[string]string `json:"decisions"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && len(wrapped.Decisions) > 0 {
		if decisions, ok := normalizeDecisionMap(wrapped.Decisions, assets); ok {
			return StructuredDecisions(decisions)
		}
		return UnparsedDecisions(raw)
	}

	var flat map[string]string
	if err := json.Unmarshal([]byte(payload), &flat); err == nil && len(flat) > 0 {
		if decisions, ok := normalizeDecisionMap(flat, assets); ok {
			return StructuredDecisions(decisions)
		}
	}

	return UnparsedDecisions(raw)
}

func normalizeDecisionMap(m map[string]string, assets []Asset) (map[Asset]TradeDecision, bool) {
	byBase := make(map[string]Asset, len(assets))
	byFull := make(map[string]Asset, len(assets))
	for _, asset := range assets {
		byBase[strings.ToUpper(asset.Base())] = asset
		byFull[strings.ToUpper(string(asset))] = asset
	}

	decisions := make(map[Asset]TradeDecision, len(m))
	for key, label := range m {
		decision, err := ParseTradeDecision(label)
		if err != nil {
			return nil, false
		}

		upper := strings.ToUpper(strings.TrimSpace(key))
		if asset, ok := byFull[upper]; ok {
			decisions[asset] = decision
			continue
		}
		if asset, ok := byBase[upper]; ok {
			decisions[asset] = decision
			continue
		}
		// decisions for assets outside the watchlist are dropped silently
	}

	return decisions, true
}

// HeuristicDecisions is the conservative fallback applied to an unparsed
// payload: an asset whose base symbol appears in the text maps to buy,
// everything else holds.
func HeuristicDecisions(raw string, assets []Asset) map[Asset]TradeDecision {
	upper := strings.ToUpper(raw)
	decisions := make(map[Asset]TradeDecision, len(assets))
	for _, asset := range assets {
		if strings.Contains(upper, strings.ToUpper(asset.Base())) {
			decisions[asset] = DecisionBuy
		} else {
			decisions[asset] = DecisionHold
		}
	}
	return decisions
}

// sanitizePayload strips markdown code fences LLMs like to wrap JSON in.
func sanitizePayload(raw string) string {
	payload := strings.TrimSpace(raw)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	return strings.TrimSpace(payload)
}

// RiskReport is the scorer's structured response shape:
// {"tokens": [{"name": "BTC", "risk_score": 35}]}.
type RiskReport struct {
	Tokens []RiskReportEntry `json:"tokens"`
}

// RiskReportEntry is a single scored token in a RiskReport.
type RiskReportEntry struct {
	Name      string  `json:"name"`
	RiskScore float64 `json:"risk_score"`
}

// ParseRiskReport decodes the scorer payload and maps entries onto the
// given assets by base symbol. Unknown tokens are dropped.
func ParseRiskReport(raw string, assets []Asset) (map[Asset]RiskScore, error) {
	payload := sanitizePayload(raw)

	var report RiskReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, errors.Wrap(err, "decode risk report")
	}
	if len(report.Tokens) == 0 {
		return nil, errors.New("risk report contains no tokens")
	}

	byBase := make(map[string]Asset, len(assets))
	for _, asset := range assets {
		byBase[strings.ToUpper(asset.Base())] = asset
	}

	scores := make(map[Asset]RiskScore, len(report.Tokens))
	for _, entry := range report.Tokens {
		asset, ok := byBase[strings.ToUpper(strings.TrimSpace(entry.Name))]
		if !ok {
			continue
		}
		if entry.RiskScore < 0 || entry.RiskScore > 100 {
			return nil, fmt.Errorf("risk score out of range for %s: %f", entry.Name, entry.RiskScore)
		}
		scores[asset] = RiskScore(entry.RiskScore)
	}

	if len(scores) == 0 {
		return nil, errors.New("risk report matched no watched assets")
	}
	return scores, nil
}

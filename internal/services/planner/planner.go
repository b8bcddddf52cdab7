// Package planner maps a per-asset trade decision and position state onto
// at most one concrete order intent.
package planner

import (
	"github.com/shopspring/decimal"

	"github.com/voxtrade/riskpilot/internal/domain"
	"github.com/voxtrade/riskpilot/pkg/sizing"
)

// Resolve is a pure function: same inputs always produce the same intent.
//
// Priority order, first match wins:
//  1. hold                      -> nothing
//  2. sell while long           -> close the long
//  3. buy while short           -> close the short
//  4. sell while flat           -> open a short at minimum size
//  5. buy while flat            -> open a long at minimum size
//  6. anything else (buy while long, sell while short) -> nothing;
//     pyramiding is deliberately suppressed, and a close consumes the
//     action so a position is never closed and re-opened in one pass.
//
// A nil intent with nil error means no order this cycle.
func Resolve(
	asset domain.Asset,
	decision domain.TradeDecision,
	position domain.PositionSnapshot,
	latestPrice decimal.Decimal,
	minNotional decimal.Decimal,
) (*domain.OrderIntent, error) {
	if decision == domain.DecisionHold {
		return nil, nil
	}
	if latestPrice.LessThanOrEqual(decimal.Zero) {
		return nil, sizing.ErrInvalidPrice
	}

	switch {
	case decision == domain.DecisionSell && position.Side == domain.PositionSideLong:
		return closeIntent(asset, position, latestPrice, domain.OrderSideSell, domain.IntentCloseLong)

	case decision == domain.DecisionBuy && position.Side == domain.PositionSideShort:
		return closeIntent(asset, position, latestPrice, domain.OrderSideBuy, domain.IntentCloseShort)

	case decision == domain.DecisionSell && position.Side == domain.PositionSideNone:
		return openIntent(asset, latestPrice, minNotional, domain.OrderSideSell, domain.IntentOpenShort)

	case decision == domain.DecisionBuy && position.Side == domain.PositionSideNone:
		return openIntent(asset, latestPrice, minNotional, domain.OrderSideBuy, domain.IntentOpenLong)
	}

	return nil, nil
}

func closeIntent(
	asset domain.Asset,
	position domain.PositionSnapshot,
	latestPrice decimal.Decimal,
	side domain.OrderSide,
	kind domain.IntentKind,
) (*domain.OrderIntent, error) {
	entry := position.Entry
	if entry.LessThanOrEqual(decimal.Zero) {
		entry = latestPrice
	}

	takeProfit, stopLoss, err := sizing.Brackets(entry)
	if err != nil {
		return nil, err
	}

	return &domain.OrderIntent{
		Asset:      asset,
		Side:       side,
		Quantity:   position.Size,
		Price:      latestPrice,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
		Kind:       kind,
	}, nil
}

func openIntent(
	asset domain.Asset,
	latestPrice decimal.Decimal,
	minNotional decimal.Decimal,
	side domain.OrderSide,
	kind domain.IntentKind,
) (*domain.OrderIntent, error) {
	quantity, err := sizing.MinTradeSize(minNotional, latestPrice)
	if err != nil {
		return nil, err
	}

	// no existing entry when opening from flat; the latest price is the
	// synthetic entry the brackets hang off
	takeProfit, stopLoss, err := sizing.Brackets(latestPrice)
	if err != nil {
		return nil, err
	}

	return &domain.OrderIntent{
		Asset:      asset,
		Side:       side,
		Quantity:   quantity,
		Price:      latestPrice,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
		Kind:       kind,
	}, nil
}

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order on the exchange.
type OrderSide int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

// String returns the string representation of the order side.
func (s OrderSide) String() string {
	if s == OrderSideSell {
		return "sell"
	}
	return "buy"
}

// IntentKind tells why an order is being placed.
type IntentKind int

const (
	IntentOpenLong IntentKind = iota
	IntentOpenShort
	IntentCloseLong
	IntentCloseShort
	// IntentFlatOpen opens from flat without committing to a direction label;
	// kept for gateway implementations that do not distinguish long/short opens.
	IntentFlatOpen
)

// String returns the string representation of the intent kind.
func (k IntentKind) String() string {
	switch k {
	case IntentOpenLong:
		return "open_long"
	case IntentOpenShort:
		return "open_short"
	case IntentCloseLong:
		return "close_long"
	case IntentCloseShort:
		return "close_short"
	case IntentFlatOpen:
		return "flat_open"
	default:
		return "unknown"
	}
}

// OrderIntent is a fully resolved plan for a single order. It is built once
// per resolution, never mutated, and consumed exactly once by the executor.
// TakeProfit/StopLoss equal to zero mean no bracket leg.
type OrderIntent struct {
	Asset      Asset
	Side       OrderSide
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	TakeProfit decimal.Decimal
	StopLoss   decimal.Decimal
	Kind       IntentKind
}

// String returns a human-readable summary for logs.
func (i *OrderIntent) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s",
		i.Kind, i.Side, i.Quantity.String(), i.Asset, i.Price.String())
}

// Package sizing provides exact-precision order sizing and bracket price math.
// All arithmetic is done on decimals; binary floats would accumulate rounding
// errors that can under-fund an order below the exchange minimum.
package sizing

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when a reference price is not strictly positive.
var ErrInvalidPrice = errors.New("reference price must be greater than zero")

const (
	// quantityPrecision is the number of decimal places for order quantities.
	quantityPrecision = 6
	// pricePrecision is the number of decimal places for bracket prices.
	pricePrecision = 2
)

var (
	takeProfitFactor = decimal.NewFromFloat(1.20)
	stopLossFactor   = decimal.NewFromFloat(0.80)
)

// MinTradeSize computes the smallest quantity satisfying
// quantity * price >= minNotional, rounded up to 6 decimal places.
// Rounding is always away from zero: under-sizing would violate the
// exchange minimum.
func MinTradeSize(minNotional, price decimal.Decimal) (decimal.Decimal, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidPrice
	}
	if minNotional.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.New("minimum notional must be greater than zero")
	}

	// DivisionPrecision is 16 by default; enough headroom before the ceil.
	qty := minNotional.Div(price).RoundCeil(quantityPrecision)
	return qty, nil
}

// TakeProfit returns the bracket target 20% above entry, rounded up to
// 2 decimal places so the bracket is never tighter than intended.
func TakeProfit(entry decimal.Decimal) (decimal.Decimal, error) {
	if entry.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidPrice
	}
	return entry.Mul(takeProfitFactor).RoundCeil(pricePrecision), nil
}

// StopLoss returns the bracket floor 20% below entry, rounded down to
// 2 decimal places.
func StopLoss(entry decimal.Decimal) (decimal.Decimal, error) {
	if entry.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidPrice
	}
	return entry.Mul(stopLossFactor).RoundFloor(pricePrecision), nil
}

// Brackets returns both protective prices for an entry.
func Brackets(entry decimal.Decimal) (takeProfit, stopLoss decimal.Decimal, err error) {
	takeProfit, err = TakeProfit(entry)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	stopLoss, err = StopLoss(entry)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return takeProfit, stopLoss, nil
}

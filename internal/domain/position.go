package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PositionSide represents the direction of an open position.
type PositionSide int

const (
	// PositionSideNone means no position is open for the asset.
	PositionSideNone PositionSide = iota
	// PositionSideLong represents a long position (buy to open).
	PositionSideLong
	// PositionSideShort represents a short position (sell to open).
	PositionSideShort
)

// String returns the string representation of the side.
func (s PositionSide) String() string {
	switch s {
	case PositionSideLong:
		return "long"
	case PositionSideShort:
		return "short"
	default:
		return "none"
	}
}

// PositionSnapshot is the per-cycle view of an open position.
// It is rebuilt fresh each cycle from exchange data and never cached.
type PositionSnapshot struct {
	Side  PositionSide
	Size  decimal.Decimal
	Entry decimal.Decimal
}

// RawPosition mirrors the position payload returned by exchange APIs.
// Fields are strings because that is how exchanges ship them.
type RawPosition struct {
	Side       string `json:"side"`
	Contracts  string `json:"contracts"`
	EntryPrice string `json:"entryPrice"`
}

// ClassifyPosition decodes raw exchange position data into a snapshot.
// A nil raw value means no position: side none, zero size, entry defaulted
// to the reference price. Malformed fields degrade to the same flat state
// instead of failing, since a missing position is a normal steady state.
// Side comes from the label in the raw data, never from the size sign.
func ClassifyPosition(raw *RawPosition, referencePrice decimal.Decimal) PositionSnapshot {
	flat := PositionSnapshot{
		Side:  PositionSideNone,
		Size:  decimal.Zero,
		Entry: referencePrice,
	}

	if raw == nil {
		return flat
	}

	var side PositionSide
	switch strings.ToLower(strings.TrimSpace(raw.Side)) {
	case "long", "buy":
		side = PositionSideLong
	case "short", "sell":
		side = PositionSideShort
	default:
		return flat
	}

	size, err := decimal.NewFromString(strings.TrimSpace(raw.Contracts))
	if err != nil || !size.IsPositive() {
		return flat
	}

	entry := decimal.Zero
	if raw.EntryPrice != "" {
		if parsed, err := decimal.NewFromString(strings.TrimSpace(raw.EntryPrice)); err == nil && !parsed.IsNegative() {
			entry = parsed
		}
	}
	if entry.IsZero() {
		entry = referencePrice
	}

	return PositionSnapshot{Side: side, Size: size, Entry: entry}
}

// IsOpen reports whether the snapshot carries an open position.
func (p PositionSnapshot) IsOpen() bool {
	return p.Side != PositionSideNone && p.Size.IsPositive()
}

// Package domain defines core data structures used throughout the trading engine.
package domain

import "strings"

// Asset identifies a tradable instrument, e.g. "BTC/USDC:USDC".
type Asset string

// Base returns the base coin symbol of the asset ("BTC" for "BTC/USDC:USDC").
func (a Asset) Base() string {
	s := string(a)
	if idx := strings.Index(s, "/"); idx > 0 {
		return s[:idx]
	}
	if idx := strings.Index(s, ":"); idx > 0 {
		return s[:idx]
	}
	return s
}

// Quote returns the quote coin symbol, or "" when the asset has no pair notation.
func (a Asset) Quote() string {
	s := string(a)
	if idx := strings.Index(s, "/"); idx > 0 {
		rest := s[idx+1:]
		if colon := strings.Index(rest, ":"); colon > 0 {
			return rest[:colon]
		}
		return rest
	}
	return ""
}

// Symbol returns the concatenated exchange symbol ("BTCUSDC").
func (a Asset) Symbol() string {
	quote := a.Quote()
	if quote == "" {
		return a.Base()
	}
	return a.Base() + quote
}

func (a Asset) String() string {
	return string(a)
}

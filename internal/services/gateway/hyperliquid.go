// Package gateway implements the exchange-facing collaborators: market
// data, open positions and order placement, one implementation per venue.
package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"github.com/voxtrade/riskpilot/internal/domain"
)

const hyperliquidCandleInterval = "1m"

// Hyperliquid trades perps through the Hyperliquid SDK.
type Hyperliquid struct {
	ex          *hyperliquid.Exchange
	info        *hyperliquid.Info
	accountAddr string
}

// NewHyperliquid wraps an SDK exchange as a gateway.
func NewHyperliquid(ex *hyperliquid.Exchange, accountAddr string) (*Hyperliquid, error) {
	if ex == nil {
		return nil, fmt.Errorf("hyperliquid exchange is nil")
	}
	return &Hyperliquid{ex: ex, info: ex.Info(), accountAddr: accountAddr}, nil
}

// LatestPrice returns the current mid price for the asset's base coin.
func (g *Hyperliquid) LatestPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	mids, err := g.info.AllMids(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetch hyperliquid mids")
	}

	mid, ok := mids[asset.Base()]
	if !ok || mid == "" {
		return decimal.Zero, errors.Wrapf(domain.ErrPriceNotAvailable, "no mid for %s", asset.Base())
	}
	return decimal.NewFromString(mid)
}

// RecentCloses returns up to limit most recent 1m candle closes.
func (g *Hyperliquid) RecentCloses(ctx context.Context, asset domain.Asset, limit int) ([]decimal.Decimal, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	endMs := time.Now().UnixMilli()
	startMs := endMs - int64(limit+2)*time.Minute.Milliseconds()

	candles, err := g.info.CandlesSnapshot(ctx, strings.ToUpper(asset.Base()), hyperliquidCandleInterval, startMs, endMs)
	if err != nil {
		return nil, errors.Wrap(err, "fetch hyperliquid candles")
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles from hyperliquid for %s", asset.Base())
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	closes := make([]decimal.Decimal, 0, len(candles))
	for i, c := range candles {
		closePx, err := decimal.NewFromString(c.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "parse close at %d", i)
		}
		closes = append(closes, closePx)
	}
	return closes, nil
}

// OpenPositions returns raw perp positions keyed by base coin.
func (g *Hyperliquid) OpenPositions(ctx context.Context) (map[string]domain.RawPosition, error) {
	st, err := g.info.UserState(ctx, g.accountAddr)
	if err != nil {
		return nil, errors.Wrap(err, "get hyperliquid user state")
	}

	positions := make(map[string]domain.RawPosition)
	for _, ap := range st.AssetPositions {
		szi := strings.TrimSpace(ap.Position.Szi)
		if szi == "" || szi == "0" || szi == "0.0" {
			continue
		}
		size, err := decimal.NewFromString(szi)
		if err != nil || size.IsZero() {
			continue
		}

		side := "long"
		if size.IsNegative() {
			side = "short"
			size = size.Abs()
		}

		entry := ""
		if ap.Position.EntryPx != nil {
			entry = *ap.Position.EntryPx
		}

		positions[strings.ToUpper(ap.Position.Coin)] = domain.RawPosition{
			Side:       side,
			Contracts:  size.String(),
			EntryPrice: entry,
		}
	}
	return positions, nil
}

// PlaceOrder submits an IOC limit order at the intent price, then attaches
// TP/SL trigger orders when the intent opens a position.
func (g *Hyperliquid) PlaceOrder(ctx context.Context, intent domain.OrderIntent, clientOrderID string) (domain.OrderAck, error) {
	size, _ := intent.Quantity.Round(8).Float64()
	price, _ := intent.Price.Round(8).Float64()

	reduceOnly := intent.Kind == domain.IntentCloseLong || intent.Kind == domain.IntentCloseShort
	cloid := cloidFromID(clientOrderID)

	req := hyperliquid.CreateOrderRequest{
		Coin:          intent.Asset.Base(),
		IsBuy:         intent.Side == domain.OrderSideBuy,
		Price:         price,
		Size:          size,
		ReduceOnly:    reduceOnly,
		ClientOrderID: &cloid,
		OrderType: hyperliquid.OrderType{
			Limit: &hyperliquid.LimitOrderType{Tif: hyperliquid.TifIoc},
		},
	}

	if _, err := g.ex.Order(ctx, req, nil); err != nil {
		return domain.OrderAck{}, errors.Wrap(err, "place hyperliquid order")
	}

	if !reduceOnly {
		if err := g.placeBrackets(ctx, intent, clientOrderID); err != nil {
			// the entry is already on the book; a failed bracket is logged
			// upstream, not treated as a failed order
			return domain.OrderAck{OrderID: cloid, Status: "filled_no_brackets"}, nil
		}
	}

	return domain.OrderAck{OrderID: cloid, Status: "ok"}, nil
}

func (g *Hyperliquid) placeBrackets(ctx context.Context, intent domain.OrderIntent, clientOrderID string) error {
	size, _ := intent.Quantity.Round(8).Float64()
	closeIsBuy := intent.Side == domain.OrderSideSell // closing reverses the entry side

	orders := make([]hyperliquid.CreateOrderRequest, 0, 2)

	addTrigger := func(px decimal.Decimal, tpsl hyperliquid.Tpsl) {
		if px.LessThanOrEqual(decimal.Zero) {
			return
		}
		priceF, _ := px.Round(8).Float64()
		cloid := cloidFromID(fmt.Sprintf("%s-%s", clientOrderID, tpsl))
		orders = append(orders, hyperliquid.CreateOrderRequest{
			Coin:       intent.Asset.Base(),
			IsBuy:      closeIsBuy,
			Price:      priceF,
			Size:       size,
			ReduceOnly: true,
			OrderType: hyperliquid.OrderType{
				Trigger: &hyperliquid.TriggerOrderType{
					TriggerPx: priceF,
					IsMarket:  true,
					Tpsl:      tpsl,
				},
			},
			ClientOrderID: &cloid,
		})
	}

	addTrigger(intent.TakeProfit, hyperliquid.TakeProfit)
	addTrigger(intent.StopLoss, hyperliquid.StopLoss)

	if len(orders) == 0 {
		return nil
	}

	_, err := g.ex.BulkOrders(ctx, orders, nil)
	return errors.Wrap(err, "place hyperliquid bracket orders")
}

// cloidFromID converts a free-form client ID into a valid Hyperliquid cloid
// (0x + 32 hex chars).
func cloidFromID(id string) string {
	s := strings.TrimSpace(id)
	if s == "" {
		s = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	sum := sha256.Sum256([]byte(s))
	return "0x" + hex.EncodeToString(sum[:16])
}

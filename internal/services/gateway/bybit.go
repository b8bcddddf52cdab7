package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// Bybit trades spot through the V5 API.
type Bybit struct {
	client *bybit.Client
}

func NewBybit(client *bybit.Client) (*Bybit, error) {
	if client == nil {
		return nil, fmt.Errorf("bybit client is nil")
	}
	return &Bybit{client: client}, nil
}

// LatestPrice returns the last traded price from the spot ticker.
func (g *Bybit) LatestPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(asset.Symbol())

	result, err := g.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetch bybit ticker")
	}
	if len(result.Result.Spot.List) == 0 {
		return decimal.Zero, errors.Wrapf(domain.ErrPriceNotAvailable, "empty bybit ticker for %s", asset.Symbol())
	}
	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}

// RecentCloses returns up to limit most recent 1m kline closes.
func (g *Bybit) RecentCloses(ctx context.Context, asset domain.Asset, limit int) ([]decimal.Decimal, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	klines, err := g.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: "spot",
		Symbol:   bybit.SymbolV5(asset.Symbol()),
		Interval: bybit.Interval1,
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "fetch bybit klines")
	}
	if len(klines.Result.List) == 0 {
		return nil, fmt.Errorf("no klines from bybit for %s", asset.Symbol())
	}

	// bybit returns newest first
	list := klines.Result.List
	closes := make([]decimal.Decimal, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		closePx, err := decimal.NewFromString(list[i].Close)
		if err != nil {
			return nil, errors.Wrapf(err, "parse close at %d", i)
		}
		closes = append(closes, closePx)
	}
	return closes, nil
}

// OpenPositions derives spot positions from unified wallet balances, the
// same way LatestPrice treats a held base coin as a long.
func (g *Bybit) OpenPositions(ctx context.Context) (map[string]domain.RawPosition, error) {
	res, err := g.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "get bybit wallet balance")
	}
	if len(res.Result.List) == 0 {
		return map[string]domain.RawPosition{}, nil
	}

	positions := make(map[string]domain.RawPosition)
	for _, coin := range res.Result.List[0].Coin {
		name := strings.ToUpper(string(coin.Coin))
		if _, stable := stableCoins[name]; stable {
			continue
		}

		balance, err := decimal.NewFromString(coin.WalletBalance)
		if err != nil || balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		positions[name] = domain.RawPosition{
			Side:      "long",
			Contracts: balance.String(),
		}
	}
	return positions, nil
}

// PlaceOrder submits a limit order with TP/SL attached when the intent opens
// a position.
func (g *Bybit) PlaceOrder(ctx context.Context, intent domain.OrderIntent, clientOrderID string) (domain.OrderAck, error) {
	side := bybit.SideBuy
	if intent.Side == domain.OrderSideSell {
		side = bybit.SideSell
	}

	price := intent.Price.String()
	param := bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(intent.Asset.Symbol()),
		Side:        side,
		OrderType:   bybit.OrderTypeLimit,
		Qty:         intent.Quantity.String(),
		Price:       &price,
		OrderLinkID: &clientOrderID,
	}

	if intent.Kind == domain.IntentOpenLong || intent.Kind == domain.IntentOpenShort {
		if intent.TakeProfit.GreaterThan(decimal.Zero) {
			tp := intent.TakeProfit.String()
			param.TakeProfit = &tp
		}
		if intent.StopLoss.GreaterThan(decimal.Zero) {
			sl := intent.StopLoss.String()
			param.StopLoss = &sl
		}
	}

	res, err := g.client.V5().Order().CreateOrder(param)
	if err != nil {
		return domain.OrderAck{}, errors.Wrap(err, "place bybit order")
	}

	return domain.OrderAck{OrderID: res.Result.OrderID, Status: "ok"}, nil
}

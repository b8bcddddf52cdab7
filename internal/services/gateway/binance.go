package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/voxtrade/riskpilot/internal/domain"
)

const binanceKlineInterval = "1m"

// stableCoins are treated as quote balances, never as positions.
var stableCoins = map[string]struct{}{
	"USDT": {}, "USDC": {}, "BUSD": {}, "FDUSD": {}, "DAI": {}, "USD": {},
}

// Binance trades spot through the official REST client.
type Binance struct {
	client *binance.Client
}

func NewBinance(client *binance.Client) (*Binance, error) {
	if client == nil {
		return nil, fmt.Errorf("binance client is nil")
	}
	return &Binance{client: client}, nil
}

// LatestPrice returns the last traded price for the asset's symbol.
func (g *Binance) LatestPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	prices, err := g.client.NewListPricesService().Symbol(asset.Symbol()).Do(ctx)
	if err != nil {
		if apiErr, ok := err.(*common.APIError); ok && apiErr.Code == -1121 {
			// invalid symbol
			return decimal.Zero, errors.Wrapf(domain.ErrPriceNotAvailable, "unknown binance symbol %s", asset.Symbol())
		}
		return decimal.Zero, errors.Wrap(err, "fetch binance price")
	}
	if len(prices) == 0 {
		return decimal.Zero, errors.Wrapf(domain.ErrPriceNotAvailable, "empty binance price response for %s", asset.Symbol())
	}
	return decimal.NewFromString(prices[0].Price)
}

// RecentCloses returns up to limit most recent 1m kline closes.
func (g *Binance) RecentCloses(ctx context.Context, asset domain.Asset, limit int) ([]decimal.Decimal, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	klines, err := g.client.NewKlinesService().
		Symbol(asset.Symbol()).
		Interval(binanceKlineInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch binance klines")
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("no klines from binance for %s", asset.Symbol())
	}

	closes := make([]decimal.Decimal, 0, len(klines))
	for i, k := range klines {
		closePx, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "parse close at %d", i)
		}
		closes = append(closes, closePx)
	}
	return closes, nil
}

// OpenPositions derives spot positions from non-zero free balances. A held
// base coin is a long; entry price is unknown at the balance level, so it is
// left empty and the classifier falls back to the current price.
func (g *Binance) OpenPositions(ctx context.Context) (map[string]domain.RawPosition, error) {
	account, err := g.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get binance account")
	}

	positions := make(map[string]domain.RawPosition)
	for _, balance := range account.Balances {
		coin := strings.ToUpper(balance.Asset)
		if _, stable := stableCoins[coin]; stable {
			continue
		}

		free, err := decimal.NewFromString(balance.Free)
		if err != nil || free.LessThanOrEqual(decimal.Zero) {
			continue
		}

		positions[coin] = domain.RawPosition{
			Side:      "long",
			Contracts: free.String(),
		}
	}
	return positions, nil
}

// PlaceOrder submits a limit order, then protective TP/SL orders when the
// intent opens a position.
func (g *Binance) PlaceOrder(ctx context.Context, intent domain.OrderIntent, clientOrderID string) (domain.OrderAck, error) {
	side := binance.SideTypeBuy
	if intent.Side == domain.OrderSideSell {
		side = binance.SideTypeSell
	}

	order, err := g.client.NewCreateOrderService().
		Symbol(intent.Asset.Symbol()).
		Side(side).
		Type(binance.OrderTypeLimit).
		TimeInForce(binance.TimeInForceTypeGTC).
		Quantity(intent.Quantity.String()).
		Price(intent.Price.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return domain.OrderAck{}, errors.Wrap(err, "place binance order")
	}

	ack := domain.OrderAck{
		OrderID: fmt.Sprintf("%d", order.OrderID),
		Status:  string(order.Status),
	}

	if intent.Kind == domain.IntentOpenLong {
		if err := g.placeProtectiveOrders(ctx, intent, clientOrderID); err != nil {
			ack.Status = "filled_no_brackets"
			return ack, nil
		}
	}

	return ack, nil
}

func (g *Binance) placeProtectiveOrders(ctx context.Context, intent domain.OrderIntent, clientOrderID string) error {
	place := func(px decimal.Decimal, orderType binance.OrderType, suffix string) error {
		if px.LessThanOrEqual(decimal.Zero) {
			return nil
		}
		_, err := g.client.NewCreateOrderService().
			Symbol(intent.Asset.Symbol()).
			Side(binance.SideTypeSell).
			Type(orderType).
			Quantity(intent.Quantity.String()).
			StopPrice(px.String()).
			NewClientOrderID(clientOrderID + suffix).
			Do(ctx)
		return errors.Wrapf(err, "place binance %s order", orderType)
	}

	if err := place(intent.TakeProfit, binance.OrderTypeTakeProfit, "-tp"); err != nil {
		return err
	}
	return place(intent.StopLoss, binance.OrderTypeStopLoss, "-sl")
}

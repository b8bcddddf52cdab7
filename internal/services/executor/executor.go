// Package executor turns resolved order intents into exchange calls.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// OrderGateway places orders on the exchange. Calls are at-least-once: an
// ambiguous network failure may leave a duplicate order behind, and callers
// must tolerate the occasional duplicate fill.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, intent domain.OrderIntent, clientOrderID string) (domain.OrderAck, error)
}

type tradeLog interface {
	Append(order domain.ExecutedOrder) error
}

// Executor submits order intents one by one. A failed asset is logged and
// skipped; it never aborts the rest of the batch. Failed orders are not
// retried within the cycle; the next scheduled cycle re-evaluates the asset.
type Executor struct {
	gateway OrderGateway
	log     tradeLog
	logger  *zap.Logger
	now     func() time.Time
}

// New creates an executor writing successful orders to the given trade log.
func New(gateway OrderGateway, log tradeLog, logger *zap.Logger) *Executor {
	return &Executor{
		gateway: gateway,
		log:     log,
		logger:  logger,
		now:     time.Now,
	}
}

// Execute places a single order and records the acknowledgement.
func (e *Executor) Execute(ctx context.Context, intent domain.OrderIntent) (*domain.ExecutedOrder, error) {
	clientOrderID := uuid.NewString()

	ack, err := e.gateway.PlaceOrder(ctx, intent, clientOrderID)
	if err != nil {
		return nil, errors.Wrapf(err, "place order for %s", intent.Asset)
	}

	executed := domain.ExecutedOrder{
		Intent:        intent,
		Ack:           ack,
		ClientOrderID: clientOrderID,
		ExecutedAt:    e.now().UTC(),
	}

	if err := e.log.Append(executed); err != nil {
		// the order is already on the exchange; a journaling failure is
		// logged, not propagated as an execution failure
		e.logger.Error("failed to journal executed order",
			zap.String("asset", string(intent.Asset)),
			zap.String("client_order_id", clientOrderID),
			zap.Error(err))
	}

	e.logger.Info("order executed",
		zap.String("asset", string(intent.Asset)),
		zap.String("kind", intent.Kind.String()),
		zap.String("side", intent.Side.String()),
		zap.String("quantity", intent.Quantity.String()),
		zap.String("price", intent.Price.String()),
		zap.String("order_id", ack.OrderID))

	return &executed, nil
}

// ExecuteBatch places every intent, isolating failures per asset.
func (e *Executor) ExecuteBatch(ctx context.Context, intents []domain.OrderIntent) []domain.ExecutedOrder {
	executed := make([]domain.ExecutedOrder, 0, len(intents))
	for _, intent := range intents {
		order, err := e.Execute(ctx, intent)
		if err != nil {
			e.logger.Error("order failed, skipping asset until next cycle",
				zap.String("asset", string(intent.Asset)),
				zap.String("kind", intent.Kind.String()),
				zap.Error(err))
			continue
		}
		executed = append(executed, *order)
	}
	return executed
}

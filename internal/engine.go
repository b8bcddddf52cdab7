package internal

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
	"github.com/voxtrade/riskpilot/internal/services/planner"
	"github.com/voxtrade/riskpilot/internal/services/watchlist"
)

// DefaultCycleInterval is how often the loop re-evaluates the watchlist.
const DefaultCycleInterval = 20 * time.Second

// Lifecycle status strings returned by Start and Stop.
const (
	StatusStarted        = "Trading started"
	StatusAlreadyRunning = "Trading already running"
	StatusStopped        = "Trading stopped"
	StatusNotRunning     = "Trading is not running"
)

// MarketData supplies current prices.
type MarketData interface {
	LatestPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error)
}

// PositionProvider reports open positions keyed by base coin.
type PositionProvider interface {
	OpenPositions(ctx context.Context) (map[string]domain.RawPosition, error)
}

// RiskScorer scores the watchlist batch.
type RiskScorer interface {
	Score(ctx context.Context, assets []domain.Asset) (map[domain.Asset]domain.RiskScore, error)
}

// DecisionSource converts scores into trade decisions.
type DecisionSource interface {
	Decide(ctx context.Context, scores map[domain.Asset]domain.RiskScore) (domain.DecisionSet, error)
}

// OrderExecutor submits resolved intents, isolating failures per asset.
type OrderExecutor interface {
	ExecuteBatch(ctx context.Context, intents []domain.OrderIntent) []domain.ExecutedOrder
}

// Engine drives the periodic trading cycle: snapshot the watchlist, score
// it, resolve decisions into order intents and execute them. One failed
// asset never aborts the batch; one failed cycle never stops the loop.
type Engine struct {
	market      MarketData
	positions   PositionProvider
	scorer      RiskScorer
	decisions   DecisionSource
	executor    OrderExecutor
	watchlist   *watchlist.Watchlist
	minNotional decimal.Decimal
	interval    time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewEngine wires the trading loop. A non-positive interval falls back to
// DefaultCycleInterval.
func NewEngine(
	market MarketData,
	positions PositionProvider,
	scorer RiskScorer,
	decisions DecisionSource,
	executor OrderExecutor,
	wl *watchlist.Watchlist,
	minNotional decimal.Decimal,
	interval time.Duration,
	logger *zap.Logger,
) *Engine {
	if interval <= 0 {
		interval = DefaultCycleInterval
	}
	return &Engine{
		market:      market,
		positions:   positions,
		scorer:      scorer,
		decisions:   decisions,
		executor:    executor,
		watchlist:   wl,
		minNotional: minNotional,
		interval:    interval,
		logger:      logger,
	}
}

// Watchlist exposes the live watchlist for the serving layer.
func (e *Engine) Watchlist() *watchlist.Watchlist {
	return e.watchlist
}

// Start launches the trading loop. Calling it on a running engine is a
// no-op that reports the current state.
func (e *Engine) Start() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return StatusAlreadyRunning
	}

	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.run(e.stop, e.done)

	e.logger.Info("trading loop started", zap.Duration("interval", e.interval))
	return StatusStarted
}

// Stop signals the loop and waits for the in-flight cycle to finish. The
// loop only checks the signal between cycles, so a running cycle completes.
func (e *Engine) Stop() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return StatusNotRunning
	}

	close(e.stop)
	<-e.done
	e.running = false

	e.logger.Info("trading loop stopped")
	return StatusStopped
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.cycle(context.Background())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.cycle(context.Background())
		}
	}
}

// cycle evaluates one pass over a stable snapshot of the watchlist.
// Watchlist mutations during the pass apply from the next cycle.
func (e *Engine) cycle(ctx context.Context) {
	assets := e.watchlist.Snapshot()
	if len(assets) == 0 {
		e.logger.Debug("watchlist empty, nothing to do")
		return
	}

	openPositions, err := e.positions.OpenPositions(ctx)
	if err != nil {
		e.logger.Error("failed to fetch open positions, skipping cycle", zap.Error(err))
		return
	}

	scores, err := e.scorer.Score(ctx, assets)
	if err != nil {
		e.logger.Error("risk scoring failed, skipping cycle", zap.Error(err))
		return
	}

	set, err := e.decisions.Decide(ctx, scores)
	if err != nil {
		e.logger.Error("decision source failed, skipping cycle", zap.Error(err))
		return
	}

	decisions := set.Structured
	if !set.IsStructured() {
		e.logger.Warn("structured decisions unavailable, applying keyword fallback to raw response",
			zap.Int("response_len", len(set.Raw)))
		decisions = domain.HeuristicDecisions(set.Raw, assets)
	}

	intents := e.resolveIntents(ctx, assets, decisions, openPositions)
	if len(intents) == 0 {
		e.logger.Debug("cycle complete, no orders to place", zap.Int("assets", len(assets)))
		return
	}

	executed := e.executor.ExecuteBatch(ctx, intents)
	e.logger.Info("cycle complete",
		zap.Int("assets", len(assets)),
		zap.Int("intents", len(intents)),
		zap.Int("executed", len(executed)))
}

// resolveIntents walks the snapshot in order. Decisions for assets outside
// the snapshot are ignored; an asset with no decision holds.
func (e *Engine) resolveIntents(
	ctx context.Context,
	assets []domain.Asset,
	decisions map[domain.Asset]domain.TradeDecision,
	openPositions map[string]domain.RawPosition,
) []domain.OrderIntent {
	watched := make(map[domain.Asset]struct{}, len(assets))
	for _, asset := range assets {
		watched[asset] = struct{}{}
	}
	for asset := range decisions {
		if _, ok := watched[asset]; !ok {
			e.logger.Debug("decision for unwatched asset skipped", zap.String("asset", string(asset)))
		}
	}

	intents := make([]domain.OrderIntent, 0, len(assets))
	for _, asset := range assets {
		decision := decisions[asset]
		if decision == domain.DecisionHold {
			continue
		}

		price, err := e.market.LatestPrice(ctx, asset)
		if err != nil {
			if errors.Is(err, domain.ErrPriceNotAvailable) {
				e.logger.Warn("no price for asset, skipping until next cycle",
					zap.String("asset", string(asset)))
			} else {
				e.logger.Error("price fetch failed, skipping asset",
					zap.String("asset", string(asset)), zap.Error(err))
			}
			continue
		}

		var raw *domain.RawPosition
		if pos, ok := openPositions[asset.Base()]; ok {
			raw = &pos
		}
		position := domain.ClassifyPosition(raw, price)

		intent, err := planner.Resolve(asset, decision, position, price, e.minNotional)
		if err != nil {
			e.logger.Error("failed to resolve trade plan, skipping asset",
				zap.String("asset", string(asset)), zap.Error(err))
			continue
		}
		if intent == nil {
			continue
		}
		intents = append(intents, *intent)
	}
	return intents
}

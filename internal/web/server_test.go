package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voxtrade/riskpilot/internal/domain"
	"github.com/voxtrade/riskpilot/internal/services/watchlist"
	"github.com/voxtrade/riskpilot/internal/storage/tradelog"
)

type fakeEngine struct {
	running bool
	wl      *watchlist.Watchlist
}

func (f *fakeEngine) Start() string {
	if f.running {
		return "Trading already running"
	}
	f.running = true
	return "Trading started"
}

func (f *fakeEngine) Stop() string {
	if !f.running {
		return "Trading is not running"
	}
	f.running = false
	return "Trading stopped"
}

func (f *fakeEngine) Running() bool                   { return f.running }
func (f *fakeEngine) Watchlist() *watchlist.Watchlist { return f.wl }

type fakePositions struct {
	positions map[string]domain.RawPosition
}

func (f *fakePositions) OpenPositions(context.Context) (map[string]domain.RawPosition, error) {
	return f.positions, nil
}

func newTestServer(t *testing.T) (*Server, *fakeEngine, *tradelog.Log) {
	t.Helper()
	engine := &fakeEngine{wl: watchlist.New("BTC/USDC:USDC")}
	trades := tradelog.New(nil)
	positions := &fakePositions{positions: map[string]domain.RawPosition{
		"BTC": {Side: "long", Contracts: "0.5", EntryPrice: "60000"},
	}}
	return NewServer(":0", engine, trades, positions, zap.NewNop()), engine, trades
}

func TestLifecycleEndpoints(t *testing.T) {
	server, engine, _ := newTestServer(t)
	mux := server.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Trading started")
	assert.True(t, engine.running)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/start", nil))
	assert.Contains(t, rec.Body.String(), "already running")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Contains(t, rec.Body.String(), `"running"`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stop", nil))
	assert.Contains(t, rec.Body.String(), "Trading stopped")
	assert.False(t, engine.running)
}

func TestWatchlistEndpoints(t *testing.T) {
	server, engine, _ := newTestServer(t)
	mux := server.routes()

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"asset": "SOL/USDC:USDC"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/watchlist/add", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, engine.wl.Contains("SOL/USDC:USDC"))

	rec = httptest.NewRecorder()
	body = strings.NewReader(`{"asset": "BTC/USDC:USDC"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/watchlist/remove", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, engine.wl.Contains("BTC/USDC:USDC"))

	rec = httptest.NewRecorder()
	body = strings.NewReader(`{"asset": "DOGE/USDC:USDC"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/watchlist/remove", body))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/watchlist/add", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradesEndpoint(t *testing.T) {
	server, _, trades := newTestServer(t)
	mux := server.routes()

	require.NoError(t, trades.Append(domain.ExecutedOrder{
		Intent: domain.OrderIntent{
			Asset:    "BTC/USDC:USDC",
			Side:     domain.OrderSideBuy,
			Quantity: decimal.NewFromFloat(0.001),
			Price:    decimal.NewFromInt(60000),
			Kind:     domain.IntentOpenLong,
		},
		Ack:           domain.OrderAck{OrderID: "abc123", Status: "ok"},
		ClientOrderID: "client-1",
		ExecutedAt:    time.Now().UTC(),
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trades", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "abc123")
	assert.Contains(t, rec.Body.String(), "BTC/USDC:USDC")
}

func TestOpenPositionsEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	mux := server.routes()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open-positions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"long"`)
	assert.Contains(t, rec.Body.String(), "60000")
}

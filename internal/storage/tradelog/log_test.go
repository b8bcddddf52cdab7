package tradelog

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxtrade/riskpilot/internal/domain"
)

func executedOrder(asset domain.Asset) domain.ExecutedOrder {
	return domain.ExecutedOrder{
		Intent: domain.OrderIntent{
			Asset:    asset,
			Side:     domain.OrderSideBuy,
			Quantity: decimal.NewFromFloat(0.1),
			Price:    decimal.NewFromInt(100),
			Kind:     domain.IntentOpenLong,
		},
		Ack:           domain.OrderAck{OrderID: "1", Status: "ok"},
		ClientOrderID: "client-1",
		ExecutedAt:    time.Now().UTC(),
	}
}

func TestLogAppendAndRead(t *testing.T) {
	log := New(nil)

	require.NoError(t, log.Append(executedOrder("BTC/USDC:USDC")))
	require.NoError(t, log.Append(executedOrder("ETH/USDC:USDC")))

	all := log.All()
	require.Len(t, all, 2)
	assert.Equal(t, domain.Asset("BTC/USDC:USDC"), all[0].Intent.Asset)
	assert.Equal(t, domain.Asset("ETH/USDC:USDC"), all[1].Intent.Asset)
}

func TestLogAfter(t *testing.T) {
	log := New(nil)

	for _, asset := range []domain.Asset{"A/USDC:USDC", "B/USDC:USDC", "C/USDC:USDC"} {
		require.NoError(t, log.Append(executedOrder(asset)))
	}

	records := log.After(1)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(2), records[0].Index)
	assert.Equal(t, uint64(3), records[1].Index)

	assert.Empty(t, log.After(3))
	assert.Len(t, log.After(0), 3)
}

type failingJournal struct{}

func (failingJournal) Append(domain.ExecutedOrder) error {
	return errors.New("disk full")
}

func TestJournalFailureDoesNotDropRecord(t *testing.T) {
	log := New(failingJournal{})

	err := log.Append(executedOrder("BTC/USDC:USDC"))
	assert.Error(t, err, "journal failure must surface to the caller")
	assert.Equal(t, 1, log.Len(), "in-memory append is authoritative")
}

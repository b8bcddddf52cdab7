package watchlist

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxtrade/riskpilot/internal/domain"
)

func TestWatchlistAddRemove(t *testing.T) {
	w := New("BTC/USDC:USDC")

	assert.True(t, w.Contains("BTC/USDC:USDC"))
	assert.False(t, w.Add("BTC/USDC:USDC"), "duplicate add must be a no-op")

	assert.True(t, w.Add("ETH/USDC:USDC"))
	assert.Equal(t, 2, w.Len())

	assert.True(t, w.Remove("BTC/USDC:USDC"))
	assert.False(t, w.Remove("BTC/USDC:USDC"), "double remove must be a no-op")
	assert.False(t, w.Contains("BTC/USDC:USDC"))
}

func TestSnapshotIsStable(t *testing.T) {
	w := New("BTC/USDC:USDC", "ETH/USDC:USDC")

	snapshot := w.Snapshot()
	require.Equal(t, []domain.Asset{"BTC/USDC:USDC", "ETH/USDC:USDC"}, snapshot)

	// mutations after the snapshot must not leak into it
	w.Remove("BTC/USDC:USDC")
	w.Add("SOL/USDC:USDC")

	assert.Equal(t, []domain.Asset{"BTC/USDC:USDC", "ETH/USDC:USDC"}, snapshot)
	assert.Equal(t, []domain.Asset{"ETH/USDC:USDC", "SOL/USDC:USDC"}, w.Snapshot())
}

func TestConcurrentMutationDoesNotCorruptSnapshots(t *testing.T) {
	w := New("BTC/USDC:USDC", "ETH/USDC:USDC", "SOL/USDC:USDC")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// writer churns membership the way the serving layer would mid-cycle
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			asset := domain.Asset(fmt.Sprintf("TOK%d/USDC:USDC", i%7))
			if i%2 == 0 {
				w.Add(asset)
			} else {
				w.Remove(asset)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		snapshot := w.Snapshot()
		seen := make(map[domain.Asset]struct{}, len(snapshot))
		for _, asset := range snapshot {
			_, dup := seen[asset]
			require.False(t, dup, "snapshot contains duplicate %s", asset)
			seen[asset] = struct{}{}
		}
	}

	close(stop)
	wg.Wait()
}

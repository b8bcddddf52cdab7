// Package watchlist holds the set of assets the engine is authorized to trade.
package watchlist

import (
	"sort"
	"sync"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// Watchlist is a concurrency-safe asset set. The trading loop reads a stable
// snapshot once per cycle while the serving layer may add or remove assets
// at any time.
type Watchlist struct {
	mu     sync.RWMutex
	assets map[domain.Asset]struct{}
}

// New creates a watchlist seeded with the given assets.
func New(assets ...domain.Asset) *Watchlist {
	w := &Watchlist{assets: make(map[domain.Asset]struct{}, len(assets))}
	for _, asset := range assets {
		w.assets[asset] = struct{}{}
	}
	return w
}

// Add inserts an asset. Returns false when it was already present.
func (w *Watchlist) Add(asset domain.Asset) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.assets[asset]; ok {
		return false
	}
	w.assets[asset] = struct{}{}
	return true
}

// Remove deletes an asset. Returns false when it was not present.
func (w *Watchlist) Remove(asset domain.Asset) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.assets[asset]; !ok {
		return false
	}
	delete(w.assets, asset)
	return true
}

// Contains reports membership.
func (w *Watchlist) Contains(asset domain.Asset) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, ok := w.assets[asset]
	return ok
}

// Snapshot returns a stable copy of the current membership, sorted for
// deterministic iteration. Later mutations do not affect the returned slice.
func (w *Watchlist) Snapshot() []domain.Asset {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snapshot := make([]domain.Asset, 0, len(w.assets))
	for asset := range w.assets {
		snapshot = append(snapshot, asset)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i] < snapshot[j] })
	return snapshot
}

// Len returns the current number of watched assets.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.assets)
}

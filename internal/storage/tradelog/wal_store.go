package tradelog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/voxtrade/riskpilot/internal/domain"
)

const (
	// DefaultDir is where the executed-order journal lives unless overridden.
	DefaultDir = "./wal/trades"

	segmentThreshold = 1000
	maxSegments      = 100

	tradeKeyPrefix = "trade_"
)

// WALStore persists executed orders in an append-only WAL so the serving
// layer can replay the trade history across restarts.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed executed-order journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "trade_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one executed order to the WAL.
func (s *WALStore) Append(order domain.ExecutedOrder) error {
	if s == nil || s.wal == nil {
		return errors.New("trade store is not initialized")
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "marshal executed order")
	}

	key := fmt.Sprintf("%s%s", tradeKeyPrefix, order.Intent.Asset)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// OrdersAfter returns executed orders written after the given WAL index.
func (s *WALStore) OrdersAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		_, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}

		var order domain.ExecutedOrder
		if err := json.Unmarshal(payload, &order); err != nil {
			return nil, errors.Wrap(err, "decode executed order")
		}
		records = append(records, Record{Index: idx, Order: order})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("trade store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}

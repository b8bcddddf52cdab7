// Package tradelog keeps the append-only record of executed orders.
package tradelog

import (
	"sync"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// Journal is an optional durable sink for executed orders. The in-memory
// log is authoritative for the process lifetime; the journal exists so the
// serving layer can survive restarts.
type Journal interface {
	Append(order domain.ExecutedOrder) error
}

// Record is an executed order with its position in the log.
type Record struct {
	Index uint64               `json:"index"`
	Order domain.ExecutedOrder `json:"order"`
}

// Log is the process-lifetime trade log. Appends come from the trading
// loop; reads come from the serving layer at any time.
type Log struct {
	mu      sync.RWMutex
	records []Record
	next    uint64
	journal Journal
}

// New creates a trade log. journal may be nil for a purely in-memory log.
func New(journal Journal) *Log {
	return &Log{journal: journal}
}

// Append records an executed order. A journal failure does not reject the
// in-memory append; durability is best effort and the error is returned so
// the caller can log it.
func (l *Log) Append(order domain.ExecutedOrder) error {
	l.mu.Lock()
	l.next++
	l.records = append(l.records, Record{Index: l.next, Order: order})
	l.mu.Unlock()

	if l.journal == nil {
		return nil
	}
	return l.journal.Append(order)
}

// All returns a copy of every executed order in append order.
func (l *Log) All() []domain.ExecutedOrder {
	l.mu.RLock()
	defer l.mu.RUnlock()

	orders := make([]domain.ExecutedOrder, len(l.records))
	for i, record := range l.records {
		orders[i] = record.Order
	}
	return orders
}

// After returns records appended after the given index, for incremental
// consumers such as the SSE stream.
func (l *Log) After(index uint64) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= l.next {
		return nil
	}
	start := len(l.records)
	for i, record := range l.records {
		if record.Index > index {
			start = i
			break
		}
	}
	out := make([]Record, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Len returns the number of executed orders recorded so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.records)
}

package app

import (
	"sync"

	"github.com/bft-labs/lumberjack/internal/domain"
)

// pendingQueue holds records waiting for the next flush, in enqueue order.
// The lock is held only for the append or the swap, never for I/O.
type pendingQueue struct {
	mu      sync.Mutex
	records []domain.Record
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{}
}

// Append adds r to the tail and returns the queue length after the append.
func (q *pendingQueue) Append(r domain.Record) int {
	q.mu.Lock()
	q.records = append(q.records, r)
	n := len(q.records)
	q.mu.Unlock()
	return n
}

// Swap takes the whole queue, leaving an empty one for producers.
func (q *pendingQueue) Swap() []domain.Record {
	q.mu.Lock()
	records := q.records
	q.records = nil
	q.mu.Unlock()
	return records
}

// Len returns the number of queued records.
func (q *pendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

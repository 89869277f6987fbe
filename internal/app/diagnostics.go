package app

import "sync"

// DefaultExceptionLimit is the number of captured loop errors kept by default.
const DefaultExceptionLimit = 100

// Diagnostics is an append-only log of errors captured by the dispatcher loop.
// Only the most recent limit entries are retained; Total keeps counting.
type Diagnostics struct {
	mu      sync.RWMutex
	limit   int
	entries []error
	total   uint64
}

// NewDiagnostics creates a log keeping at most limit entries.
// A non-positive limit selects DefaultExceptionLimit.
func NewDiagnostics(limit int) *Diagnostics {
	if limit <= 0 {
		limit = DefaultExceptionLimit
	}
	return &Diagnostics{limit: limit}
}

// Record appends err, evicting the oldest entry once the limit is reached.
func (d *Diagnostics) Record(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.entries) == d.limit {
		copy(d.entries, d.entries[1:])
		d.entries = d.entries[:len(d.entries)-1]
	}
	d.entries = append(d.entries, err)
	d.total++
}

// Last returns the most recently captured error, or nil.
func (d *Diagnostics) Last() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.entries) == 0 {
		return nil
	}
	return d.entries[len(d.entries)-1]
}

// All returns a copy of the retained errors, oldest first.
func (d *Diagnostics) All() []error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]error(nil), d.entries...)
}

// Total returns how many errors were captured since creation.
func (d *Diagnostics) Total() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.total
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

// DefaultInterval is the flush period used when none is configured.
const DefaultInterval = 30 * time.Second

// DispatcherConfig contains configuration for the dispatcher loop.
type DispatcherConfig struct {
	// IndexPrefix is prepended to every collection suffix.
	IndexPrefix string

	// Interval is the maximum time between two flushes.
	Interval time.Duration

	// MaxQueueLength triggers a flush once the queue reaches this length.
	// Zero or negative disables the size trigger.
	MaxQueueLength int

	// FallbackLogFile receives one JSON line per document when a bulk write
	// fails on transport.
	FallbackLogFile string

	// ExceptionLimit bounds the number of captured loop errors.
	ExceptionLimit int
}

// Phase is the state of the background loop.
type Phase int32

const (
	PhaseWaiting Phase = iota
	PhaseFlushing
	PhaseTerminated
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "Waiting"
	case PhaseFlushing:
		return "Flushing"
	case PhaseTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// FlushEventEmitter is notified about queue activity and flush outcomes.
// OnEnqueue runs on the producer's goroutine, everything else on the
// dispatcher goroutine. Implementations must return quickly.
type FlushEventEmitter interface {
	OnEnqueue(queueLen int)
	OnFlushSuccess(records int, duration time.Duration)
	OnTransportFailure(err error, records int)
	OnFallbackWritten(records int)
	OnRecordsLost(err error, records int)
	OnPostprocessorError(err error)
	OnUnexpectedError(err error)
}

// Dispatcher queues records from any number of producers and writes them in
// bulk from a single background goroutine.
type Dispatcher struct {
	prefix       string
	fallbackPath string

	interval       atomic.Int64
	maxQueueLength atomic.Int64

	queue      *pendingQueue
	wake       *wakeSignal
	running    atomic.Bool
	phase      atomic.Int32
	cycles     atomic.Uint64
	exceptions *Diagnostics

	writer  ports.BulkWriter
	opener  ports.FileOpener
	logger  ports.Logger
	emitter FlushEventEmitter
}

// NewDispatcher creates a dispatcher with the given dependencies.
// The dispatcher starts in the running state; call Run to start the loop.
func NewDispatcher(
	config DispatcherConfig,
	writer ports.BulkWriter,
	opener ports.FileOpener,
	logger ports.Logger,
	emitter FlushEventEmitter,
) *Dispatcher {
	d := &Dispatcher{
		prefix:       config.IndexPrefix,
		fallbackPath: config.FallbackLogFile,
		queue:        newPendingQueue(),
		wake:         newWakeSignal(),
		exceptions:   NewDiagnostics(config.ExceptionLimit),
		writer:       writer,
		opener:       opener,
		logger:       logger,
		emitter:      emitter,
	}
	d.SetPolicy(config.Interval, config.MaxQueueLength)
	d.running.Store(true)
	return d
}

// SetPolicy changes the flush interval and size trigger.
// The new interval applies from the next wait.
func (d *Dispatcher) SetPolicy(interval time.Duration, maxQueueLength int) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	d.interval.Store(int64(interval))
	d.maxQueueLength.Store(int64(maxQueueLength))
}

// Interval returns the current flush interval.
func (d *Dispatcher) Interval() time.Duration {
	return time.Duration(d.interval.Load())
}

// MaxQueueLength returns the current size trigger, 0 when disabled.
func (d *Dispatcher) MaxQueueLength() int {
	if n := d.maxQueueLength.Load(); n > 0 {
		return int(n)
	}
	return 0
}

// Enqueue queues a document for indexing into prefix+suffix.
// It never blocks on flush work. When the queue reaches MaxQueueLength a
// flush is signalled before Enqueue returns.
func (d *Dispatcher) Enqueue(suffix, typ string, body domain.Body, postprocessors ...domain.Postprocessor) {
	record := domain.NewRecord(d.prefix+suffix, typ, body, postprocessors)
	n := d.queue.Append(record)

	d.logger.Debug("queued record",
		ports.Int("queue_len", n),
		ports.String("type", typ),
	)
	if d.emitter != nil {
		d.emitter.OnEnqueue(n)
	}

	if limit := d.maxQueueLength.Load(); limit > 0 && int64(n) >= limit {
		d.logger.Debug("hit max queue length", ports.Int("max_queue_length", int(limit)))
		d.TriggerFlush()
	}
}

// TriggerFlush interrupts the loop's wait so it flushes on its next turn.
// It does not wait for the flush to happen.
func (d *Dispatcher) TriggerFlush() {
	d.wake.Set()
}

// Shutdown asks the loop to drain the queue and terminate.
func (d *Dispatcher) Shutdown() {
	d.running.Store(false)
	d.TriggerFlush()
}

// Resume marks the dispatcher as running again before a new Run.
func (d *Dispatcher) Resume() {
	d.running.Store(true)
}

// Running reports whether shutdown has not been requested.
func (d *Dispatcher) Running() bool {
	return d.running.Load()
}

// QueueLen returns the number of records waiting for the next flush.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Phase returns the current loop phase.
func (d *Dispatcher) Phase() Phase {
	return Phase(d.phase.Load())
}

// Cycles returns the number of completed flush cycles.
func (d *Dispatcher) Cycles() uint64 {
	return d.cycles.Load()
}

// LastException returns the most recent error captured by the loop, or nil.
func (d *Dispatcher) LastException() error {
	return d.exceptions.Last()
}

// Exceptions returns the captured loop errors, oldest first.
func (d *Dispatcher) Exceptions() []error {
	return d.exceptions.All()
}

// Run executes the flush loop: flush, then wait for the interval or a
// trigger, and repeat. It returns once shutdown was requested and a flush
// found the queue empty. Canceling ctx counts as a shutdown request; flushes
// already in progress are not interrupted by it.
func (d *Dispatcher) Run(ctx context.Context) {
	flushCtx := context.WithoutCancel(ctx)
	done := ctx.Done()

	for {
		d.phase.Store(int32(PhaseFlushing))
		d.safeFlush(flushCtx)
		d.cycles.Add(1)

		if !d.running.Load() && d.queue.Len() == 0 {
			d.phase.Store(int32(PhaseTerminated))
			d.logger.Debug("dispatcher loop terminated")
			return
		}

		d.phase.Store(int32(PhaseWaiting))
		interval := d.Interval()
		timer := time.NewTimer(interval)

		select {
		case <-d.wake.C():
			d.logger.Debug("flushing on external trigger")
		case <-timer.C:
			d.logger.Debug("flushing after timeout", ports.Duration("interval", interval))
		case <-done:
			d.logger.Debug("context canceled, draining queue")
			d.running.Store(false)
			done = nil
		}
		timer.Stop()
	}
}

// safeFlush runs one flush cycle. Unexpected errors and panics are captured
// so the loop keeps running.
func (d *Dispatcher) safeFlush(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.captureUnexpected(&domain.PanicError{Value: r})
		}
	}()

	if err := d.flush(ctx); err != nil {
		d.captureUnexpected(err)
	}
}

func (d *Dispatcher) captureUnexpected(err error) {
	d.logger.Error("unexpected error in dispatcher loop, continuing", ports.Err(err))
	d.exceptions.Record(err)
	if d.emitter != nil {
		d.emitter.OnUnexpectedError(err)
	}
}

// flush performs one cycle: swap, postprocess, bulk write, and fall back to
// the file on transport failure. Only unexpected errors are returned.
func (d *Dispatcher) flush(ctx context.Context) error {
	records := d.queue.Swap()
	if len(records) == 0 {
		return nil
	}

	actions := make([]domain.Action, 0, len(records))
	for _, r := range records {
		actions = append(actions, d.postprocess(r))
	}

	start := time.Now()
	err := d.writer.Bulk(ctx, actions)
	if err == nil {
		d.logger.Debug("flushed records",
			ports.Int("records", len(actions)),
			ports.Duration("duration", time.Since(start)),
		)
		if d.emitter != nil {
			d.emitter.OnFlushSuccess(len(actions), time.Since(start))
		}
		return nil
	}

	if !domain.IsTransport(err) {
		return fmt.Errorf("bulk write of %d records: %w", len(actions), err)
	}

	d.logger.Error("bulk write failed, falling back to file",
		ports.Err(err),
		ports.Int("records", len(actions)),
		ports.String("path", d.fallbackPath),
	)
	if d.emitter != nil {
		d.emitter.OnTransportFailure(err, len(actions))
	}

	if ferr := d.writeFallback(actions); ferr != nil {
		d.logger.Error("fallback write failed, records lost",
			ports.Err(ferr),
			ports.Int("lost", len(actions)),
		)
		if d.emitter != nil {
			d.emitter.OnRecordsLost(ferr, len(actions))
		}
		return nil
	}

	d.logger.Info("wrote records to fallback file",
		ports.Int("records", len(actions)),
		ports.String("path", d.fallbackPath),
	)
	if d.emitter != nil {
		d.emitter.OnFallbackWritten(len(actions))
	}
	return nil
}

// postprocess applies the record's postprocessors in order. A failing
// postprocessor is skipped and the body it was given stays current.
func (d *Dispatcher) postprocess(r domain.Record) domain.Action {
	body := r.Source
	for i, pp := range r.Postprocessors {
		out, err := applyPostprocessor(pp, body.DeepCopy())
		if err != nil {
			d.logger.Error("postprocessor failed",
				ports.Err(err),
				ports.Int("position", i),
				ports.String("index", r.Index),
				ports.String("type", r.Type),
			)
			if d.emitter != nil {
				d.emitter.OnPostprocessorError(err)
			}
			continue
		}
		body = out
	}
	return r.Action(body)
}

func applyPostprocessor(pp domain.Postprocessor, body domain.Body) (out domain.Body, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.PanicError{Value: r}
		}
	}()
	return pp(body)
}

var errNoFallbackFile = errors.New("no fallback log file configured")

// writeFallback appends one JSON line per document body to the fallback file.
// The file is always closed, and a close error is reported when nothing else failed.
func (d *Dispatcher) writeFallback(actions []domain.Action) (err error) {
	if d.fallbackPath == "" || d.opener == nil {
		return errNoFallbackFile
	}

	f, err := d.opener.OpenAppend(d.fallbackPath)
	if err != nil {
		return fmt.Errorf("open fallback file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close fallback file: %w", cerr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, a := range actions {
		if err := enc.Encode(a.Source); err != nil {
			return fmt.Errorf("write fallback line: %w", err)
		}
	}
	return nil
}

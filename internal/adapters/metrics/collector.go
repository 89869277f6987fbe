// Package metrics exposes dispatcher activity as Prometheus metrics.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/lumberjack/internal/app"
)

const namespace = "lumberjack"

// Collector implements app.FlushEventEmitter and app.EventEmitter by
// updating Prometheus metrics.
type Collector struct {
	enqueued        prometheus.Counter
	flushed         prometheus.Counter
	flushes         prometheus.Counter
	transportErrors prometheus.Counter
	fallback        prometheus.Counter
	lost            prometheus.Counter
	ppErrors        prometheus.Counter
	unexpected      prometheus.Counter
	queueLen        prometheus.GaugeFunc
	state           prometheus.Gauge
	flushDuration   prometheus.Histogram

	lastEnqueued atomic.Int64
	queueSource  atomic.Pointer[func() int]
}

// NewCollector creates the dispatcher metrics and registers them with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	c := &Collector{
		enqueued:        counter("records_enqueued_total", "Records accepted into the queue."),
		flushed:         counter("records_flushed_total", "Records written to the document store."),
		flushes:         counter("flushes_total", "Successful bulk writes."),
		transportErrors: counter("transport_failures_total", "Bulk writes that failed on transport."),
		fallback:        counter("records_fallback_total", "Records written to the fallback file."),
		lost:            counter("records_lost_total", "Records dropped after the fallback write failed."),
		ppErrors:        counter("postprocessor_errors_total", "Postprocessors that failed and were skipped."),
		unexpected:      counter("unexpected_errors_total", "Errors captured by the dispatcher loop."),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Lifecycle state (0=stopped 1=starting 2=running 3=stopping 4=crashed).",
		}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Duration of successful bulk writes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	c.queueLen = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_length",
		Help:      "Records waiting for the next flush.",
	}, c.currentQueueLen)

	if reg != nil {
		reg.MustRegister(
			c.enqueued, c.flushed, c.flushes, c.transportErrors, c.fallback,
			c.lost, c.ppErrors, c.unexpected, c.queueLen, c.state, c.flushDuration,
		)
	}
	return c
}

// TrackQueue makes the queue_length gauge read fn at collection time.
// Until it is called the gauge reports the length seen by the last enqueue.
func (c *Collector) TrackQueue(fn func() int) {
	c.queueSource.Store(&fn)
}

func (c *Collector) currentQueueLen() float64 {
	if fn := c.queueSource.Load(); fn != nil {
		return float64((*fn)())
	}
	return float64(c.lastEnqueued.Load())
}

// OnEnqueue implements app.FlushEventEmitter.
func (c *Collector) OnEnqueue(queueLen int) {
	c.enqueued.Inc()
	c.lastEnqueued.Store(int64(queueLen))
}

// OnFlushSuccess implements app.FlushEventEmitter.
func (c *Collector) OnFlushSuccess(records int, duration time.Duration) {
	c.flushes.Inc()
	c.flushed.Add(float64(records))
	c.flushDuration.Observe(duration.Seconds())
}

// OnTransportFailure implements app.FlushEventEmitter.
func (c *Collector) OnTransportFailure(err error, records int) {
	c.transportErrors.Inc()
}

// OnFallbackWritten implements app.FlushEventEmitter.
func (c *Collector) OnFallbackWritten(records int) {
	c.fallback.Add(float64(records))
}

// OnRecordsLost implements app.FlushEventEmitter.
func (c *Collector) OnRecordsLost(err error, records int) {
	c.lost.Add(float64(records))
}

// OnPostprocessorError implements app.FlushEventEmitter.
func (c *Collector) OnPostprocessorError(err error) {
	c.ppErrors.Inc()
}

// OnUnexpectedError implements app.FlushEventEmitter.
func (c *Collector) OnUnexpectedError(err error) {
	c.unexpected.Inc()
}

// OnStateChange implements app.EventEmitter.
func (c *Collector) OnStateChange(previous, current app.State, reason string) {
	c.state.Set(float64(current))
}

var (
	_ app.FlushEventEmitter = (*Collector)(nil)
	_ app.EventEmitter      = (*Collector)(nil)
)

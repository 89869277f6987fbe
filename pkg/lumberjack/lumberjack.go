package lumberjack

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bft-labs/lumberjack/internal/adapters/bulk"
	"github.com/bft-labs/lumberjack/internal/adapters/fs"
	"github.com/bft-labs/lumberjack/internal/adapters/metrics"
	"github.com/bft-labs/lumberjack/internal/app"
	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
	"github.com/bft-labs/lumberjack/pkg/log"
)

// Lumberjack batches documents and writes them to the store in bulk.
// Use New() to create an instance, then Start() to begin flushing.
type Lumberjack struct {
	config     Config
	opts       options
	lifecycle  *app.Lifecycle
	dispatcher *app.Dispatcher
	logger     ports.Logger
	plugins    []Plugin

	mu       sync.Mutex
	cancel   context.CancelFunc
	pluginMu sync.Mutex
	active   []Plugin
}

// New creates a Lumberjack instance in StateStopped.
// Documents may be enqueued before Start; they are flushed once it runs.
func New(cfg Config, opts ...Option) (*Lumberjack, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	writer := o.writer
	if writer == nil {
		if cfg.StoreURL == "" {
			return nil, fmt.Errorf("%w: store URL is required", domain.ErrInvalidConfig)
		}
		httpClient := o.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		writer = bulk.NewClient(bulk.Config{
			URL:       cfg.StoreURL,
			Username:  cfg.Username,
			Password:  cfg.Password,
			Timeout:   cfg.HTTPTimeout,
			UserAgent: "lumberjack",
		}, httpClient, logger)
	}

	opener := o.opener
	if opener == nil {
		opener = fs.NewAppendOpener()
	}

	var (
		sinks     fanout
		collector *metrics.Collector
	)
	if o.registerer != nil {
		collector = metrics.NewCollector(o.registerer)
		sinks = append(sinks, collector)
	}
	if o.eventHandler != nil {
		sinks = append(sinks, handlerEmitter{handler: o.eventHandler})
	}

	var (
		flushEmitter app.FlushEventEmitter
		stateEmitter app.EventEmitter
	)
	if len(sinks) > 0 {
		flushEmitter, stateEmitter = sinks, sinks
	}

	dispatcher := app.NewDispatcher(cfg.dispatcherConfig(), writer, opener, logger, flushEmitter)
	if collector != nil {
		collector.TrackQueue(dispatcher.QueueLen)
	}

	return &Lumberjack{
		config:     cfg,
		opts:       o,
		lifecycle:  app.NewLifecycle(logger, stateEmitter),
		dispatcher: dispatcher,
		logger:     logger,
		plugins:    o.plugins,
	}, nil
}

// Start runs the dispatcher loop in the background and returns immediately.
// The first flush happens right away. Canceling ctx drains the queue and
// stops the loop, as Stop does.
func (l *Lumberjack) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	// After a shutdown timeout the old loop may still be inside a bulk write.
	// It exits on its own once that returns and the queue is empty.
	if l.lifecycle.Busy() {
		return domain.ErrStillDraining
	}
	if err := l.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	pluginCfg := PluginConfig{
		Config: l.config,
		Logger: l.logger,
		Policy: l.dispatcher,
	}
	for _, p := range l.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			l.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			l.shutdownPlugins()
			_ = l.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		l.pluginMu.Lock()
		l.active = append(l.active, p)
		l.pluginMu.Unlock()
		l.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	l.dispatcher.Resume()
	if err := l.lifecycle.TransitionTo(app.StateRunning, "dispatcher started"); err != nil {
		cancel()
		return err
	}

	l.lifecycle.Go(func() {
		l.dispatcher.Run(runCtx)

		// Stop owns the transition when it initiated the shutdown.
		if err := l.lifecycle.TransitionTo(app.StateStopping, "context canceled"); err == nil {
			l.shutdownPlugins()
			_ = l.lifecycle.TransitionTo(app.StateStopped, "queue drained")
		}
	})

	return nil
}

// Stop asks the dispatcher to flush what is queued and waits for the loop to
// finish, up to the shutdown timeout (30s by default).
// Returns nil on graceful shutdown, ErrShutdownTimeout if the queue could not
// be drained in time.
func (l *Lumberjack) Stop() error {
	l.mu.Lock()
	if !l.lifecycle.CanStop() {
		l.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := l.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		l.mu.Unlock()
		return err
	}
	l.dispatcher.Shutdown()
	cancel := l.cancel
	l.mu.Unlock()

	err := l.lifecycle.WaitWithTimeout(l.opts.shutdownTimeout)
	if cancel != nil {
		cancel()
	}

	l.shutdownPlugins()

	if err != nil {
		_ = l.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = l.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// shutdownPlugins shuts initialized plugins down in reverse order.
func (l *Lumberjack) shutdownPlugins() {
	l.pluginMu.Lock()
	active := l.active
	l.active = nil
	l.pluginMu.Unlock()

	ctx := context.Background()
	for i := len(active) - 1; i >= 0; i-- {
		p := active[i]
		if err := p.Shutdown(ctx); err != nil {
			l.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			l.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Enqueue queues a document for prefix+suffix. It never blocks on flush work.
func (l *Lumberjack) Enqueue(suffix, typ string, body Body, postprocessors ...Postprocessor) {
	l.dispatcher.Enqueue(suffix, typ, body, postprocessors...)
}

// TriggerFlush makes the dispatcher flush on its next turn without waiting.
func (l *Lumberjack) TriggerFlush() {
	l.dispatcher.TriggerFlush()
}

// SetPolicy changes the flush interval and size trigger at runtime.
func (l *Lumberjack) SetPolicy(interval time.Duration, maxQueueLength int) {
	l.dispatcher.SetPolicy(interval, maxQueueLength)
}

// LastException returns the most recent error captured by the loop, or nil.
func (l *Lumberjack) LastException() error {
	return l.dispatcher.LastException()
}

// Exceptions returns the retained loop errors, oldest first.
func (l *Lumberjack) Exceptions() []error {
	return l.dispatcher.Exceptions()
}

// QueueLen returns the number of documents waiting for the next flush.
func (l *Lumberjack) QueueLen() int {
	return l.dispatcher.QueueLen()
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (l *Lumberjack) Status() State {
	return l.lifecycle.State()
}

package lumberjack

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/lumberjack/internal/app"
)

// Option configures optional behavior of Lumberjack.
type Option func(*options)

type options struct {
	httpClient      *http.Client
	writer          BulkWriter
	opener          FileOpener
	logger          Logger
	eventHandler    EventHandler
	registerer      prometheus.Registerer
	plugins         []Plugin
	shutdownTimeout time.Duration
}

func defaultOptions() options {
	return options{
		shutdownTimeout: app.ShutdownTimeout,
	}
}

// WithHTTPClient sets the HTTP client used by the built-in store client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithBulkWriter replaces the built-in store client.
func WithBulkWriter(w BulkWriter) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithFileOpener replaces the file system used for the fallback file.
func WithFileOpener(opener FileOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for dispatcher events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithMetrics registers Prometheus metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithPlugin registers a plugin to be initialized when Lumberjack starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithShutdownTimeout bounds how long Stop waits for the queue to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

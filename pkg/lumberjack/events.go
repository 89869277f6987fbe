package lumberjack

import (
	"time"

	"github.com/bft-labs/lumberjack/internal/app"
)

// EventHandler receives notifications about dispatcher activity.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnFlush(event FlushEvent)
	OnFlushError(event FlushErrorEvent)
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FlushEvent describes a successful bulk write.
type FlushEvent struct {
	Records  int
	Duration time.Duration
}

// FlushErrorKind classifies a FlushErrorEvent.
type FlushErrorKind int

const (
	// FlushErrorTransport: the store was unreachable; a fallback write follows.
	FlushErrorTransport FlushErrorKind = iota
	// FlushErrorFallback: the batch went to the fallback file.
	FlushErrorFallback
	// FlushErrorLost: the fallback write failed and the batch was dropped.
	FlushErrorLost
	// FlushErrorPostprocessor: a postprocessor failed and was skipped.
	FlushErrorPostprocessor
	// FlushErrorUnexpected: any other loop error.
	FlushErrorUnexpected
)

// String returns a human-readable representation of the kind.
func (k FlushErrorKind) String() string {
	switch k {
	case FlushErrorTransport:
		return "transport"
	case FlushErrorFallback:
		return "fallback"
	case FlushErrorLost:
		return "lost"
	case FlushErrorPostprocessor:
		return "postprocessor"
	case FlushErrorUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// FlushErrorEvent describes a degraded flush. Err is nil for FlushErrorFallback.
type FlushErrorEvent struct {
	Kind    FlushErrorKind
	Err     error
	Records int
}

// BaseEventHandler implements EventHandler with no-ops; embed it to
// override only some methods.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnFlush(FlushEvent)             {}
func (BaseEventHandler) OnFlushError(FlushErrorEvent)   {}

// handlerEmitter adapts EventHandler to the internal emitter interfaces.
type handlerEmitter struct {
	handler EventHandler
}

func (e handlerEmitter) OnStateChange(previous, current app.State, reason string) {
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

func (e handlerEmitter) OnEnqueue(int) {}

func (e handlerEmitter) OnFlushSuccess(records int, duration time.Duration) {
	e.handler.OnFlush(FlushEvent{Records: records, Duration: duration})
}

func (e handlerEmitter) OnTransportFailure(err error, records int) {
	e.handler.OnFlushError(FlushErrorEvent{Kind: FlushErrorTransport, Err: err, Records: records})
}

func (e handlerEmitter) OnFallbackWritten(records int) {
	e.handler.OnFlushError(FlushErrorEvent{Kind: FlushErrorFallback, Records: records})
}

func (e handlerEmitter) OnRecordsLost(err error, records int) {
	e.handler.OnFlushError(FlushErrorEvent{Kind: FlushErrorLost, Err: err, Records: records})
}

func (e handlerEmitter) OnPostprocessorError(err error) {
	e.handler.OnFlushError(FlushErrorEvent{Kind: FlushErrorPostprocessor, Err: err})
}

func (e handlerEmitter) OnUnexpectedError(err error) {
	e.handler.OnFlushError(FlushErrorEvent{Kind: FlushErrorUnexpected, Err: err})
}

// emitterSink is what every registered observer implements.
type emitterSink interface {
	app.FlushEventEmitter
	app.EventEmitter
}

// fanout forwards every event to each sink in order.
type fanout []emitterSink

func (f fanout) OnStateChange(previous, current app.State, reason string) {
	for _, s := range f {
		s.OnStateChange(previous, current, reason)
	}
}

func (f fanout) OnEnqueue(queueLen int) {
	for _, s := range f {
		s.OnEnqueue(queueLen)
	}
}

func (f fanout) OnFlushSuccess(records int, duration time.Duration) {
	for _, s := range f {
		s.OnFlushSuccess(records, duration)
	}
}

func (f fanout) OnTransportFailure(err error, records int) {
	for _, s := range f {
		s.OnTransportFailure(err, records)
	}
}

func (f fanout) OnFallbackWritten(records int) {
	for _, s := range f {
		s.OnFallbackWritten(records)
	}
}

func (f fanout) OnRecordsLost(err error, records int) {
	for _, s := range f {
		s.OnRecordsLost(err, records)
	}
}

func (f fanout) OnPostprocessorError(err error) {
	for _, s := range f {
		s.OnPostprocessorError(err)
	}
}

func (f fanout) OnUnexpectedError(err error) {
	for _, s := range f {
		s.OnUnexpectedError(err)
	}
}

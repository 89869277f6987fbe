package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the lumberjack domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running dispatcher.
	ErrAlreadyRunning = errors.New("lumberjack: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped dispatcher.
	ErrNotRunning = errors.New("lumberjack: not running")

	// ErrShutdownTimeout is returned when draining the queue on shutdown times out.
	ErrShutdownTimeout = errors.New("lumberjack: shutdown timeout")

	// ErrStillDraining is returned by Start when the loop of an earlier run
	// outlived its shutdown timeout and has not exited yet.
	ErrStillDraining = errors.New("lumberjack: previous dispatcher loop still draining")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("lumberjack: invalid configuration")

	// ErrTransport marks failures to reach or complete a request at the document store.
	ErrTransport = errors.New("lumberjack: transport error")
)

// TransportError wraps a connectivity or server-side failure of a bulk write.
// It matches ErrTransport with errors.Is.
type TransportError struct {
	// StatusCode is the HTTP status returned by the store, or 0 if none was received.
	StatusCode int
	Err        error
}

// NewTransportError wraps err as a transport failure.
func NewTransportError(status int, err error) *TransportError {
	return &TransportError{StatusCode: status, Err: err}
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// BulkItemError reports documents the store rejected individually.
// It is not a transport failure: the request itself completed.
type BulkItemError struct {
	Failed int
	Total  int
	First  string
}

func (e *BulkItemError) Error() string {
	return fmt.Sprintf("bulk write: %d of %d documents failed: %s", e.Failed, e.Total, e.First)
}

// PanicError carries a value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

package lumberjack

import (
	"github.com/bft-labs/lumberjack/internal/app"
	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

// Body is a JSON-compatible document.
type Body = domain.Body

// Postprocessor transforms a document at flush time. It receives a copy of
// the body; on error or panic it is skipped.
type Postprocessor = domain.Postprocessor

// Action is one bulk index operation.
type Action = domain.Action

// BulkWriter submits a batch to the document store.
type BulkWriter = ports.BulkWriter

// BulkWriterFunc adapts a function to BulkWriter.
type BulkWriterFunc = ports.BulkWriterFunc

// FileOpener opens the fallback file for appending.
type FileOpener = ports.FileOpener

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// State is the lifecycle state of a Lumberjack instance.
type State = app.State

// Lifecycle states.
const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// Errors returned by the public API.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrStillDraining   = domain.ErrStillDraining
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrTransport       = domain.ErrTransport
)

// NewTransportError wraps err as a transport failure so the dispatcher
// falls back to the file. Custom BulkWriters should use it for connectivity
// and server-side failures.
func NewTransportError(statusCode int, err error) error {
	return domain.NewTransportError(statusCode, err)
}

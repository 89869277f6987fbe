package ports

import (
	"context"

	"github.com/bft-labs/lumberjack/internal/domain"
)

// BulkWriter submits index actions to the document store in one request.
type BulkWriter interface {
	// Bulk writes all actions. Connectivity and server failures must be
	// reported as errors matching domain.ErrTransport; anything else is
	// treated as an unexpected failure by the dispatcher.
	Bulk(ctx context.Context, actions []domain.Action) error
}

// BulkWriterFunc adapts a function to BulkWriter.
type BulkWriterFunc func(ctx context.Context, actions []domain.Action) error

// Bulk calls f(ctx, actions).
func (f BulkWriterFunc) Bulk(ctx context.Context, actions []domain.Action) error {
	return f(ctx, actions)
}

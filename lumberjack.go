// Package lumberjack batches documents and ships them to a document store in
// bulk, falling back to a local file when the store is unreachable.
//
// Example usage:
//
//	cfg := lumberjack.Config{
//	    StoreURL:    "http://localhost:9200",
//	    IndexPrefix: "logs-",
//	}
//	lj, err := lumberjack.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := lj.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	lj.Enqueue("2014.06.24", "event", lumberjack.Body{"msg": "hello"})
//	_ = lj.Stop()
//
// The full API lives in github.com/bft-labs/lumberjack/pkg/lumberjack; this
// package re-exports the common entry points.
package lumberjack

import (
	"context"

	lj "github.com/bft-labs/lumberjack/pkg/lumberjack"
)

// Config holds the dispatcher and store settings.
type Config = lj.Config

// Lumberjack is a running or stopped dispatcher instance.
type Lumberjack = lj.Lumberjack

// Option configures optional behavior of New.
type Option = lj.Option

// Body is a JSON-compatible document.
type Body = lj.Body

// Postprocessor transforms a document at flush time.
type Postprocessor = lj.Postprocessor

// New creates a stopped instance. See pkg/lumberjack.New.
func New(cfg Config, opts ...Option) (*Lumberjack, error) {
	return lj.New(cfg, opts...)
}

// Run starts a dispatcher, hands it to fn, and stops it once ctx is done,
// draining the queue. It blocks until shutdown completes.
func Run(ctx context.Context, cfg Config, fn func(*Lumberjack), opts ...Option) error {
	d, err := lj.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := d.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if fn != nil {
		fn(d)
	}
	<-ctx.Done()
	return d.Stop()
}

// Package lumberjack provides an embeddable batching dispatcher for a
// document store.
//
// Producers enqueue documents from any goroutine. A single background
// goroutine flushes them with one bulk request when the flush interval
// elapses, when the queue reaches MaxQueueLength, or when [Lumberjack.TriggerFlush]
// is called. If the store cannot be reached the batch is appended to a local
// fallback file, one JSON document per line.
//
// # Basic Usage
//
//	cfg := lumberjack.Config{
//	    StoreURL:        "http://localhost:9200",
//	    IndexPrefix:     "logs-",
//	    Interval:        30 * time.Second,
//	    MaxQueueLength:  1000,
//	    FallbackLogFile: "/var/log/lumberjack-fallback.log",
//	}
//
//	lj, err := lumberjack.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := lj.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	lj.Enqueue("2014.06.24", "event", lumberjack.Body{"msg": "hello"})
//
//	// Stop drains the queue before returning.
//	if err := lj.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for no-op defaults)
// and pass it via [WithEventHandler]. Flush events are called from the
// dispatcher goroutine and must return quickly.
//
// # Metrics
//
// [WithMetrics] registers Prometheus counters, a queue length gauge and a
// flush duration histogram under the "lumberjack" namespace.
//
// # Dependency Injection
//
// For testing, replace the store client or the fallback file system:
//
//	lj, err := lumberjack.New(cfg,
//	    lumberjack.WithBulkWriter(fakeWriter),
//	    lumberjack.WithFileOpener(memOpener),
//	    lumberjack.WithLogger(logger),
//	)
//
// # Lifecycle States
//
// An instance is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Lumberjack.Status] to query it.
package lumberjack

// Package log provides the logging abstraction used by lumberjack components.
//
// The dispatcher, adapters and plugins log through the [Logger] interface so
// an embedding application can route messages into its own logging stack.
// A zerolog adapter and a no-op logger are provided.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or build a console logger at a given level:
//
//	logger, err := log.New(os.Stderr, "debug")
//
// Use the no-op logger in tests:
//
//	logger := log.NewNoopLogger()
package log

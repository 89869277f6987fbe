// Package ports defines the interfaces that connect the dispatcher to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [BulkWriter]: submits a batch of index actions to the document store
//   - [FileOpener]: opens the fallback file in append mode
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters under internal/adapters provide the concrete implementations, and
// tests substitute fakes.
package ports

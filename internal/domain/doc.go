// Package domain contains the core entities and error values for lumberjack.
//
// This package is the innermost layer. It has no dependencies on transport,
// file system or logging concerns and holds only the record model and the
// rules that apply to it.
//
// # Entities
//
//   - [Record]: one document queued for indexing, with its pending postprocessors
//   - [Action]: the bulk operation a Record becomes once its postprocessors ran
//   - [Body]: the structured document payload
//
// Records are immutable after construction. Postprocessors always receive a
// deep copy of the body, so two records built from the same map never share
// mutable state once dispatched.
package domain

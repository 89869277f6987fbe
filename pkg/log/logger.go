package log

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Logger is the structured logger every lumberjack component writes to.
// The dispatcher never sends its own messages back into a queue, so any
// Logger, including one shipping to the store, is safe to hand to the
// front ends.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log message.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field            { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field                { return Field{Key: key, Value: value} }

// Err attaches err under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Bytes attaches a byte count in human-readable form ("1.5 kB").
func Bytes(key string, n uint64) Field { return Field{Key: key, Value: humanize.Bytes(n)} }

// Count attaches a count with thousands separators ("12,345").
func Count(key string, n int64) Field { return Field{Key: key, Value: humanize.Comma(n)} }

// With returns a Logger that adds fields to every message.
func With(logger Logger, fields ...Field) Logger {
	if len(fields) == 0 {
		return logger
	}
	if w, ok := logger.(*withLogger); ok {
		return &withLogger{next: w.next, fields: append(append([]Field(nil), w.fields...), fields...)}
	}
	return &withLogger{next: logger, fields: fields}
}

type withLogger struct {
	next   Logger
	fields []Field
}

func (w *withLogger) merge(fields []Field) []Field {
	out := make([]Field, 0, len(w.fields)+len(fields))
	return append(append(out, w.fields...), fields...)
}

func (w *withLogger) Debug(msg string, fields ...Field) { w.next.Debug(msg, w.merge(fields)...) }
func (w *withLogger) Info(msg string, fields ...Field)  { w.next.Info(msg, w.merge(fields)...) }
func (w *withLogger) Warn(msg string, fields ...Field)  { w.next.Warn(msg, w.merge(fields)...) }
func (w *withLogger) Error(msg string, fields ...Field) { w.next.Error(msg, w.merge(fields)...) }

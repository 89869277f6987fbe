package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

type logEntry struct {
	level  string
	msg    string
	fields []ports.Field
}

// recordingLogger implements ports.Logger and keeps every entry.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level, msg, fields})
}

func (l *recordingLogger) Debug(msg string, fields ...ports.Field) { l.add("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...ports.Field)  { l.add("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...ports.Field)  { l.add("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...ports.Field) { l.add("error", msg, fields) }

// find returns the entries with the given message.
func (l *recordingLogger) find(msg string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func (e logEntry) field(key string) (any, bool) {
	for _, f := range e.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// fakeWriter implements ports.BulkWriter.
type fakeWriter struct {
	mu      sync.Mutex
	batches [][]domain.Action
	errs    []error // returned in order, nil once exhausted

	entered chan struct{} // signalled when Bulk starts, if set
	release chan struct{} // Bulk waits on it, if set
	panicky bool
}

func (w *fakeWriter) Bulk(ctx context.Context, actions []domain.Action) error {
	if w.entered != nil {
		w.entered <- struct{}{}
	}
	if w.release != nil {
		<-w.release
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.panicky {
		panic("bulk exploded")
	}
	w.batches = append(w.batches, append([]domain.Action(nil), actions...))
	if len(w.errs) > 0 {
		err := w.errs[0]
		w.errs = w.errs[1:]
		return err
	}
	return nil
}

func (w *fakeWriter) Batches() [][]domain.Action {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]domain.Action(nil), w.batches...)
}

// memFile is an in-memory io.WriteCloser.
type memFile struct {
	buf    *bytes.Buffer
	closed bool
	failAt int // fail the n-th write (1-based), 0 never
	writes int
}

func (f *memFile) Write(p []byte) (int, error) {
	f.writes++
	if f.failAt > 0 && f.writes == f.failAt {
		return 0, errors.New("disk full")
	}
	return f.buf.Write(p)
}

func (f *memFile) Close() error {
	f.closed = true
	return nil
}

// fakeOpener implements ports.FileOpener over memory buffers.
type fakeOpener struct {
	mu      sync.Mutex
	files   map[string]*bytes.Buffer
	opened  []*memFile
	openErr error
	failAt  int
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{files: map[string]*bytes.Buffer{}}
}

func failingOpener(openErr error, failAt int) *fakeOpener {
	o := newFakeOpener()
	o.openErr = openErr
	o.failAt = failAt
	return o
}

func (o *fakeOpener) OpenAppend(path string) (io.WriteCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	buf, ok := o.files[path]
	if !ok {
		buf = &bytes.Buffer{}
		o.files[path] = buf
	}
	f := &memFile{buf: buf, failAt: o.failAt}
	o.opened = append(o.opened, f)
	return f, nil
}

func (o *fakeOpener) contents(path string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if buf, ok := o.files[path]; ok {
		return buf.String()
	}
	return ""
}

// osOpener opens real files in append mode.
type osOpener struct{}

func (osOpener) OpenAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// countingEmitter implements FlushEventEmitter.
type countingEmitter struct {
	mu                sync.Mutex
	enqueued          int
	flushed           int
	transportFailures int
	fallback          int
	lost              int
	postprocessorErrs int
	unexpected        int
}

func (e *countingEmitter) OnEnqueue(int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enqueued++
}

func (e *countingEmitter) OnFlushSuccess(records int, _ time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushed += records
}

func (e *countingEmitter) OnTransportFailure(_ error, _ int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transportFailures++
}

func (e *countingEmitter) OnFallbackWritten(records int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback += records
}

func (e *countingEmitter) OnRecordsLost(_ error, records int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lost += records
}

func (e *countingEmitter) OnPostprocessorError(error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postprocessorErrs++
}

func (e *countingEmitter) OnUnexpectedError(error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unexpected++
}

func (e *countingEmitter) snapshot() countingEmitter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return countingEmitter{
		enqueued:          e.enqueued,
		flushed:           e.flushed,
		transportFailures: e.transportFailures,
		fallback:          e.fallback,
		lost:              e.lost,
		postprocessorErrs: e.postprocessorErrs,
		unexpected:        e.unexpected,
	}
}

func recordFor(n int) domain.Record {
	return domain.NewRecord("idx", "t", domain.Body{"n": n}, nil)
}

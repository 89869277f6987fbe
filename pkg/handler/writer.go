package handler

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/lumberjack/internal/domain"
)

// Defaults for Config.
const (
	DefaultTypeTag      = "log"
	DefaultSuffixLayout = "2006.01.02"
)

// Sink receives documents from the Writer.
type Sink interface {
	Enqueue(suffix, typ string, body domain.Body, postprocessors ...domain.Postprocessor)
}

// Config controls how log events are turned into documents.
type Config struct {
	// TypeTag is the document type of every event.
	TypeTag string

	// SuffixLayout formats the event time into the collection suffix.
	SuffixLayout string

	// MinLevel drops events below this level. The zero value is debug.
	MinLevel zerolog.Level

	// Postprocessors are attached to every document.
	Postprocessors []domain.Postprocessor

	// Now is used when an event carries no parseable time.
	Now func() time.Time
}

// Writer implements zerolog.LevelWriter by enqueuing each event.
type Writer struct {
	sink   Sink
	config Config
}

var _ zerolog.LevelWriter = (*Writer)(nil)

// New creates a Writer feeding sink.
func New(sink Sink, config Config) *Writer {
	if config.TypeTag == "" {
		config.TypeTag = DefaultTypeTag
	}
	if config.SuffixLayout == "" {
		config.SuffixLayout = DefaultSuffixLayout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Writer{sink: sink, config: config}
}

// Write enqueues one event. Input that is not a JSON object is stored under
// the message field. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	body := domain.Body{}
	if err := json.Unmarshal(p, &body); err != nil {
		body = domain.Body{zerolog.MessageFieldName: string(p)}
	}

	suffix := w.eventTime(body).Format(w.config.SuffixLayout)
	w.sink.Enqueue(suffix, w.config.TypeTag, body, w.config.Postprocessors...)
	return len(p), nil
}

// WriteLevel enqueues the event if level is at least MinLevel.
func (w *Writer) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.config.MinLevel {
		return len(p), nil
	}
	return w.Write(p)
}

func (w *Writer) eventTime(body domain.Body) time.Time {
	switch v := body[zerolog.TimestampFieldName].(type) {
	case string:
		if t, err := time.Parse(zerolog.TimeFieldFormat, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case float64:
		return time.Unix(int64(v), 0)
	}
	return w.config.Now()
}

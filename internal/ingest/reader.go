// Package ingest reads newline-delimited JSON records and enqueues them.
//
// Each line is an object of the form
//
//	{"suffix": "2014.06.24", "type": "event", "body": {...}}
//
// Blank lines are skipped. Malformed lines are logged and skipped; they never
// stop the stream.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

// MaxLineBytes is the longest accepted input line.
const MaxLineBytes = 1 << 20

// Enqueuer accepts records for batching.
type Enqueuer interface {
	Enqueue(suffix, typ string, body domain.Body, postprocessors ...domain.Postprocessor)
}

// Line is one input record.
type Line struct {
	Suffix string      `json:"suffix"`
	Type   string      `json:"type"`
	Body   domain.Body `json:"body"`
}

// Stats summarizes a Read call.
type Stats struct {
	Lines    int
	Enqueued int
	Skipped  int
}

// Reader enqueues records parsed from an NDJSON stream.
type Reader struct {
	sink        Enqueuer
	logger      ports.Logger
	defaultType string
}

// NewReader creates a Reader. Lines without a type use defaultType.
func NewReader(sink Enqueuer, defaultType string, logger ports.Logger) *Reader {
	return &Reader{sink: sink, logger: ports.With(logger, ports.String("component", "ingest")), defaultType: defaultType}
}

// Read consumes r until EOF or ctx is done.
// It returns ctx.Err() on cancellation and a wrapped error if r fails.
func (rd *Reader) Read(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++

		raw := sc.Bytes()
		if len(raw) == 0 {
			stats.Skipped++
			continue
		}

		line, err := rd.parse(raw)
		if err != nil {
			stats.Skipped++
			rd.logger.Warn("skipping input line",
				ports.Int("line", stats.Lines),
				ports.Err(err),
			)
			continue
		}

		rd.sink.Enqueue(line.Suffix, line.Type, line.Body)
		stats.Enqueued++
	}

	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}
	return stats, nil
}

var errMissingBody = errors.New("missing body")

func (rd *Reader) parse(raw []byte) (Line, error) {
	var line Line
	if err := json.Unmarshal(raw, &line); err != nil {
		return line, fmt.Errorf("decode line: %w", err)
	}
	if line.Body == nil {
		return line, errMissingBody
	}
	if line.Type == "" {
		line.Type = rd.defaultType
	}
	return line, nil
}

package shard

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/marmos91/shapeview/pkg/bufpool"
	"github.com/marmos91/shapeview/pkg/shape"
)

// DefaultMaxLineSize bounds a single record line.
const DefaultMaxLineSize = 16 * 1024 * 1024

// LineError reports a line that is not a valid record.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ScanOptions tunes a scan.
type ScanOptions struct {
	// MaxLineSize is the largest accepted line in bytes.
	// Default: DefaultMaxLineSize
	MaxLineSize int

	// OnMalformed is called for every line that fails to decode. The scan
	// continues with the next line.
	OnMalformed func(*LineError)
}

// Stats describes the work done by a scan. Lines counts non-blank lines.
type Stats struct {
	Lines     int
	Records   int
	Malformed int
}

// Records returns a lazy sequence over the records in r.
//
// Blank lines are skipped. A line that fails to decode yields a *LineError and
// the sequence continues; a read error yields the error and ends the sequence.
// The sequence reads r only as far as the consumer iterates.
func Records(r io.Reader, maxLineSize int) iter.Seq2[shape.Record, error] {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	return func(yield func(shape.Record, error) bool) {
		buf := bufpool.Get(min(bufpool.DefaultMediumSize, maxLineSize))
		defer bufpool.Put(buf)

		sc := bufio.NewScanner(r)
		sc.Buffer(buf[:0], maxLineSize)

		line := 0
		for sc.Scan() {
			line++
			raw := bytes.TrimSpace(sc.Bytes())
			if len(raw) == 0 {
				continue
			}

			var rec shape.Record
			if err := json.Unmarshal(raw, &rec); err != nil {
				if !yield(shape.Record{}, &LineError{Line: line, Err: err}) {
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(shape.Record{}, fmt.Errorf("read shard: %w", err))
		}
	}
}

// Find scans r for the record with the given id, stopping at the first match.
// Malformed lines are reported through opts.OnMalformed and skipped.
func Find(r io.Reader, id int, opts ScanOptions) (shape.Record, bool, Stats, error) {
	var stats Stats

	for rec, err := range Records(r, opts.MaxLineSize) {
		if err != nil {
			if lineErr, ok := err.(*LineError); ok {
				stats.Lines++
				stats.Malformed++
				if opts.OnMalformed != nil {
					opts.OnMalformed(lineErr)
				}
				continue
			}
			return shape.Record{}, false, stats, err
		}

		stats.Lines++
		stats.Records++
		if rec.ID == id {
			return rec, true, stats, nil
		}
	}

	return shape.Record{}, false, stats, nil
}

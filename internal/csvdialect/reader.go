// Package csvdialect streams CSV records according to a schema.Dialect,
// grounded on the teacher's streaming csv.Reader wrapper: records are
// emitted one at a time over a channel, never buffering the whole file, so
// the table pipeline can batch and fan them out to a worker pool.
package csvdialect

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"csvwvalidate/internal/schema"
)

// Record is one streamed CSV record, numbered the way the engine reports
// row numbers throughout: the record number reported by the CSV reader.
type Record struct {
	Number int
	Fields []string
	Blank  bool
}

// newCSVReader configures a stdlib csv.Reader from dialect. encoding/csv
// only supports '"' as a quote character, so a non-default QuoteChar is
// ignored; the only quoting adjustment made is LazyQuotes, enabled when
// DoubleQuote is false — see DESIGN.md.
func newCSVReader(r io.Reader, dialect *schema.Dialect) *csv.Reader {
	if dialect == nil {
		d := schema.DefaultDialect()
		dialect = &d
	}
	cr := csv.NewReader(r)
	if delim := []rune(dialect.Delimiter); len(delim) == 1 {
		cr.Comma = delim[0]
	}
	cr.LazyQuotes = !dialect.DoubleQuote
	cr.FieldsPerRecord = -1 // the engine enforces width itself as ragged_rows
	return cr
}

// Stream reads records from r under dialect, sending each non-skipped
// record on out, numbering every physical record read (including
// dialect.SkipRows records, which are consumed but not emitted, and blank
// records, which are emitted with Blank=true rather than dropped so the
// table pipeline can still emit "Blank rows" with the correct row number
// unless dialect.SkipBlankRows is set).
//
// Stream returns nil on a clean EOF. A malformed record is reported via
// onErr and does not stop the stream, mirroring the teacher's soft-drop
// policy for per-row CSV syntax errors.
func Stream(ctx context.Context, r io.Reader, dialect *schema.Dialect, out chan<- Record, onErr func(line int, err error)) error {
	if dialect == nil {
		d := schema.DefaultDialect()
		dialect = &d
	}
	cr := newCSVReader(r, dialect)

	line := 0
	for i := 0; i < dialect.SkipRows; i++ {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("skip rows: %w", err)
		}
		line++
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("parse record %d: %w", line, err))
			}
			continue
		}

		blank := isBlankRecord(rec)
		if blank && dialect.SkipBlankRows {
			continue
		}

		fields := rec
		if dialect.Trim {
			fields = make([]string, len(rec))
			for i, v := range rec {
				fields[i] = trimField(v)
			}
		}

		select {
		case out <- Record{Number: line, Fields: fields, Blank: blank}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if f != "" {
			return false
		}
	}
	return true
}

func trimField(s string) string {
	return strings.TrimSpace(s)
}

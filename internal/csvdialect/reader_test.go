package csvdialect

import (
	"context"
	"strings"
	"testing"

	"csvwvalidate/internal/schema"
)

func drain(t *testing.T, csvText string, dialect *schema.Dialect) []Record {
	t.Helper()
	out := make(chan Record, 16)
	errs := 0
	go func() {
		_ = Stream(context.Background(), strings.NewReader(csvText), dialect, out, func(line int, err error) { errs++ })
		close(out)
	}()
	var recs []Record
	for r := range out {
		recs = append(recs, r)
	}
	return recs
}

func TestStreamNumbersRecordsSequentially(t *testing.T) {
	d := schema.DefaultDialect()
	d.SkipBlankRows = false
	recs := drain(t, "a,b\nc,d\n", &d)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Number != 1 || recs[1].Number != 2 {
		t.Errorf("expected sequential record numbers, got %d, %d", recs[0].Number, recs[1].Number)
	}
}

func TestStreamSkipsBlankRowsByDefault(t *testing.T) {
	d := schema.DefaultDialect()
	recs := drain(t, "a,b\n,\nc,d\n", &d)
	if len(recs) != 2 {
		t.Fatalf("expected blank row skipped, got %d records: %+v", len(recs), recs)
	}
}

func TestStreamHonoursSkipRows(t *testing.T) {
	d := schema.DefaultDialect()
	d.SkipRows = 1
	recs := drain(t, "preamble\na,b\n", &d)
	if len(recs) != 1 || recs[0].Fields[0] != "a" {
		t.Fatalf("expected skip_rows to drop the preamble line, got %+v", recs)
	}
}

func TestStreamTrimsFieldsWhenEnabled(t *testing.T) {
	d := schema.DefaultDialect()
	recs := drain(t, " a , b \n", &d)
	if len(recs) != 1 || recs[0].Fields[0] != "a" || recs[0].Fields[1] != "b" {
		t.Fatalf("expected trimmed fields, got %+v", recs)
	}
}

package table

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"csvwvalidate/internal/column"
	"csvwvalidate/internal/config"
	"csvwvalidate/internal/csvdialect"
	"csvwvalidate/internal/metrics"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/row"
	"csvwvalidate/internal/schema"
)

// RunPass1 streams localPath's CSV under table.Dialect, validates every
// record with bounded parallelism, and returns the resulting Accumulator.
// A fatal I/O error opening the file yields a single
// file_not_found/csv_cannot_be_downloaded-style error via the returned
// error value, and the caller is expected to still use the (empty)
// accumulator to complete the table with zero rows processed.
func RunPass1(ctx context.Context, table *schema.Table, localPath string, rt config.RuntimeConfig) (*Accumulator, *metrics.TableCounters, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return NewAccumulator(table), &metrics.TableCounters{}, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	acc := NewAccumulator(table)
	counters := &metrics.TableCounters{}

	// batchResult distinguishes the one header outcome (findings only, no
	// key data, not counted as a data row), a bare parse-error finding (also
	// findings-only), and ordinary data-row batches. Only the fold goroutine
	// ever touches acc.Findings, so a malformed record reported mid-stream
	// never races the fold goroutine's own appends.
	type batchResult struct {
		isHeader bool
		findings []result.Finding
		outcomes []row.Outcome
	}

	recordsCh := make(chan csvdialect.Record, rt.RowGrouping)
	resultsCh := make(chan batchResult, rt.DegreeOfParallelism)

	var streamErr error
	go func() {
		streamErr = csvdialect.Stream(ctx, f, table.Dialect, recordsCh, func(line int, err error) {
			select {
			case resultsCh <- batchResult{findings: []result.Finding{{
				Type: result.TypeMalformedRecord, Category: "structure", Row: line, Content: err.Error(),
			}}}:
			case <-ctx.Done():
			}
		})
		close(recordsCh)
	}()

	var foldWG sync.WaitGroup
	foldWG.Add(1)
	go func() {
		defer foldWG.Done()
		for br := range resultsCh {
			if len(br.findings) > 0 {
				acc.Findings = append(acc.Findings, br.findings...)
			}
			if br.isHeader {
				for _, o := range br.outcomes {
					acc.Findings = append(acc.Findings, o.Findings...)
				}
				continue
			}
			for _, o := range br.outcomes {
				acc.Fold(o)
				counters.AddRow(len(o.Findings) != 0)
			}
		}
	}()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(1, rt.DegreeOfParallelism))

	headerSeen := !table.Dialect.Header
	var batch []csvdialect.Record
	flush := func(records []csvdialect.Record) {
		if len(records) == 0 {
			return
		}
		g.Go(func() error {
			outcomes := make([]row.Outcome, 0, len(records))
			for _, rec := range records {
				outcomes = append(outcomes, validateRecord(table, rec))
			}
			select {
			case resultsCh <- batchResult{outcomes: outcomes}:
			case <-ctx.Done():
			}
			return nil
		})
	}

	for rec := range recordsCh {
		if !headerSeen {
			headerSeen = true
			g.Go(func() error {
				select {
				case resultsCh <- batchResult{isHeader: true, outcomes: []row.Outcome{headerOutcome(table, rec)}}:
				case <-ctx.Done():
				}
				return nil
			})
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= max(1, rt.RowGrouping) {
			flush(batch)
			batch = nil
		}
	}
	flush(batch)

	_ = g.Wait()
	close(resultsCh)
	foldWG.Wait()

	if streamErr != nil && streamErr != context.Canceled {
		return acc, counters, fmt.Errorf("stream %s: %w", localPath, streamErr)
	}
	return acc, counters, nil
}

// validateRecord classifies and validates one non-header record: blank
// records (when not already filtered by the dialect), width mismatches —
// fewer fields than declared is ragged_rows, more is extra_columns — and
// otherwise a full row validation.
func validateRecord(table *schema.Table, rec csvdialect.Record) row.Outcome {
	if rec.Blank {
		return row.Outcome{RecordNumber: rec.Number, Findings: []result.Finding{{
			Type: result.TypeBlankRows, Category: "structure", Row: rec.Number,
		}}}
	}
	want := len(table.Schema.Columns)
	switch {
	case len(rec.Fields) < want:
		return row.Outcome{RecordNumber: rec.Number, Findings: []result.Finding{{
			Type: result.TypeRaggedRows, Category: "structure", Row: rec.Number,
			Content: fmt.Sprintf("expected %d fields, got %d", want, len(rec.Fields)),
		}}}
	case len(rec.Fields) > want:
		return row.Outcome{RecordNumber: rec.Number, Findings: []result.Finding{{
			Type: result.TypeExtraColumns, Category: "structure", Row: rec.Number,
			Content: fmt.Sprintf("expected %d fields, got %d", want, len(rec.Fields)),
		}}}
	}
	return row.Validate(context.Background(), table, rec.Fields, rec.Number)
}

// headerOutcome validates the header record against each column's
// declared titles, plus the structural Empty/Duplicate column name checks.
func headerOutcome(table *schema.Table, rec csvdialect.Record) row.Outcome {
	cols := table.Schema.Columns
	var findings []result.Finding

	if want := len(cols); len(rec.Fields) != want {
		findings = append(findings, result.Finding{
			Type: result.TypeMalformedHeader, Category: "structure", Row: rec.Number,
			Content: fmt.Sprintf("expected %d columns, got %d", want, len(rec.Fields)),
		})
	}

	seenAt := make(map[string]int, len(rec.Fields))
	for i, v := range rec.Fields {
		if v == "" {
			findings = append(findings, result.Finding{
				Type: result.TypeEmptyColumnName, Category: "structure", Row: rec.Number, Column: i + 1,
			})
			continue
		}
		if _, dup := seenAt[v]; dup {
			findings = append(findings, result.Finding{
				Type: result.TypeDuplicateColName, Category: "structure", Row: rec.Number, Column: i + 1, Content: v,
			})
		}
		seenAt[v] = i + 1
	}

	for _, col := range cols {
		idx := col.Ordinal - 1
		if idx < 0 || idx >= len(rec.Fields) {
			continue
		}
		hr := column.ValidateHeader(col, rec.Fields[idx])
		if !hr.Valid {
			findings = append(findings, result.Finding{
				Type: hr.Finding.Type, Category: hr.Finding.Category, Row: rec.Number,
				Column: hr.Finding.Column, Content: hr.Finding.Content,
			})
		}
	}

	return row.Outcome{RecordNumber: rec.Number, Findings: findings}
}

// RunPass2 re-streams localPath and re-validates only the rows in
// collidingRows, resolving hash collisions from pass 1 into true
// duplicate_key findings. It never mutates an already-inserted key value
// in place; instead it tracks first-seen row numbers in a plain map keyed
// by keys.KeyValue.CacheKey, so two distinct key values that happened to
// land in the same pass-1 hash bucket are never confused with each other.
func RunPass2(ctx context.Context, table *schema.Table, localPath string, collidingRows []int, counters *metrics.TableCounters) ([]result.Finding, error) {
	if len(collidingRows) == 0 {
		return nil, nil
	}
	want := make(map[int]bool, len(collidingRows))
	for _, r := range collidingRows {
		want[r] = true
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	recordsCh := make(chan csvdialect.Record, 64)
	go func() {
		_ = csvdialect.Stream(ctx, f, table.Dialect, recordsCh, nil)
		close(recordsCh)
	}()

	firstSeen := make(map[string]int)
	var findings []result.Finding

	headerSeen := !table.Dialect.Header
	for rec := range recordsCh {
		if !headerSeen {
			headerSeen = true
			continue
		}
		if !want[rec.Number] || rec.Blank || len(rec.Fields) != len(table.Schema.Columns) {
			continue
		}
		outcome := row.Validate(ctx, table, rec.Fields, rec.Number)
		if len(outcome.PrimaryKeyValue) == 0 {
			continue
		}
		cacheKey := outcome.PrimaryKeyValue.CacheKey()
		if _, seen := firstSeen[cacheKey]; seen {
			findings = append(findings, result.Finding{
				Type: result.TypeDuplicateKey, Category: "structure", Row: rec.Number,
				Content: fmt.Sprintf("key already present - %s", outcome.PrimaryKeyValue.String()),
			})
			if counters != nil {
				counters.AddDuplicateKey()
			}
			continue
		}
		firstSeen[cacheKey] = rec.Number
	}
	return findings, nil
}

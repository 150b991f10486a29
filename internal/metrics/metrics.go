// Package metrics holds the run-scoped counters surfaced in the CLI summary
// and DEBUG-level logs, mirroring the teacher's cmd/etl/container.go
// counters struct: atomic fields updated from concurrent pipeline stages,
// read back once the run completes.
package metrics

import (
	"sync/atomic"
	"time"
)

// TableCounters holds cross-goroutine statistics for one table's pipeline
// run. All counter fields are updated atomically; use the helper methods
// rather than manipulating the atomics directly. Elapsed is a plain field,
// set once after the table's passes complete.
type TableCounters struct {
	RowsRead       atomic.Int64
	RowsValid      atomic.Int64
	RowsWithErrors atomic.Int64
	DuplicateKeys  atomic.Int64
	UnmatchedFK    atomic.Int64
	MultiMatchedFK atomic.Int64

	Elapsed time.Duration
}

// AddRow records one validated row's outcome.
func (c *TableCounters) AddRow(hadErrors bool) {
	c.RowsRead.Add(1)
	if hadErrors {
		c.RowsWithErrors.Add(1)
	} else {
		c.RowsValid.Add(1)
	}
}

// AddDuplicateKey records one duplicate_key finding.
func (c *TableCounters) AddDuplicateKey() { c.DuplicateKeys.Add(1) }

// AddUnmatchedFK records one unmatched_foreign_key_reference finding.
func (c *TableCounters) AddUnmatchedFK() { c.UnmatchedFK.Add(1) }

// AddMultiMatchedFK records one multiple_matched_rows finding.
func (c *TableCounters) AddMultiMatchedFK() { c.MultiMatchedFK.Add(1) }

// Snapshot is a point-in-time, non-atomic copy of a TableCounters, safe to
// log or format after the run completes.
type Snapshot struct {
	Table          string
	RowsRead       int64
	RowsValid      int64
	RowsWithErrors int64
	DuplicateKeys  int64
	UnmatchedFK    int64
	MultiMatchedFK int64
	Elapsed        time.Duration
}

// Snapshot copies c's current values under table's name.
func (c *TableCounters) Snapshot(table string) Snapshot {
	return Snapshot{
		Table:          table,
		RowsRead:       c.RowsRead.Load(),
		RowsValid:      c.RowsValid.Load(),
		RowsWithErrors: c.RowsWithErrors.Load(),
		DuplicateKeys:  c.DuplicateKeys.Load(),
		UnmatchedFK:    c.UnmatchedFK.Load(),
		MultiMatchedFK: c.MultiMatchedFK.Load(),
		Elapsed:        c.Elapsed,
	}
}

// Run aggregates per-table snapshots for an entire validation run.
type Run struct {
	Tables []Snapshot
}

// Add appends one table's snapshot to the run.
func (r *Run) Add(s Snapshot) { r.Tables = append(r.Tables, s) }

// Totals sums every per-table field across the run, for a one-line summary.
func (r *Run) Totals() Snapshot {
	var total Snapshot
	total.Table = "TOTAL"
	for _, s := range r.Tables {
		total.RowsRead += s.RowsRead
		total.RowsValid += s.RowsValid
		total.RowsWithErrors += s.RowsWithErrors
		total.DuplicateKeys += s.DuplicateKeys
		total.UnmatchedFK += s.UnmatchedFK
		total.MultiMatchedFK += s.MultiMatchedFK
		total.Elapsed += s.Elapsed
	}
	return total
}

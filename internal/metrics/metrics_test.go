package metrics

import "testing"

func TestTableCountersAddRow(t *testing.T) {
	var c TableCounters
	c.AddRow(false)
	c.AddRow(true)
	c.AddRow(false)

	snap := c.Snapshot("people.csv")
	if snap.RowsRead != 3 {
		t.Errorf("expected 3 rows read, got %d", snap.RowsRead)
	}
	if snap.RowsValid != 2 {
		t.Errorf("expected 2 valid rows, got %d", snap.RowsValid)
	}
	if snap.RowsWithErrors != 1 {
		t.Errorf("expected 1 row with errors, got %d", snap.RowsWithErrors)
	}
}

func TestRunTotals(t *testing.T) {
	var run Run
	run.Add(Snapshot{Table: "a.csv", RowsRead: 5, DuplicateKeys: 1})
	run.Add(Snapshot{Table: "b.csv", RowsRead: 3, UnmatchedFK: 2})

	totals := run.Totals()
	if totals.RowsRead != 8 {
		t.Errorf("expected 8 rows read total, got %d", totals.RowsRead)
	}
	if totals.DuplicateKeys != 1 || totals.UnmatchedFK != 2 {
		t.Errorf("unexpected totals: %+v", totals)
	}
}

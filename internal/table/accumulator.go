// Package table implements the table pipeline: reading a table's CSV file
// under its dialect, streaming records through row validators with
// bounded parallelism, and folding the results into per-table state used
// by the cross-table integrity checker.
package table

import (
	"github.com/zeebo/xxh3"

	"csvwvalidate/internal/keys"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/row"
	"csvwvalidate/internal/schema"
)

// Accumulator is the per-table state folded from every RowOutcome during
// pass 1: collected findings, the per-foreign-key child/parent key sets,
// and the primary-key hash-bucket index used to find pass-2 candidates.
// Fold is only ever called from the pipeline's single fold goroutine, so
// Accumulator needs no internal locking.
type Accumulator struct {
	table *schema.Table

	Findings []result.Finding

	ChildKeys  map[*schema.ForeignKeyDefinition]*keys.Set
	ParentKeys map[*schema.ReferencedForeignKey]*keys.Set

	pkBuckets map[uint64][]int
	rowsSeen  int
}

// NewAccumulator creates an Accumulator for table, pre-sizing the
// per-foreign-key key sets.
func NewAccumulator(t *schema.Table) *Accumulator {
	a := &Accumulator{
		table:      t,
		ChildKeys:  make(map[*schema.ForeignKeyDefinition]*keys.Set, len(t.Schema.ForeignKeys)),
		ParentKeys: make(map[*schema.ReferencedForeignKey]*keys.Set, len(t.ReferencedForeignKeys)),
		pkBuckets:  make(map[uint64][]int),
	}
	for _, fk := range t.Schema.ForeignKeys {
		a.ChildKeys[fk] = keys.NewSet()
	}
	for _, rfk := range t.ReferencedForeignKeys {
		a.ParentKeys[rfk] = keys.NewSet()
	}
	return a
}

// Fold merges one row's validation outcome into the accumulator: findings
// are appended; child/parent foreign-key values are inserted into their
// sets; the primary key, if any, is hashed into pkBuckets. All of these
// operations commute across rows, so Fold can be called in any order.
func (a *Accumulator) Fold(o row.Outcome) {
	a.rowsSeen++
	a.Findings = append(a.Findings, o.Findings...)

	for fk, kv := range o.ChildForeignKeys {
		if kv.Empty() {
			continue
		}
		a.ChildKeys[fk].InsertChild(kv, o.RecordNumber)
	}
	for rfk, kv := range o.ParentForeignKeyReferences {
		if kv.Empty() {
			continue
		}
		a.ParentKeys[rfk].InsertParent(kv, o.RecordNumber)
	}

	if len(o.PrimaryKeyValue) > 0 && !o.PrimaryKeyValue.Empty() {
		h := hashKeyValue(o.PrimaryKeyValue)
		a.pkBuckets[h] = append(a.pkBuckets[h], o.RecordNumber)
	}
}

// hashKeyValue computes a stable, non-cryptographic hash of a KeyValue for
// the pass-1 hash-bucket index. A standard non-cryptographic hash
// suffices here since pass 2 re-validates every colliding row before any
// duplicate_key finding is reported — a bucket collision alone is never
// treated as a duplicate.
func hashKeyValue(kv keys.KeyValue) uint64 {
	return xxh3.HashString(kv.String())
}

// CollidingRows returns the union of all row numbers that landed in any
// hash bucket containing 2 or more rows — the candidate set pass 2
// re-validates to resolve true duplicates from mere hash collisions.
func (a *Accumulator) CollidingRows() []int {
	var rows []int
	for _, bucket := range a.pkBuckets {
		if len(bucket) >= 2 {
			rows = append(rows, bucket...)
		}
	}
	return rows
}

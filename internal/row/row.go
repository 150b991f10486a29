// Package row implements the row validator: applying every column
// validator across one CSV record and assembling a RowOutcome carrying
// schema findings plus the primary-key and foreign-key tuples needed by
// the table pipeline and cross-table integrity checker.
package row

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"csvwvalidate/internal/column"
	"csvwvalidate/internal/keys"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/schema"
)

// Outcome is everything the rest of the pipeline needs from one validated
// record.
type Outcome struct {
	RecordNumber int
	Findings     []result.Finding

	PrimaryKeyValue keys.KeyValue

	ChildForeignKeys           map[*schema.ForeignKeyDefinition]keys.KeyValue
	ParentForeignKeyReferences map[*schema.ReferencedForeignKey]keys.KeyValue
}

// Validate applies table's column validators to record (a fully-parsed
// CSV record; record[i] is the cell under the column with Ordinal i+1),
// in parallel across columns, and assembles the resulting Outcome.
// recordNumber is the 1-based record number as reported by the CSV
// reader.
func Validate(ctx context.Context, table *schema.Table, record []string, recordNumber int) Outcome {
	cols := table.Schema.Columns
	values := make([][]keyItemValue, len(cols))
	findingsPerCol := make([][]column.Finding, len(cols))

	g, _ := errgroup.WithContext(ctx)
	for i, col := range cols {
		i, col := i, col
		g.Go(func() error {
			var cell string
			if i < len(record) {
				cell = record[i]
			}
			out := column.Validate(col, cell)
			items := make([]keyItemValue, len(out.Values))
			for j, v := range out.Values {
				items[j] = keyItemValue(v.StringForm())
			}
			values[i] = items
			findingsPerCol[i] = out.Findings
			return nil
		})
	}
	// Column validation is pure and never returns an error; the errgroup
	// is used purely for the parallel fan-out at the column granularity.
	_ = g.Wait()

	outcome := Outcome{RecordNumber: recordNumber}
	for _, findings := range findingsPerCol {
		for _, f := range findings {
			outcome.Findings = append(outcome.Findings, result.Finding{
				Type:     f.Type,
				Category: f.Category,
				Row:      recordNumber,
				Column:   f.Column,
				Content:  f.Content,
				Extra:    f.Extra,
			})
		}
	}

	byOrdinal := make(map[int][]keyItemValue, len(cols))
	for i, col := range cols {
		byOrdinal[col.Ordinal] = values[i]
	}

	outcome.PrimaryKeyValue = assembleKey(table.Schema.PrimaryKey, byOrdinal)

	if len(table.Schema.ForeignKeys) > 0 {
		outcome.ChildForeignKeys = make(map[*schema.ForeignKeyDefinition]keys.KeyValue, len(table.Schema.ForeignKeys))
		for _, fk := range table.Schema.ForeignKeys {
			outcome.ChildForeignKeys[fk] = assembleKey(fk.LocalColumns, byOrdinal)
		}
	}

	if len(table.ReferencedForeignKeys) > 0 {
		outcome.ParentForeignKeyReferences = make(map[*schema.ReferencedForeignKey]keys.KeyValue, len(table.ReferencedForeignKeys))
		for _, rfk := range table.ReferencedForeignKeys {
			outcome.ParentForeignKeyReferences[rfk] = assembleKey(rfk.ReferencedColumns, byOrdinal)
		}
	}

	return outcome
}

// keyItemValue is a parsed item's canonical string form.
type keyItemValue string

// assembleKey implements the key-assembly rule shared by primary keys,
// foreign-key definitions, and foreign-key references: for each named
// column, concatenate its parsed items' string forms (empty string join —
// list columns fully flatten into one component); the ordered list of
// per-column components is the KeyValue.
func assembleKey(cols []*schema.Column, byOrdinal map[int][]keyItemValue) keys.KeyValue {
	if len(cols) == 0 {
		return nil
	}
	kv := make(keys.KeyValue, len(cols))
	for i, col := range cols {
		items := byOrdinal[col.Ordinal]
		strs := make([]string, len(items))
		for j, it := range items {
			strs[j] = string(it)
		}
		kv[i] = strings.Join(strs, "")
	}
	return kv
}

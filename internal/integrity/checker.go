// Package integrity implements the cross-table integrity checker:
// resolving every foreign-key definition's child key values against its
// target table's parent key values once every table has completed its two
// validation passes.
package integrity

import (
	"fmt"

	"csvwvalidate/internal/keys"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/schema"
	"csvwvalidate/internal/table"
)

// Check resolves every foreign key declared across the tables in group
// against the accumulators produced by their table pipelines, keyed by
// table URL. It returns one finding per unresolved or ambiguously-resolved
// child key value, with CSVPath set to the child table the row belongs to;
// it never mutates the accumulators.
func Check(group *schema.TableGroup, accumulators map[string]*table.Accumulator) []result.Finding {
	var findings []result.Finding

	for _, t := range group.Tables {
		acc := accumulators[t.URL]
		if acc == nil {
			continue
		}
		for fk, childSet := range acc.ChildKeys {
			parentAcc := accumulators[fk.ReferencedTable.URL]
			if parentAcc == nil {
				continue
			}
			for _, f := range resolveForeignKey(fk, childSet, parentAcc) {
				f.CSVPath = t.URL
				findings = append(findings, f)
			}
		}
	}

	return findings
}

// resolveForeignKey resolves every child key value with at least one
// non-empty component against a match in the referenced table's parent
// key set of the same foreign-key shape; a match flagged IsDuplicate
// yields multiple_matched_rows instead of (or in addition to) being
// considered resolved.
func resolveForeignKey(fk *schema.ForeignKeyDefinition, childSet *keys.Set, parentAcc *table.Accumulator) []result.Finding {
	parentSet := parentSetFor(fk, parentAcc)
	if parentSet == nil {
		return nil
	}

	var findings []result.Finding
	for _, child := range childSet.All() {
		if child.Value.Empty() {
			continue
		}
		parent, ok := parentSet.Lookup(child.Value)
		if !ok {
			findings = append(findings, result.Finding{
				Type:     result.TypeUnmatchedFK,
				Category: "structure",
				Row:      child.RowNumber,
				Content:  fmt.Sprintf("no row in %q matches key %s", fk.ReferencedTable.URL, child.Value.String()),
			})
			continue
		}
		if parent.IsDuplicate {
			findings = append(findings, result.Finding{
				Type:     result.TypeMultipleMatchedFK,
				Category: "structure",
				Row:      child.RowNumber,
				Content:  fmt.Sprintf("multiple rows in %q match key %s", fk.ReferencedTable.URL, child.Value.String()),
			})
		}
	}
	return findings
}

// parentSetFor locates the parent key set on parentAcc whose
// ReferencedForeignKey mirrors fk. The accumulator indexes parent sets by
// *schema.ReferencedForeignKey pointer, so the matching mirror is found by
// comparing the shape (local/referenced column identity) rather than the
// originating ForeignKeyDefinition pointer.
func parentSetFor(fk *schema.ForeignKeyDefinition, parentAcc *table.Accumulator) *keys.Set {
	for rfk, set := range parentAcc.ParentKeys {
		if sameColumns(rfk.LocalColumns, fk.LocalColumns) && sameColumns(rfk.ReferencedColumns, fk.ReferencedColumns) {
			return set
		}
	}
	return nil
}

func sameColumns(a, b []*schema.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

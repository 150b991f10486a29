// Package result defines the structured output of a validation run:
// warnings and errors, each carrying a type, category, row/column context,
// and human-readable content.
package result

import "fmt"

// Finding is one warning or error entry.
type Finding struct {
	Type     string
	Category string
	Row      int
	Column   int
	Content  string
	Extra    string
	CSVPath  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] row=%d column=%d: %s", f.Type, f.Category, f.Row, f.Column, f.Content)
}

// WarningsAndErrors is the top-level result of validating one table or an
// entire run.
type WarningsAndErrors struct {
	Warnings []Finding
	Errors   []Finding
}

// Merge appends other's findings onto w, preserving order within each
// slice. It does not sort by row: a table's findings are in the order its
// row batches were folded.
func (w *WarningsAndErrors) Merge(other WarningsAndErrors) {
	w.Warnings = append(w.Warnings, other.Warnings...)
	w.Errors = append(w.Errors, other.Errors...)
}

// AddError appends f to w.Errors.
func (w *WarningsAndErrors) AddError(f Finding) { w.Errors = append(w.Errors, f) }

// AddWarning appends f to w.Warnings.
func (w *WarningsAndErrors) AddWarning(f Finding) { w.Warnings = append(w.Warnings, f) }

// HasErrors reports whether any error was recorded; this, and only this,
// determines the CLI's exit code.
func (w *WarningsAndErrors) HasErrors() bool { return len(w.Errors) > 0 }

// Error-type constants, grouped by category for readability. Not every
// constant is referenced directly by name elsewhere in the engine — some
// (e.g. the invalid_<datatype> family) are produced dynamically by
// datatype.ErrorTypeName — but all appear here as the taxonomy of record.
const (
	TypeBlankRows        = "Blank rows"
	TypeRaggedRows       = "ragged_rows"
	TypeExtraColumns     = "extra_columns"
	TypeMalformedRecord  = "Malformed row"
	TypeMalformedHeader  = "Malformed header"
	TypeEmptyColumnName  = "Empty column name"
	TypeDuplicateColName = "Duplicate column name"
	TypeInvalidHeader    = "Invalid Header"

	TypeDuplicateKey      = "duplicate_key"
	TypeUnmatchedFK       = "unmatched_foreign_key_reference"
	TypeMultipleMatchedFK = "multiple_matched_rows"

	TypeFileNotFound          = "file_not_found"
	TypeCSVCannotBeDownloaded = "csv_cannot_be_downloaded"
	TypeSourceURLMismatch     = "source_url_mismatch"
	TypeMetadata              = "metadata"
)

// warningTypes is the fixed set of finding types that belong in
// WarningsAndErrors.Warnings rather than .Errors; everything else is an
// error.
var warningTypes = map[string]bool{
	TypeEmptyColumnName:   true,
	TypeDuplicateColName:  true,
	TypeSourceURLMismatch: true,
}

// IsWarningType reports whether t is one of the warning-severity finding
// types.
func IsWarningType(t string) bool { return warningTypes[t] }

// Classify appends f to w.Warnings or w.Errors according to IsWarningType.
func (w *WarningsAndErrors) Classify(f Finding) {
	if IsWarningType(f.Type) {
		w.AddWarning(f)
		return
	}
	w.AddError(f)
}

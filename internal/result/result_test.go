package result

import "testing"

func TestClassifySortsByWarningType(t *testing.T) {
	var w WarningsAndErrors
	w.Classify(Finding{Type: TypeEmptyColumnName})
	w.Classify(Finding{Type: TypeDuplicateColName})
	w.Classify(Finding{Type: TypeSourceURLMismatch})
	w.Classify(Finding{Type: TypeDuplicateKey})
	w.Classify(Finding{Type: TypeUnmatchedFK})

	if len(w.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %d: %v", len(w.Warnings), w.Warnings)
	}
	if len(w.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(w.Errors), w.Errors)
	}
}

func TestMergeAppendsBothSlices(t *testing.T) {
	var w WarningsAndErrors
	w.AddWarning(Finding{Type: TypeEmptyColumnName, CSVPath: "a.csv"})
	w.AddError(Finding{Type: TypeFileNotFound, CSVPath: "a.csv"})

	var other WarningsAndErrors
	other.AddWarning(Finding{Type: TypeDuplicateColName, CSVPath: "b.csv"})
	other.AddError(Finding{Type: TypeDuplicateKey, CSVPath: "b.csv"})

	w.Merge(other)

	if len(w.Warnings) != 2 || len(w.Errors) != 2 {
		t.Fatalf("expected 2 warnings and 2 errors after merge, got %d/%d", len(w.Warnings), len(w.Errors))
	}
	if w.Warnings[1].CSVPath != "b.csv" {
		t.Errorf("expected merged warning to preserve source table, got %q", w.Warnings[1].CSVPath)
	}
}

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	var w WarningsAndErrors
	w.AddWarning(Finding{Type: TypeEmptyColumnName})
	if w.HasErrors() {
		t.Error("expected HasErrors to be false with only warnings recorded")
	}
	w.AddError(Finding{Type: TypeFileNotFound})
	if !w.HasErrors() {
		t.Error("expected HasErrors to be true once an error is recorded")
	}
}

func TestFindingStringIncludesTypeAndLocation(t *testing.T) {
	f := Finding{Type: TypeDuplicateKey, Category: "structure", Row: 3, Column: 1, Content: "key already present - 1"}
	got := f.String()
	want := "duplicate_key [structure] row=3 column=1: key already present - 1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

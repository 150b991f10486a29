package validator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"csvwvalidate/internal/config"
	"csvwvalidate/internal/logging"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/schema"
)

// fileOnlySource resolves every URL as a local path, for tests that don't
// need HTTP fetch behaviour.
type fileOnlySource struct{}

func (fileOnlySource) Fetch(_ context.Context, rawURL string) (string, error) {
	return rawURL, nil
}

// mismatchSource is a fileOnlySource that also reports every URL as having
// resolved somewhere else, exercising the source_url_mismatch wiring
// without a real HTTP redirect.
type mismatchSource struct {
	fileOnlySource
	resolvedURL string
}

func (m mismatchSource) ResolvedURLMismatch(rawURL string) (string, bool) {
	return m.resolvedURL, true
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateCleanTableGroupProducesNoFindings(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "people.csv", "id,name\n1,Alice\n2,Bob\n")

	idCol := &schema.Column{Ordinal: 1, Name: "id", BaseDatatype: "http://www.w3.org/2001/XMLSchema#string", NullTokens: []string{""}, Lang: "und"}
	nameCol := &schema.Column{Ordinal: 2, Name: "name", BaseDatatype: "http://www.w3.org/2001/XMLSchema#string", NullTokens: []string{""}, Lang: "und"}
	d := schema.DefaultDialect()
	tbl := &schema.Table{
		URL:     csvPath,
		Schema:  &schema.TableSchema{Columns: []*schema.Column{idCol, nameCol}, PrimaryKey: []*schema.Column{idCol}},
		Dialect: &d,
	}
	group := &schema.TableGroup{Tables: []*schema.Table{tbl}, Dialect: &d}

	eng := New(fileOnlySource{}, logging.Off, config.RuntimeConfig{})
	report, err := eng.Validate(context.Background(), group, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.HasErrors() {
		t.Errorf("expected no errors, got %v", report.Errors)
	}
	if len(report.Metrics.Tables) != 1 {
		t.Fatalf("expected 1 table metrics snapshot, got %d", len(report.Metrics.Tables))
	}
	if report.Metrics.Tables[0].RowsRead != 2 {
		t.Errorf("expected 2 rows read, got %d", report.Metrics.Tables[0].RowsRead)
	}
}

func TestValidateFlagsSourceURLMismatchAsWarning(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "people.csv", "id\n1\n")

	idCol := &schema.Column{Ordinal: 1, Name: "id", BaseDatatype: "http://www.w3.org/2001/XMLSchema#string", NullTokens: []string{""}, Lang: "und"}
	d := schema.DefaultDialect()
	tbl := &schema.Table{
		URL:     csvPath,
		Schema:  &schema.TableSchema{Columns: []*schema.Column{idCol}},
		Dialect: &d,
	}
	group := &schema.TableGroup{Tables: []*schema.Table{tbl}, Dialect: &d}

	eng := New(mismatchSource{resolvedURL: "https://example.org/moved.csv"}, logging.Off, config.RuntimeConfig{})
	report, err := eng.Validate(context.Background(), group, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, w := range report.Warnings {
		if w.Type == result.TypeSourceURLMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a source_url_mismatch warning, got %v", report.Warnings)
	}
}

func TestValidateMissingCSVYieldsFileNotFoundError(t *testing.T) {
	idCol := &schema.Column{Ordinal: 1, Name: "id", BaseDatatype: "http://www.w3.org/2001/XMLSchema#string", NullTokens: []string{""}, Lang: "und"}
	d := schema.DefaultDialect()
	tbl := &schema.Table{
		URL:     "/nonexistent/people.csv",
		Schema:  &schema.TableSchema{Columns: []*schema.Column{idCol}, PrimaryKey: []*schema.Column{idCol}},
		Dialect: &d,
	}
	group := &schema.TableGroup{Tables: []*schema.Table{tbl}, Dialect: &d}

	eng := New(fileOnlySource{}, logging.Off, config.RuntimeConfig{})
	report, err := eng.Validate(context.Background(), group, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.HasErrors() {
		t.Fatal("expected an error for a missing CSV")
	}
}

package validator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvwvalidate/internal/config"
	"csvwvalidate/internal/logging"
	"csvwvalidate/internal/result"
	"csvwvalidate/internal/schema"
)

// buildGroup decodes a normalised metadata document the way the CLI does,
// failing the test on a parse error (metadata intake itself is exercised
// more thoroughly in internal/schema).
func buildGroup(t *testing.T, metadataJSON string) (*schema.TableGroup, []schema.Issue) {
	t.Helper()
	group, issues := schema.Build([]byte(metadataJSON))
	for _, iss := range issues {
		if iss.Severity == schema.SeverityError {
			t.Fatalf("unexpected metadata error: %s", iss.Content)
		}
	}
	return group, issues
}

func runValidation(t *testing.T, group *schema.TableGroup, issues []schema.Issue) Report {
	t.Helper()
	eng := New(fileOnlySource{}, logging.Off, config.RuntimeConfig{})
	report, err := eng.Validate(context.Background(), group, issues)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return report
}

func writeScenarioCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const simpleTableMetadata = `{
	"tables": [
		{
			"url": "%s",
			"tableSchema": {
				"columns": [
					{"name": "Name"},
					{"name": "Age"},
					{"name": "City"}
				]
			}
		}
	]
}`

// A missing/empty header cell at column 2 yields a warning, and the
// column's Invalid Header mismatch yields an error, from the same row.
func TestMissingHeaderCellYieldsWarningAndInvalidHeaderError(t *testing.T) {
	path := writeScenarioCSV(t, "Name,,City\nAlice,30,London\n")
	metadata := fmt.Sprintf(simpleTableMetadata, path)
	group, issues := buildGroup(t, metadata)

	report := runValidation(t, group, issues)

	if !hasFinding(report.Warnings, result.TypeEmptyColumnName, 2) {
		t.Errorf("expected an Empty column name warning at column 2, got %v", report.Warnings)
	}
	if !hasFinding(report.Errors, result.TypeInvalidHeader, 2) {
		t.Errorf("expected an Invalid Header error at column 2, got %v", report.Errors)
	}
}

// A repeated header cell yields a Duplicate column name warning.
func TestDuplicateHeaderCellYieldsWarning(t *testing.T) {
	path := writeScenarioCSV(t, "Name,Age,Age\nAlice,30,1999\n")
	metadata := `{
		"tables": [
			{"url": "` + path + `", "tableSchema": {"columns": [{"name": "Name"}, {"name": "Age"}, {"name": "Age"}]}}
		]
	}`
	group, issues := buildGroup(t, metadata)
	report := runValidation(t, group, issues)

	found := false
	for _, w := range report.Warnings {
		if w.Type == result.TypeDuplicateColName && w.Column == 3 && w.Content == "Age" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Duplicate column name warning at column 3 content %q, got %v", "Age", report.Warnings)
	}
}

// Two datetimes differing only in UTC offset, representing the same
// instant, are equal primary keys — no duplicate_key finding.
func TestDatetimesEqualInstantAreNotDuplicateKeys(t *testing.T) {
	path := writeScenarioCSV(t, "stamp\n2004-04-12T20:20:00+02:00\n2004-04-12T18:20:00Z\n")
	metadata := `{
		"tables": [
			{"url": "` + path + `", "tableSchema": {
				"columns": [{"name": "stamp", "datatype": {"base": "dateTime"}}],
				"primaryKey": ["stamp"]
			}}
		]
	}`
	group, issues := buildGroup(t, metadata)
	report := runValidation(t, group, issues)

	if report.HasErrors() {
		t.Errorf("expected no errors for equal-instant datetimes, got %v", report.Errors)
	}
}

// Two rows sharing a primary key emit exactly one duplicate_key finding
// on the second occurrence.
func TestDuplicatePrimaryKeyYieldsOneFindingOnSecondRow(t *testing.T) {
	path := writeScenarioCSV(t, "id\nW00000001\nW00000001\n")
	metadata := `{
		"tables": [
			{"url": "` + path + `", "tableSchema": {
				"columns": [{"name": "id"}],
				"primaryKey": ["id"]
			}}
		]
	}`
	group, issues := buildGroup(t, metadata)
	report := runValidation(t, group, issues)

	var dupes []result.Finding
	for _, e := range report.Errors {
		if e.Type == result.TypeDuplicateKey {
			dupes = append(dupes, e)
		}
	}
	if len(dupes) != 1 {
		t.Fatalf("expected exactly 1 duplicate_key finding, got %v", dupes)
	}
	want := "key already present - W00000001"
	if dupes[0].Content != want {
		t.Errorf("expected content %q, got %q", want, dupes[0].Content)
	}
}

// A child row referencing a value absent from the parent's key set
// yields unmatched_foreign_key_reference at the child's row number.
func TestUnmatchedForeignKeyReferenceAtChildRow(t *testing.T) {
	parentPath := writeScenarioCSV(t, "id\nP1\nP2\n")
	childPath := writeScenarioCSV(t, "id,parent_id\nC1,P1\nC2,P2\nC3,P999\n")

	metadata := `{
		"tables": [
			{"url": "` + parentPath + `", "tableSchema": {"columns": [{"name": "id"}], "primaryKey": ["id"]}},
			{"url": "` + childPath + `", "tableSchema": {
				"columns": [{"name": "id"}, {"name": "parent_id"}],
				"primaryKey": ["id"],
				"foreignKeys": [{"columnReference": ["parent_id"], "reference": {"resource": "` + parentPath + `", "columnReference": ["id"]}}]
			}}
		]
	}`
	group, issues := buildGroup(t, metadata)
	report := runValidation(t, group, issues)

	found := false
	for _, e := range report.Errors {
		if e.Type == result.TypeUnmatchedFK && e.Row == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unmatched_foreign_key_reference at row 4, got %v", report.Errors)
	}
}

// A parent with a duplicated key, referenced by a child row, yields
// multiple_matched_rows at the child's row number.
func TestMultipleMatchedRowsAtChildRow(t *testing.T) {
	parentPath := writeScenarioCSV(t, "id\nP1\nP1\n")
	childPath := writeScenarioCSV(t, "id,parent_id\nC1,P1\n")

	metadata := `{
		"tables": [
			{"url": "` + parentPath + `", "tableSchema": {"columns": [{"name": "id"}]}},
			{"url": "` + childPath + `", "tableSchema": {
				"columns": [{"name": "id"}, {"name": "parent_id"}],
				"foreignKeys": [{"columnReference": ["parent_id"], "reference": {"resource": "` + parentPath + `", "columnReference": ["id"]}}]
			}}
		]
	}`
	group, issues := buildGroup(t, metadata)
	report := runValidation(t, group, issues)

	found := false
	for _, e := range report.Errors {
		if e.Type == result.TypeMultipleMatchedFK && e.Row == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected multiple_matched_rows at row 2, got %v", report.Errors)
	}
}

// A foreign key whose local column is list-valued is rejected at
// intake with a metadata error, never reaching the table pipeline.
func TestForeignKeyOverListColumnRejectedAtIntake(t *testing.T) {
	metadata := `{
		"tables": [
			{"url": "parent.csv", "tableSchema": {"columns": [{"name": "id"}]}},
			{"url": "child.csv", "tableSchema": {
				"columns": [{"name": "id"}, {"name": "tags", "separator": "|"}],
				"foreignKeys": [{"columnReference": ["tags"], "reference": {"resource": "parent.csv", "columnReference": ["id"]}}]
			}}
		]
	}`
	_, issues := schema.Build([]byte(metadata))

	found := false
	for _, iss := range issues {
		if iss.Type == "metadata" && strings.Contains(iss.Content, "foreign key references list column") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a metadata error about a list-valued foreign key column, got %v", issues)
	}
}

// Both tables have zero data rows; validation completes with no
// warnings or errors.
func TestEmptyChildAndParentTablesYieldNoFindings(t *testing.T) {
	parentPath := writeScenarioCSV(t, "id\n")
	childPath := writeScenarioCSV(t, "id,parent_id\n")

	metadata := `{
		"tables": [
			{"url": "` + parentPath + `", "tableSchema": {"columns": [{"name": "id"}]}},
			{"url": "` + childPath + `", "tableSchema": {
				"columns": [{"name": "id"}, {"name": "parent_id"}],
				"foreignKeys": [{"columnReference": ["parent_id"], "reference": {"resource": "` + parentPath + `", "columnReference": ["id"]}}]
			}}
		]
	}`
	group, issues := buildGroup(t, metadata)
	report := runValidation(t, group, issues)

	if report.HasErrors() || len(report.Warnings) != 0 {
		t.Errorf("expected no findings for empty tables, got errors=%v warnings=%v", report.Errors, report.Warnings)
	}
}

func hasFinding(findings []result.Finding, typ string, column int) bool {
	for _, f := range findings {
		if f.Type == typ && f.Column == column {
			return true
		}
	}
	return false
}

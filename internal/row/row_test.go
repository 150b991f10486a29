package row

import (
	"context"
	"testing"

	"csvwvalidate/internal/datatype"
	"csvwvalidate/internal/schema"
)

func buildTable() *schema.Table {
	id := &schema.Column{Ordinal: 1, Name: "id", BaseDatatype: datatype.String, NullTokens: []string{""}}
	tags := &schema.Column{Ordinal: 2, Name: "tags", BaseDatatype: datatype.String, NullTokens: []string{""}, HasSeparator: true, Separator: "|"}
	ts := &schema.TableSchema{Columns: []*schema.Column{id, tags}, PrimaryKey: []*schema.Column{id}}
	return &schema.Table{URL: "t.csv", Schema: ts}
}

func TestValidateAssemblesPrimaryKey(t *testing.T) {
	table := buildTable()
	out := Validate(context.Background(), table, []string{"row-1", "a|b"}, 2)
	if len(out.PrimaryKeyValue) != 1 || out.PrimaryKeyValue[0] != "row-1" {
		t.Errorf("expected primary key [row-1], got %v", out.PrimaryKeyValue)
	}
	if out.RecordNumber != 2 {
		t.Errorf("expected record number 2, got %d", out.RecordNumber)
	}
}

func TestValidateFlattensListColumnIntoSingleComponent(t *testing.T) {
	id := &schema.Column{Ordinal: 1, Name: "id", BaseDatatype: datatype.String, NullTokens: []string{""}, HasSeparator: true, Separator: "|"}
	ts := &schema.TableSchema{Columns: []*schema.Column{id}, PrimaryKey: []*schema.Column{id}}
	table := &schema.Table{URL: "t.csv", Schema: ts}

	out := Validate(context.Background(), table, []string{"a|b|c"}, 1)
	if len(out.PrimaryKeyValue) != 1 || out.PrimaryKeyValue[0] != "abc" {
		t.Errorf("expected list items flattened into one component \"abc\", got %v", out.PrimaryKeyValue)
	}
}

func TestValidateStampsRowNumberOnFindings(t *testing.T) {
	table := buildTable()
	out := Validate(context.Background(), table, []string{"", ""}, 7)
	table.Schema.Columns[0].Required = true
	out = Validate(context.Background(), table, []string{"", ""}, 7)
	if len(out.Findings) != 1 || out.Findings[0].Row != 7 {
		t.Errorf("expected a Required finding stamped with row 7, got %+v", out.Findings)
	}
}

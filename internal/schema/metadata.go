package schema

import (
	"encoding/json"
	"fmt"

	"csvwvalidate/internal/datatype"
	"csvwvalidate/internal/result"
)

// The structs below decode the normalised metadata shape: a root object
// with tables: [ { url, tableSchema: { columns, primaryKey?,
// foreignKeys? }, dialect? }, ... ]. String shorthands (datatype names,
// separators, column references) are already expanded to object/array
// forms by the upstream normaliser; intake here only resolves datatype
// URIs, inherits properties down the group→table→schema→column chain, and
// cross-links foreign keys.

type inheritable struct {
	AboutURL      *string      `json:"aboutUrl,omitempty"`
	PropertyURL   *string      `json:"propertyUrl,omitempty"`
	ValueURL      *string      `json:"valueUrl,omitempty"`
	Datatype      *rawDatatype `json:"datatype,omitempty"`
	Default       *string      `json:"default,omitempty"`
	Lang          *string      `json:"lang,omitempty"`
	Null          []string     `json:"null,omitempty"`
	Ordered       *bool        `json:"ordered,omitempty"`
	Required      *bool        `json:"required,omitempty"`
	Separator     *string      `json:"separator,omitempty"`
	TextDirection *string      `json:"textDirection,omitempty"`
}

// merge overlays non-nil/non-empty fields of child onto a copy of base,
// implementing the group→table→schema→column inheritance chain.
func (base inheritable) merge(child inheritable) inheritable {
	out := base
	if child.AboutURL != nil {
		out.AboutURL = child.AboutURL
	}
	if child.PropertyURL != nil {
		out.PropertyURL = child.PropertyURL
	}
	if child.ValueURL != nil {
		out.ValueURL = child.ValueURL
	}
	if child.Datatype != nil {
		out.Datatype = child.Datatype
	}
	if child.Default != nil {
		out.Default = child.Default
	}
	if child.Lang != nil {
		out.Lang = child.Lang
	}
	if len(child.Null) > 0 {
		out.Null = child.Null
	}
	if child.Ordered != nil {
		out.Ordered = child.Ordered
	}
	if child.Required != nil {
		out.Required = child.Required
	}
	if child.Separator != nil {
		out.Separator = child.Separator
	}
	if child.TextDirection != nil {
		out.TextDirection = child.TextDirection
	}
	return out
}

type rawDatatype struct {
	ID           string     `json:"@id,omitempty"`
	Base         string     `json:"base,omitempty"`
	Format       *rawFormat `json:"format,omitempty"`
	MinInclusive string     `json:"minInclusive,omitempty"`
	MaxInclusive string     `json:"maxInclusive,omitempty"`
	MinExclusive string     `json:"minExclusive,omitempty"`
	MaxExclusive string     `json:"maxExclusive,omitempty"`
	Length       *int       `json:"length,omitempty"`
	MinLength    *int       `json:"minLength,omitempty"`
	MaxLength    *int       `json:"maxLength,omitempty"`
}

// rawFormat decodes either a bare pattern string or a
// {pattern, groupChar, decimalChar} object, matching the CSV-W metadata
// vocabulary's leniency here.
type rawFormat struct {
	Pattern     string `json:"pattern,omitempty"`
	GroupChar   string `json:"groupChar,omitempty"`
	DecimalChar string `json:"decimalChar,omitempty"`
}

func (f *rawFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Pattern = s
		return nil
	}
	var obj struct {
		Pattern     string `json:"pattern,omitempty"`
		GroupChar   string `json:"groupChar,omitempty"`
		DecimalChar string `json:"decimalChar,omitempty"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Pattern, f.GroupChar, f.DecimalChar = obj.Pattern, obj.GroupChar, obj.DecimalChar
	return nil
}

type rawColumn struct {
	inheritable
	Name           string              `json:"name,omitempty"`
	ID             string              `json:"@id,omitempty"`
	Titles         map[string][]string `json:"titles,omitempty"`
	Length         *int                `json:"length,omitempty"`
	MinLength      *int                `json:"minLength,omitempty"`
	MaxLength      *int                `json:"maxLength,omitempty"`
	Virtual        bool                `json:"virtual,omitempty"`
	SuppressOutput bool                `json:"suppressOutput,omitempty"`
}

type rawFKReference struct {
	Resource        string   `json:"resource"`
	ColumnReference []string `json:"columnReference"`
}

type rawForeignKey struct {
	ColumnReference []string       `json:"columnReference"`
	Reference       rawFKReference `json:"reference"`
}

type rawTableSchema struct {
	inheritable
	Columns     []rawColumn     `json:"columns"`
	PrimaryKey  []string        `json:"primaryKey,omitempty"`
	ForeignKeys []rawForeignKey `json:"foreignKeys,omitempty"`
}

type rawDialect struct {
	Delimiter     string `json:"delimiter,omitempty"`
	QuoteChar     string `json:"quoteChar,omitempty"`
	DoubleQuote   *bool  `json:"doubleQuote,omitempty"`
	SkipRows      *int   `json:"skipRows,omitempty"`
	SkipBlankRows *bool  `json:"skipBlankRows,omitempty"`
	Header        *bool  `json:"header,omitempty"`
	Encoding      string `json:"encoding,omitempty"`
	Trim          *bool  `json:"trim,omitempty"`
}

func (d *rawDialect) resolve() *Dialect {
	out := DefaultDialect()
	if d == nil {
		return &out
	}
	if d.Delimiter != "" {
		out.Delimiter = d.Delimiter
	}
	if d.QuoteChar != "" {
		out.QuoteChar = d.QuoteChar
	}
	if d.DoubleQuote != nil {
		out.DoubleQuote = *d.DoubleQuote
	}
	if d.SkipRows != nil {
		out.SkipRows = *d.SkipRows
	}
	if d.SkipBlankRows != nil {
		out.SkipBlankRows = *d.SkipBlankRows
	}
	if d.Header != nil {
		out.Header = *d.Header
	}
	if d.Encoding != "" {
		out.Encoding = d.Encoding
	}
	if d.Trim != nil {
		out.Trim = *d.Trim
	}
	return &out
}

type rawTable struct {
	inheritable
	URL            string          `json:"url"`
	ID             string          `json:"@id,omitempty"`
	SuppressOutput bool            `json:"suppressOutput,omitempty"`
	TableSchema    *rawTableSchema `json:"tableSchema,omitempty"`
	Dialect        *rawDialect     `json:"dialect,omitempty"`
	Notes          any             `json:"notes,omitempty"`
}

type rawTableGroup struct {
	inheritable
	Tables  []rawTable  `json:"tables"`
	Dialect *rawDialect `json:"dialect,omitempty"`
}

// Build parses a normalised metadata document and produces a TableGroup,
// plus any metadata Issues encountered. A per-table metadata error is
// recorded as an Issue naming the table and drops only the offending
// element (an unknown primary-key column, or a foreign key that cannot be
// resolved); the table itself stays in the returned TableGroup, and
// sibling tables are unaffected.
func Build(data []byte) (*TableGroup, []Issue) {
	var root rawTableGroup
	if err := json.Unmarshal(data, &root); err != nil {
		return &TableGroup{}, []Issue{{Severity: SeverityError, Type: result.TypeMetadata, Content: fmt.Sprintf("cannot parse metadata: %v", err)}}
	}

	group := &TableGroup{Dialect: root.Dialect.resolve()}
	var issues []Issue

	type pending struct {
		table *Table
		raw   rawForeignKey
	}
	var pendingFKs []pending

	for _, rt := range root.Tables {
		inherited := root.inheritable.merge(rt.inheritable)

		table := &Table{
			URL:            rt.URL,
			ID:             rt.ID,
			SuppressOutput: rt.SuppressOutput,
			Notes:          rt.Notes,
		}
		if rt.Dialect != nil {
			table.Dialect = rt.Dialect.resolve()
		} else {
			table.Dialect = group.Dialect
		}

		if rt.TableSchema == nil {
			table.Schema = &TableSchema{}
			group.Tables = append(group.Tables, table)
			continue
		}

		schemaInherited := inherited.merge(rt.TableSchema.inheritable)

		ts := &TableSchema{}
		for i, rc := range rt.TableSchema.Columns {
			colInherited := schemaInherited.merge(rc.inheritable)
			col, err := buildColumn(i+1, rc, colInherited)
			if err != nil {
				issues = append(issues, Issue{Severity: SeverityError, Table: table.URL, Type: result.TypeMetadata, Content: err.Error()})
				continue
			}
			ts.Columns = append(ts.Columns, col)
		}

		for _, name := range rt.TableSchema.PrimaryKey {
			col := ts.ColumnByName(name)
			if col == nil {
				issues = append(issues, Issue{Severity: SeverityError, Table: table.URL, Type: result.TypeMetadata,
					Content: fmt.Sprintf("primary key references unknown column %q", name)})
				continue
			}
			ts.PrimaryKey = append(ts.PrimaryKey, col)
		}

		table.Schema = ts
		group.Tables = append(group.Tables, table)

		for _, rfk := range rt.TableSchema.ForeignKeys {
			pendingFKs = append(pendingFKs, pending{table: table, raw: rfk})
		}
	}

	for _, p := range pendingFKs {
		fk, issue := resolveForeignKey(group, p.table, p.raw)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		p.table.Schema.ForeignKeys = append(p.table.Schema.ForeignKeys, fk)
		if fk.ReferencedTable != nil {
			fk.ReferencedTable.ReferencedForeignKeys = append(fk.ReferencedTable.ReferencedForeignKeys, &ReferencedForeignKey{
				SourceTable:       p.table,
				LocalColumns:      fk.LocalColumns,
				ReferencedColumns: fk.ReferencedColumns,
			})
		}
	}

	return group, issues
}

func buildColumn(ordinal int, rc rawColumn, inh inheritable) (*Column, error) {
	dt := inh.Datatype
	if dt == nil {
		dt = &rawDatatype{ID: "string"}
	}
	name := dt.Base
	if name == "" {
		name = dt.ID
	}
	if name == "" {
		name = "string"
	}
	uri := datatype.ResolveName(name)

	var format *datatype.Format
	if dt.Format != nil {
		f := &datatype.Format{Pattern: dt.Format.Pattern}
		if dt.Format.GroupChar != "" {
			f.GroupChar = []rune(dt.Format.GroupChar)[0]
		}
		if dt.Format.DecimalChar != "" {
			f.DecimalChar = []rune(dt.Format.DecimalChar)[0]
		}
		format = f
	}

	nullTokens := inh.Null
	if len(nullTokens) == 0 {
		nullTokens = []string{""}
	}

	lang := "und"
	if inh.Lang != nil && *inh.Lang != "" {
		lang = *inh.Lang
	}

	col := &Column{
		Ordinal:      ordinal,
		Name:         rc.Name,
		ID:           rc.ID,
		BaseDatatype: uri,
		Format:       format,
		NullTokens:   nullTokens,
		Required:     inh.Required != nil && *inh.Required,
		Titles:       rc.Titles,
		Lang:         lang,
		Virtual:      rc.Virtual,
		SuppressOutput: rc.SuppressOutput,
		Range: RangeRestriction{
			MinInclusive: dt.MinInclusive,
			MaxInclusive: dt.MaxInclusive,
			MinExclusive: dt.MinExclusive,
			MaxExclusive: dt.MaxExclusive,
		},
	}
	if inh.AboutURL != nil {
		col.AboutURL = *inh.AboutURL
	}
	if inh.PropertyURL != nil {
		col.PropertyURL = *inh.PropertyURL
	}
	if inh.ValueURL != nil {
		col.ValueURL = *inh.ValueURL
	}
	if inh.TextDirection != nil {
		col.TextDirection = *inh.TextDirection
	}
	if inh.Ordered != nil {
		col.Ordered = *inh.Ordered
	}
	if inh.Separator != nil && *inh.Separator != "" {
		col.HasSeparator = true
		col.Separator = *inh.Separator
	}

	length := rc.Length
	if length == nil {
		length = dt.Length
	}
	col.Length = LengthRestriction{Length: length, MinLength: firstNonNil(rc.MinLength, dt.MinLength), MaxLength: firstNonNil(rc.MaxLength, dt.MaxLength)}

	return col, nil
}

func firstNonNil(a, b *int) *int {
	if a != nil {
		return a
	}
	return b
}

// resolveForeignKey cross-links a raw foreign-key declaration to its local
// and referenced columns, rejecting one whose local columns include a
// list-valued column — a foreign key can't be built over a column whose
// cell values are themselves lists.
func resolveForeignKey(group *TableGroup, table *Table, raw rawForeignKey) (*ForeignKeyDefinition, *Issue) {
	fk := &ForeignKeyDefinition{ResourceURL: raw.Reference.Resource}
	for _, name := range raw.ColumnReference {
		col := table.Schema.ColumnByName(name)
		if col == nil {
			return nil, &Issue{Severity: SeverityError, Table: table.URL, Type: result.TypeMetadata,
				Content: fmt.Sprintf("foreign key references unknown local column %q", name)}
		}
		fk.LocalColumns = append(fk.LocalColumns, col)
	}
	for _, col := range fk.LocalColumns {
		if col.IsListValued() {
			return nil, &Issue{Severity: SeverityError, Table: table.URL, Type: result.TypeMetadata,
				Content: fmt.Sprintf("foreign key references list column %q", col.Name)}
		}
	}

	target := group.TableByURL(raw.Reference.Resource)
	if target == nil {
		return nil, &Issue{Severity: SeverityError, Table: table.URL, Type: result.TypeMetadata,
			Content: fmt.Sprintf("foreign key reference resource %q does not resolve to a declared table", raw.Reference.Resource)}
	}
	fk.ReferencedTable = target
	for _, name := range raw.Reference.ColumnReference {
		col := target.Schema.ColumnByName(name)
		if col == nil {
			return nil, &Issue{Severity: SeverityError, Table: table.URL, Type: result.TypeMetadata,
				Content: fmt.Sprintf("foreign key reference column %q not declared on table %q", name, target.URL)}
		}
		fk.ReferencedColumns = append(fk.ReferencedColumns, col)
	}
	return fk, nil
}

// Package schema holds the in-memory CSV-W schema model and the intake
// logic that builds it from a normalised metadata object tree.
package schema

import (
	"sync"

	"csvwvalidate/internal/datatype"
)

// Dialect is a CSV parser configuration.
type Dialect struct {
	Delimiter     string
	QuoteChar     string
	DoubleQuote   bool
	SkipRows      int
	SkipBlankRows bool
	Header        bool
	Encoding      string
	Trim          bool
}

// DefaultDialect returns the dialect defaults.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter:     ",",
		QuoteChar:     `"`,
		DoubleQuote:   true,
		SkipRows:      0,
		SkipBlankRows: true,
		Header:        true,
		Encoding:      "utf-8",
		Trim:          true,
	}
}

// LengthRestriction holds a column's length facets, applied to an item's
// string form (or the base64Binary/hexBinary-adjusted length).
type LengthRestriction struct {
	Length    *int
	MinLength *int
	MaxLength *int
}

// RangeRestriction holds a column's numeric/date range facets as raw
// strings; they are parsed lazily, once, under the column's own datatype
// under the column's own datatype, parsed lazily, once.
type RangeRestriction struct {
	MinInclusive string
	MaxInclusive string
	MinExclusive string
	MaxExclusive string
}

func (r RangeRestriction) empty() bool {
	return r.MinInclusive == "" && r.MaxInclusive == "" && r.MinExclusive == "" && r.MaxExclusive == ""
}

// parsedRange is the once-parsed form of a RangeRestriction, cached on the
// Column that owns it.
type parsedRange struct {
	MinInclusive, MaxInclusive datatype.Value
	MinExclusive, MaxExclusive datatype.Value
	HasMinInclusive            bool
	HasMaxInclusive            bool
	HasMinExclusive            bool
	HasMaxExclusive            bool
}

// Column is a single schema column.
type Column struct {
	Ordinal int
	Name    string
	ID      string

	BaseDatatype string
	Format       *datatype.Format

	NullTokens   []string
	HasSeparator bool
	Separator    string
	Required     bool

	Length LengthRestriction
	Range  RangeRestriction

	Titles map[string][]string
	Lang   string

	AboutURL      string
	PropertyURL   string
	ValueURL      string
	TextDirection string
	Ordered       bool
	Virtual       bool
	SuppressOutput bool

	rangeOnce   sync.Once
	rangeParsed parsedRange
	rangeErr    error
}

// IsListValued reports whether cell values in this column are split on a
// separator before per-item parsing.
func (c *Column) IsListValued() bool { return c.HasSeparator }

// ResolvedRange parses c.Range once, under c.BaseDatatype/c.Format, caching
// the result for subsequent calls.
func (c *Column) ResolvedRange() (parsedRange, error) {
	c.rangeOnce.Do(func() {
		if c.Range.empty() {
			return
		}
		var pr parsedRange
		if c.Range.MinInclusive != "" {
			v, err := datatype.Parse(c.BaseDatatype, c.Format, c.Range.MinInclusive)
			if err != nil {
				c.rangeErr = err
				return
			}
			pr.MinInclusive, pr.HasMinInclusive = v, true
		}
		if c.Range.MaxInclusive != "" {
			v, err := datatype.Parse(c.BaseDatatype, c.Format, c.Range.MaxInclusive)
			if err != nil {
				c.rangeErr = err
				return
			}
			pr.MaxInclusive, pr.HasMaxInclusive = v, true
		}
		if c.Range.MinExclusive != "" {
			v, err := datatype.Parse(c.BaseDatatype, c.Format, c.Range.MinExclusive)
			if err != nil {
				c.rangeErr = err
				return
			}
			pr.MinExclusive, pr.HasMinExclusive = v, true
		}
		if c.Range.MaxExclusive != "" {
			v, err := datatype.Parse(c.BaseDatatype, c.Format, c.Range.MaxExclusive)
			if err != nil {
				c.rangeErr = err
				return
			}
			pr.MaxExclusive, pr.HasMaxExclusive = v, true
		}
		c.rangeParsed = pr
	})
	return c.rangeParsed, c.rangeErr
}

// ForeignKeyDefinition is the child-side declaration of a foreign key
// an ordered list of local columns plus a resolved reference into
// another table's columns.
type ForeignKeyDefinition struct {
	LocalColumns      []*Column
	ResourceURL       string
	ReferencedColumns []*Column // resolved once the target table is known
	ReferencedTable   *Table
}

// ReferencedForeignKey is the parent-side mirror attached to the table a
// ForeignKeyDefinition points into.
type ReferencedForeignKey struct {
	SourceTable       *Table
	LocalColumns      []*Column // on SourceTable
	ReferencedColumns []*Column // on the table this value is attached to
}

// TableSchema is a table's column list, foreign keys, and primary key.
type TableSchema struct {
	Columns     []*Column
	ForeignKeys []*ForeignKeyDefinition
	PrimaryKey  []*Column
}

// ColumnByName returns the first column named name, or nil.
func (s *TableSchema) ColumnByName(name string) *Column {
	for _, c := range s.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Table is a single CSV-W table. Equality and hash are by URL.
type Table struct {
	URL            string
	SuppressOutput bool
	ID             string
	Schema         *TableSchema
	Dialect        *Dialect
	Notes          any

	ReferencedForeignKeys []*ReferencedForeignKey
}

// TableGroup is an ordered collection of tables sharing a dialect.
type TableGroup struct {
	Tables  []*Table
	Dialect *Dialect
}

// TableByURL returns the table with the given URL, or nil.
func (g *TableGroup) TableByURL(url string) *Table {
	for _, t := range g.Tables {
		if t.URL == url {
			return t
		}
	}
	return nil
}

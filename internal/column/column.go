// Package column implements the column validator: turning one raw CSV
// cell string into a list of parsed datatype.Value items plus a list of
// schema-violation findings, honouring null handling, list splitting, and
// length/range/required/format checks, in a fixed order for diagnostic
// consistency.
package column

import (
	"fmt"
	"strings"

	"csvwvalidate/internal/datatype"
	"csvwvalidate/internal/schema"
)

// Finding is one schema-violation emitted while validating a cell. Row
// number is not yet known at this layer; the row validator stamps it in
// when assembling the final result.Error.
type Finding struct {
	Type     string
	Category string
	Column   int
	Content  string
	Extra    string
}

// Outcome is the result of validating one cell against its column.
type Outcome struct {
	Findings []Finding
	Values   []datatype.Value
}

// Validate runs the null/list-split/parse/facet-check sequence against
// cell under col's schema.
func Validate(col *schema.Column, cell string) Outcome {
	var out Outcome

	if isNullToken(cell, col.NullTokens) {
		if col.Required {
			out.Findings = append(out.Findings, requiredFinding(col))
		}
		return out
	}

	items := []string{cell}
	if col.IsListValued() {
		items = strings.Split(cell, col.Separator)
	}

	for _, item := range items {
		v, err := datatype.Parse(col.BaseDatatype, col.Format, item)
		if err != nil {
			out.Findings = append(out.Findings, Finding{
				Type:     datatype.ErrorTypeName(col.BaseDatatype),
				Category: "schema",
				Column:   col.Ordinal,
				Content:  err.Error(),
				Extra:    fmt.Sprintf("required => %v", col.Required),
			})
			// No value (not even an "invalid - <raw>" sentinel) is added
			// to out.Values for this item, so an unparseable item never
			// reaches primary-key or foreign-key assembly downstream.
			continue
		}

		itemOK := true
		sform := v.StringForm()

		if finding, bad := checkLength(col, v, sform); bad {
			out.Findings = append(out.Findings, finding)
			itemOK = false
		}

		if findings, bad := checkRange(col, v); bad {
			out.Findings = append(out.Findings, findings...)
			itemOK = false
		}

		if col.Required && sform == "" {
			out.Findings = append(out.Findings, requiredFinding(col))
			itemOK = false
		}

		if col.Format != nil && col.Format.Pattern != "" && !datatype.FormatValidate(col.BaseDatatype, col.Format, item) {
			out.Findings = append(out.Findings, Finding{
				Type:     "format",
				Category: "schema",
				Column:   col.Ordinal,
				Content:  fmt.Sprintf("%q does not match format pattern %q", item, col.Format.Pattern),
			})
			itemOK = false
		}

		if itemOK {
			out.Values = append(out.Values, v)
		}
	}

	return out
}

func isNullToken(cell string, tokens []string) bool {
	for _, t := range tokens {
		if cell == t {
			return true
		}
	}
	return false
}

func requiredFinding(col *schema.Column) Finding {
	return Finding{
		Type:     "Required",
		Category: "schema",
		Column:   col.Ordinal,
		Content:  fmt.Sprintf("column %q requires a value", col.Name),
		Extra:    "required => true",
	}
}

// itemLength accounts for the binary datatypes' special length rules:
// base64Binary counts decoded bytes (padding '=' does not count as data),
// hexBinary counts byte pairs.
func itemLength(col *schema.Column, sform string) int {
	switch col.BaseDatatype {
	case datatype.Base64Binary:
		trimmed := strings.TrimRight(sform, "=")
		return (len(trimmed) * 3) / 4
	case datatype.HexBinary:
		return len(sform) / 2
	default:
		return len([]rune(sform))
	}
}

func checkLength(col *schema.Column, v datatype.Value, sform string) (Finding, bool) {
	l := col.Length
	if l.Length == nil && l.MinLength == nil && l.MaxLength == nil {
		return Finding{}, false
	}
	n := itemLength(col, sform)
	if l.Length != nil && n != *l.Length {
		return Finding{Type: "length", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("length %d, expected %d", n, *l.Length)}, true
	}
	if l.MinLength != nil && n < *l.MinLength {
		return Finding{Type: "minLength", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("length %d is below minLength %d", n, *l.MinLength)}, true
	}
	if l.MaxLength != nil && n > *l.MaxLength {
		return Finding{Type: "maxLength", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("length %d exceeds maxLength %d", n, *l.MaxLength)}, true
	}
	return Finding{}, false
}

func checkRange(col *schema.Column, v datatype.Value) ([]Finding, bool) {
	bounds, err := col.ResolvedRange()
	if err != nil {
		return nil, false
	}
	var findings []Finding
	if bounds.HasMinInclusive && compareValues(v, bounds.MinInclusive) < 0 {
		findings = append(findings, Finding{Type: "minInclusive", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("%q is below minInclusive %q", v.StringForm(), bounds.MinInclusive.StringForm())})
	}
	if bounds.HasMaxInclusive && compareValues(v, bounds.MaxInclusive) > 0 {
		findings = append(findings, Finding{Type: "maxInclusive", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("%q exceeds maxInclusive %q", v.StringForm(), bounds.MaxInclusive.StringForm())})
	}
	if bounds.HasMinExclusive && compareValues(v, bounds.MinExclusive) <= 0 {
		findings = append(findings, Finding{Type: "minExclusive", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("%q is not above minExclusive %q", v.StringForm(), bounds.MinExclusive.StringForm())})
	}
	if bounds.HasMaxExclusive && compareValues(v, bounds.MaxExclusive) >= 0 {
		findings = append(findings, Finding{Type: "maxExclusive", Category: "schema", Column: col.Ordinal,
			Content: fmt.Sprintf("%q is not below maxExclusive %q", v.StringForm(), bounds.MaxExclusive.StringForm())})
	}
	return findings, len(findings) > 0
}

// compareValues orders two values of the same Kind: numeric compares use
// parsed numeric magnitude, datetime compares use UTC instant ordering.
func compareValues(a, b datatype.Value) int {
	switch a.Kind {
	case datatype.KindInteger:
		return a.Int.Cmp(b.Int)
	case datatype.KindDecimal:
		return a.Dec.Cmp(b.Dec)
	case datatype.KindFloat:
		switch {
		case a.Float < b.Float:
			return -1
		case a.Float > b.Float:
			return 1
		default:
			return 0
		}
	case datatype.KindDateTime:
		return a.Time.Compare(b.Time)
	default:
		return strings.Compare(a.StringForm(), b.StringForm())
	}
}

// Package datatype implements the CSV-W datatype parser registry: pure,
// per-value parsers for each supported XML Schema datatype URI, plus the
// format-driven parsers (LDML numeric patterns, date/time patterns, and
// opaque-string regex validation) that back them when a column declares a
// format.pattern.
package datatype

import (
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the concrete representation held by a Value.
type Kind uint8

const (
	// KindString covers string, and all the text-like XSD datatypes that
	// parse to a (possibly trimmed) string: normalizedString, token,
	// language, Name, NMTOKEN, anyURI, base64Binary, hexBinary, QName,
	// XMLLiteral, HTML, JSON, anyAtomicType.
	KindString Kind = iota
	// KindBool covers boolean.
	KindBool
	// KindDecimal covers decimal, parsed to arbitrary precision.
	KindDecimal
	// KindInteger covers integer, long, int, short, byte and their
	// non-negative/positive/unsigned variants, parsed to arbitrary
	// precision and then range-checked.
	KindInteger
	// KindFloat covers float and double.
	KindFloat
	// KindDateTime covers date, dateTime, dateTimeStamp, time, and the
	// gregorian-fragment datatypes (gDay, gMonth, gMonthDay, gYear,
	// gYearMonth).
	KindDateTime
	// KindDuration covers duration, dayTimeDuration, yearMonthDuration,
	// which are validated against a regex but otherwise kept opaque.
	KindDuration
)

// Value is the tagged result of successfully parsing one cell item against a
// column's datatype. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind

	Str      string // KindString, KindDuration (opaque text)
	Bool     bool   // KindBool
	Int      *big.Int
	Dec      decimal.Decimal
	Float    float64
	Time     time.Time // always normalised to UTC
	HasZone  bool      // KindDateTime: whether the source literal carried a zone
	RawInput string    // the original item text, kept for display/content strings
}

// StringForm returns the canonical string representation of v used for
// key-component concatenation and equality comparison. Two values that
// represent the same XSD value under their datatype's equality rules (e.g.
// "1.0" and "1.00" as decimal, or two datetimes naming the same instant in
// different offsets) produce the same StringForm.
func (v Value) StringForm() string {
	switch v.Kind {
	case KindString, KindDuration:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInteger:
		return v.Int.String()
	case KindDecimal:
		return canonicalDecimalString(v.Dec)
	case KindFloat:
		return formatFloatCanonical(v.Float)
	case KindDateTime:
		return v.Time.UTC().Format(time.RFC3339Nano)
	default:
		return v.RawInput
	}
}

// canonicalDecimalString strips trailing fractional zeros from a decimal's
// string form, so that "1.0" and "1.00" compare equal as key components.
func canonicalDecimalString(d decimal.Decimal) string {
	coeff := d.Coefficient()
	exp := d.Exponent()
	if coeff.Sign() == 0 {
		return "0"
	}
	ten := big.NewInt(10)
	mod := new(big.Int)
	c := new(big.Int).Set(coeff)
	for exp < 0 {
		q, m := new(big.Int).QuoRem(c, ten, mod)
		if m.Sign() != 0 {
			break
		}
		c = q
		exp++
	}
	return decimal.NewFromBigInt(c, exp).String()
}

// formatFloatCanonical renders f as its key-component/display string.
// decimal.NewFromFloat panics on Inf/NaN, but both are valid lexical values
// for float/double, so they're special-cased before ever reaching it.
func formatFloatCanonical(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	default:
		return decimal.NewFromFloat(f).String()
	}
}

// InvalidSentinel builds the "invalid - <raw>" sentinel for an item that
// failed datatype parsing, as a KindString Value. column.Validate does not
// call it: a failed item contributes no value to the column's results.
func InvalidSentinel(raw string) Value {
	return Value{Kind: KindString, Str: "invalid - " + raw, RawInput: raw}
}

package datatype

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	decimalRe = regexp.MustCompile(`^(\+|-)?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)
	integerRe = regexp.MustCompile(`^[\-+]?[0-9]+$`)
	floatRe   = regexp.MustCompile(`^(\+|-)?([0-9]+(\.[0-9]*)?|\.[0-9]+)([Ee](\+|-)?[0-9]+)?$`)
)

// standardize implements un-pattern-ed numeric standardisation: strip a
// trailing percent/permille sign, drop group-character digit separators,
// and normalise the decimal character to '.'.
func standardize(s string, groupChar, decimalChar rune) string {
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSuffix(s, "‰") // permille sign

	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i, r := range runes {
		if r == groupChar && i > 0 && i < len(runes)-1 &&
			isDigit(runes[i-1]) && isDigit(runes[i+1]) {
			continue
		}
		if r == decimalChar && decimalChar != '.' && i > 0 && i < len(runes)-1 &&
			isDigit(runes[i-1]) && isDigit(runes[i+1]) {
			out = append(out, '.')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// parseDecimal parses an arbitrary-precision decimal value, either via the
// column's LDML pattern (if present) or via standardisation + regex.
func parseDecimal(format *Format, item string) (Value, error) {
	pattern := format.pattern()
	if pattern != "" {
		d, err := parseLDMLNumber(pattern, format.groupChar(), format.decimalChar(), item)
		if err != nil {
			return Value{}, newParseError(item, err.Error(), pattern)
		}
		return Value{Kind: KindDecimal, Dec: d, RawInput: item}, nil
	}

	std := standardize(item, format.groupChar(), format.decimalChar())
	if !decimalRe.MatchString(std) {
		return Value{}, newParseError(item, "invalid decimal", "")
	}
	d, err := decimal.NewFromString(std)
	if err != nil {
		return Value{}, newParseError(item, "invalid decimal", "")
	}
	return Value{Kind: KindDecimal, Dec: d, RawInput: item}, nil
}

type intRange struct {
	min, max *big.Int // nil means unbounded on that side
}

func bigFromInt64(n int64) *big.Int { return big.NewInt(n) }

func bigFromUint64(n uint64) *big.Int { return new(big.Int).SetUint64(n) }

func integerRangeFor(uri string) intRange {
	switch uri {
	case Long:
		return intRange{bigFromInt64(math.MinInt64), bigFromInt64(math.MaxInt64)}
	case Int:
		return intRange{bigFromInt64(math.MinInt32), bigFromInt64(math.MaxInt32)}
	case Short:
		return intRange{bigFromInt64(math.MinInt16), bigFromInt64(math.MaxInt16)}
	case Byte:
		return intRange{bigFromInt64(math.MinInt8), bigFromInt64(math.MaxInt8)}
	case NonNegativeInteger:
		return intRange{big.NewInt(0), nil}
	case PositiveInteger:
		return intRange{big.NewInt(1), nil}
	case NonPositiveInteger:
		return intRange{nil, big.NewInt(0)}
	case NegativeInteger:
		return intRange{nil, big.NewInt(-1)}
	case UnsignedLong:
		return intRange{big.NewInt(0), bigFromUint64(18446744073709551615)}
	case UnsignedInt:
		return intRange{big.NewInt(0), bigFromUint64(4294967295)}
	case UnsignedShort:
		return intRange{big.NewInt(0), bigFromUint64(65535)}
	case UnsignedByte:
		return intRange{big.NewInt(0), bigFromUint64(255)}
	default: // Integer: unbounded
		return intRange{nil, nil}
	}
}

func errorNameFor(uri string) string {
	switch uri {
	case Integer:
		return "integer"
	case Long:
		return "long"
	case Int:
		return "int"
	case Short:
		return "short"
	case Byte:
		return "byte"
	case NonNegativeInteger:
		return "nonNegativeInteger"
	case PositiveInteger:
		return "positiveInteger"
	case NonPositiveInteger:
		return "nonPositiveInteger"
	case NegativeInteger:
		return "negativeInteger"
	case UnsignedLong:
		return "unsignedLong"
	case UnsignedInt:
		return "unsignedInt"
	case UnsignedShort:
		return "unsignedShort"
	case UnsignedByte:
		return "unsignedByte"
	default:
		return "integer"
	}
}

// parseIntegerFamily parses an integer-family value (arbitrary precision,
// then range-checked against the specific XSD subtype named by uri).
func parseIntegerFamily(uri string, format *Format, item string) (Value, error) {
	pattern := format.pattern()
	var n *big.Int

	if pattern != "" {
		d, err := parseLDMLNumber(pattern, format.groupChar(), format.decimalChar(), item)
		if err != nil || !d.IsInteger() {
			return Value{}, newParseError(item, "invalid "+errorNameFor(uri), pattern)
		}
		n = d.BigInt()
	} else {
		std := standardize(item, format.groupChar(), format.decimalChar())
		if !integerRe.MatchString(std) {
			return Value{}, newParseError(item, "invalid "+errorNameFor(uri), "")
		}
		var ok bool
		n, ok = new(big.Int).SetString(strings.TrimPrefix(std, "+"), 10)
		if !ok {
			return Value{}, newParseError(item, "invalid "+errorNameFor(uri), "")
		}
	}

	rng := integerRangeFor(uri)
	if rng.min != nil && n.Cmp(rng.min) < 0 {
		return Value{}, newParseError(item, "invalid "+errorNameFor(uri)+": below minimum "+rng.min.String(), pattern)
	}
	if rng.max != nil && n.Cmp(rng.max) > 0 {
		return Value{}, newParseError(item, "invalid "+errorNameFor(uri)+": above maximum "+rng.max.String(), pattern)
	}
	return Value{Kind: KindInteger, Int: n, RawInput: item}, nil
}

// parseFloatFamily parses float/double values, special-casing the
// case-sensitive XSD literals INF, -INF and NaN ahead of the standard
// numeric path.
func parseFloatFamily(uri string, format *Format, item string) (Value, error) {
	name := "double"
	if uri == Float {
		name = "float"
	}

	switch item {
	case "INF":
		return Value{Kind: KindFloat, Float: math.Inf(1), RawInput: item}, nil
	case "-INF":
		return Value{Kind: KindFloat, Float: math.Inf(-1), RawInput: item}, nil
	case "NaN":
		return Value{Kind: KindFloat, Float: math.NaN(), RawInput: item}, nil
	}

	pattern := format.pattern()
	if pattern != "" {
		d, err := parseLDMLNumber(pattern, format.groupChar(), format.decimalChar(), item)
		if err != nil {
			return Value{}, newParseError(item, "invalid "+name, pattern)
		}
		f, _ := d.Float64()
		return Value{Kind: KindFloat, Float: f, RawInput: item}, nil
	}

	std := standardize(item, format.groupChar(), format.decimalChar())
	if !floatRe.MatchString(std) {
		return Value{}, newParseError(item, "invalid "+name, "")
	}
	f, err := strconv.ParseFloat(std, 64)
	if err != nil {
		return Value{}, newParseError(item, "invalid "+name, "")
	}
	return Value{Kind: KindFloat, Float: f, RawInput: item}, nil
}

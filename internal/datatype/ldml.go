package datatype

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseLDMLNumber parses value against an LDML-style number pattern (e.g.
// "#,##0.00", "0.###", "+#,##0;-#,##0"), using groupChar/decimalChar as the
// column's configured grouping and decimal separators. It returns an
// arbitrary-precision decimal on success.
//
// The pattern grammar handled here: an optional quoted or literal prefix, an
// optional sign placeholder ('+' or '-', unquoted), a digit/grouping run
// using '#' and '0' as placeholders and ',' as the grouping marker, an
// optional '.' introducing fractional digit placeholders, and an optional
// literal suffix. A positive;negative pair separated by ';' selects the
// subpattern used to validate the sign and strip prefix/suffix literals.
func parseLDMLNumber(pattern string, groupChar, decimalChar rune, value string) (decimal.Decimal, error) {
	positive, negative, hasNegative := strings.Cut(pattern, ";")

	sub := positive
	neg := false
	if hasNegative && strings.HasPrefix(strings.TrimSpace(value), "-") {
		sub = negative
		neg = true
	}

	prefix, suffix, hasSign := splitLiterals(sub)

	v := value
	v = strings.TrimPrefix(v, prefix)
	v = strings.TrimSuffix(v, suffix)
	v = strings.TrimSpace(v)

	sign := ""
	if hasSign {
		if strings.HasPrefix(v, "+") {
			sign = "+"
			v = v[1:]
		} else if strings.HasPrefix(v, "-") {
			sign = "-"
			v = v[1:]
		}
	} else if neg {
		sign = "-"
		v = strings.TrimPrefix(v, "-")
	}

	std := standardize(v, groupChar, decimalChar)
	if !decimalRe.MatchString(std) && !integerRe.MatchString(std) {
		return decimal.Decimal{}, fmt.Errorf("value does not match pattern %q", pattern)
	}

	d, err := decimal.NewFromString(sign + std)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("value does not match pattern %q", pattern)
	}
	return d, nil
}

// splitLiterals extracts the literal prefix and suffix around the numeric
// body of an LDML subpattern, unquoting any 'literal' segments, and reports
// whether the subpattern contains an explicit unquoted sign placeholder.
func splitLiterals(sub string) (prefix, suffix string, hasSign bool) {
	firstNumeric := strings.IndexFunc(sub, isNumericPlaceholder)
	lastNumeric := strings.LastIndexFunc(sub, isNumericPlaceholder)
	if firstNumeric == -1 {
		return "", "", false
	}

	rawPrefix := sub[:firstNumeric]
	rawSuffix := sub[lastNumeric+1:]

	hasSign = strings.ContainsAny(rawPrefix, "+-")
	return unquote(rawPrefix), unquote(rawSuffix), hasSign
}

func isNumericPlaceholder(r rune) bool {
	return r == '#' || r == '0' || r == ',' || r == '.'
}

// unquote strips LDML single-quote literal delimiters, turning a doubled
// quote ('') into a single literal quote character.
func unquote(s string) string {
	if !strings.Contains(s, "'") {
		return strings.Trim(s, "+-")
	}
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' {
			if inQuote && i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			inQuote = !inQuote
			continue
		}
		if !inQuote && (c == '+' || c == '-') {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

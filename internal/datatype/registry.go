package datatype

import (
	"regexp"
	"strings"
)

const xsdBase = "http://www.w3.org/2001/XMLSchema#"

// URI datatype identifiers, as they appear (post-normalisation) on a
// Column.BaseDatatype.
const (
	String           = xsdBase + "string"
	AnyAtomicType    = xsdBase + "anyAtomicType"
	NormalizedString = xsdBase + "normalizedString"
	Token            = xsdBase + "token"
	Language         = xsdBase + "language"
	Name             = xsdBase + "Name"
	NMTOKEN          = xsdBase + "NMTOKEN"
	AnyURI           = xsdBase + "anyURI"
	Base64Binary     = xsdBase + "base64Binary"
	HexBinary        = xsdBase + "hexBinary"
	QName            = xsdBase + "QName"
	XMLLiteral       = xsdBase + "XMLLiteral"
	HTML             = "http://www.w3.org/ns/csvw#HTML"
	JSON             = "http://www.w3.org/ns/csvw#JSON"

	Boolean = xsdBase + "boolean"
	Decimal = xsdBase + "decimal"

	Integer            = xsdBase + "integer"
	Long               = xsdBase + "long"
	Int                = xsdBase + "int"
	Short              = xsdBase + "short"
	Byte               = xsdBase + "byte"
	NonNegativeInteger = xsdBase + "nonNegativeInteger"
	PositiveInteger    = xsdBase + "positiveInteger"
	UnsignedLong       = xsdBase + "unsignedLong"
	UnsignedInt        = xsdBase + "unsignedInt"
	UnsignedShort      = xsdBase + "unsignedShort"
	UnsignedByte       = xsdBase + "unsignedByte"
	NonPositiveInteger = xsdBase + "nonPositiveInteger"
	NegativeInteger    = xsdBase + "negativeInteger"

	Double = xsdBase + "double"
	Float  = xsdBase + "float"

	Date          = xsdBase + "date"
	DateTime      = xsdBase + "dateTime"
	DateTimeStamp = xsdBase + "dateTimeStamp"
	GDay          = xsdBase + "gDay"
	GMonth        = xsdBase + "gMonth"
	GMonthDay     = xsdBase + "gMonthDay"
	GYear         = xsdBase + "gYear"
	GYearMonth    = xsdBase + "gYearMonth"
	Time          = xsdBase + "time"

	Duration         = xsdBase + "duration"
	DayTimeDuration  = xsdBase + "dayTimeDuration"
	YearMonthDuration = xsdBase + "yearMonthDuration"
)

// shorthands maps CSV-W metadata datatype shorthand names to their URIs.
var shorthands = map[string]string{
	"number":   Double,
	"binary":   Base64Binary,
	"datetime": DateTime,
	"any":      AnyAtomicType,
	"xml":      XMLLiteral,
	"html":     HTML,
	"json":     JSON,
}

// ResolveName maps a metadata-supplied datatype name or URI to the URI this
// registry understands. Bare names (e.g. "integer", "string") are mapped to
// their xsd: URI; recognised shorthands are expanded first; anything already
// shaped like a URI passes through unchanged.
func ResolveName(name string) string {
	if full, ok := shorthands[name]; ok {
		return full
	}
	if strings.Contains(name, "://") || strings.Contains(name, "#") {
		return name
	}
	return xsdBase + name
}

// Format carries the format-related facets of a column: an optional
// pattern (LDML number pattern, date/time pattern, or a plain regex for
// text-like datatypes, depending on the datatype family) plus the numeric
// grouping/decimal characters used when standardising un-pattern-ed numeric
// input.
type Format struct {
	Pattern     string
	GroupChar   rune // default ','
	DecimalChar rune // default '.'
}

func (f *Format) groupChar() rune {
	if f == nil || f.GroupChar == 0 {
		return ','
	}
	return f.GroupChar
}

func (f *Format) decimalChar() rune {
	if f == nil || f.DecimalChar == 0 {
		return '.'
	}
	return f.DecimalChar
}

func (f *Format) pattern() string {
	if f == nil {
		return ""
	}
	return f.Pattern
}

// Parse parses item against the datatype named by uri, honouring format if
// non-nil. It returns the parsed Value on success, or a *ParseError
// describing why the item was rejected.
func Parse(uri string, format *Format, item string) (Value, error) {
	switch uri {
	case String, AnyAtomicType:
		return Value{Kind: KindString, Str: item, RawInput: item}, nil
	case NormalizedString, Token, Language, Name, NMTOKEN, AnyURI,
		Base64Binary, HexBinary, QName, XMLLiteral, HTML, JSON:
		trimmed := strings.TrimSpace(item)
		return Value{Kind: KindString, Str: trimmed, RawInput: item}, nil
	case Boolean:
		return parseBoolean(format, item)
	case Decimal:
		return parseDecimal(format, item)
	case Integer, Long, Int, Short, Byte,
		NonNegativeInteger, PositiveInteger, NonPositiveInteger, NegativeInteger,
		UnsignedLong, UnsignedInt, UnsignedShort, UnsignedByte:
		return parseIntegerFamily(uri, format, item)
	case Double, Float:
		return parseFloatFamily(uri, format, item)
	case Date, DateTime, DateTimeStamp, GDay, GMonth, GMonthDay, GYear, GYearMonth, Time:
		return parseDateTimeFamily(uri, format, item)
	case Duration, DayTimeDuration, YearMonthDuration:
		return parseDurationFamily(uri, item)
	default:
		// Unknown datatype URIs degrade to opaque string handling rather
		// than a hard failure, matching the engine's fail-soft posture.
		return Value{Kind: KindString, Str: item, RawInput: item}, nil
	}
}

// textLikeDatatypes is the set of datatypes for which a format.pattern is a
// plain regular expression applied to the raw item; pattern-based format
// validation is a no-op for every other datatype, so regex format checks
// only run for the datatypes below.
var textLikeDatatypes = map[string]bool{
	String: true, AnyAtomicType: true, NormalizedString: true, Token: true,
	Language: true, Name: true, NMTOKEN: true, AnyURI: true,
	Base64Binary: true, HexBinary: true, QName: true, XMLLiteral: true,
	HTML: true, JSON: true,
}

// ErrorTypeName derives the "invalid_<name>" diagnostic type from a
// datatype URI: the URI's local name, except dateTime shortens to
// "datetime" and gMonthDay preserves a historical typo ("gMonthDat",
// documented in DESIGN.md) carried forward for wire compatibility.
func ErrorTypeName(uri string) string {
	i := strings.LastIndexAny(uri, "#")
	name := uri
	if i != -1 {
		name = uri[i+1:]
	}
	switch name {
	case "dateTime":
		name = "datetime"
	case "gMonthDay":
		name = "gMonthDat"
	}
	return "invalid_" + name
}

// FormatValidate reports whether item satisfies format's pattern as a plain
// regex. It is only meaningful for text-like datatypes; for every other
// datatype family format validation happens inside Parse (LDML/date
// patterns) and FormatValidate always returns true.
func FormatValidate(uri string, format *Format, item string) bool {
	if format == nil || format.Pattern == "" {
		return true
	}
	if !textLikeDatatypes[uri] {
		return true
	}
	re, err := regexp.Compile(format.Pattern)
	if err != nil {
		return false
	}
	return re.MatchString(item)
}

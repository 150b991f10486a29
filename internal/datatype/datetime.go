package datatype

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// zoneIDSuffix strips a trailing bracketed zone-id annotation such as
// "[UTC+02:00]" or "[Europe/Prague]". Such annotations are accepted (some
// upstream metadata normalisers carry them through) but play no role in
// parsing or equality: equality is decided purely by the numeric offset
// already present before the bracket (see DESIGN.md).
var zoneIDSuffix = regexp.MustCompile(`\[[^\]]*\]$`)

func stripZoneID(s string) string {
	return zoneIDSuffix.ReplaceAllString(s, "")
}

// ldmlDateTokens maps the LDML/SimpleDateFormat-style tokens this engine
// accepts in a column's format.pattern to Go reference-time layout tokens.
// Longer tokens are replaced first so e.g. "yyyy" isn't partially consumed
// by a "yy" replacement.
var ldmlDateTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"SSS", "000"},
	{"XXX", "Z07:00"},
	{"XX", "Z0700"},
	{"X", "Z07"},
	{"ZZZZZ", "Z07:00"},
	{"Z", "-0700"},
}

func convertLDMLDatePattern(pattern string) string {
	out := pattern
	for _, tok := range ldmlDateTokens {
		out = strings.ReplaceAll(out, tok.token, tok.layout)
	}
	return out
}

// defaultLayouts lists the candidate ISO-8601-family layouts tried, in
// order, when a column has no format.pattern.
func defaultLayouts(uri string) []string {
	switch uri {
	case Date:
		return []string{"2006-01-02Z07:00", "2006-01-02-07:00", "2006-01-02"}
	case DateTime, DateTimeStamp:
		return []string{
			"2006-01-02T15:04:05.999999999Z07:00",
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02T15:04Z07:00",
			"2006-01-02T15:04:05.999999999",
			"2006-01-02T15:04:05",
			"2006-01-02T15:04",
		}
	case Time:
		return []string{
			"15:04:05.999999999Z07:00",
			"15:04:05Z07:00",
			"15:04Z07:00",
			"15:04:05.999999999",
			"15:04:05",
			"15:04",
		}
	case GYear:
		return []string{"2006Z07:00", "2006"}
	case GYearMonth:
		return []string{"2006-01Z07:00", "2006-01"}
	default:
		return nil
	}
}

var (
	gMonthRe    = regexp.MustCompile(`^--(\d{2})(Z|[+-]\d{2}:\d{2})?$`)
	gDayRe      = regexp.MustCompile(`^---(\d{2})(Z|[+-]\d{2}:\d{2})?$`)
	gMonthDayRe = regexp.MustCompile(`^--(\d{2})-(\d{2})(Z|[+-]\d{2}:\d{2})?$`)
)

// anchorYear is the synthetic (leap) year used to anchor gMonth/gDay/
// gMonthDay values, which XSD defines without a year component.
const anchorYear = 1972

func parseDateTimeFamily(uri string, format *Format, item string) (Value, error) {
	raw := item
	item = stripZoneID(item)
	pattern := format.pattern()

	if pattern != "" {
		goLayout := convertLDMLDatePattern(pattern)
		if t, zone, ok := tryParse(goLayout, item); ok {
			return Value{Kind: KindDateTime, Time: t.UTC(), HasZone: zone, RawInput: raw}, nil
		}
		return Value{}, newParseError(raw, "invalid "+diagnosticName(uri), pattern)
	}

	switch uri {
	case GMonth:
		if m := gMonthRe.FindStringSubmatch(item); m != nil {
			month, _ := strconv.Atoi(m[1])
			t := time.Date(anchorYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			return Value{Kind: KindDateTime, Time: t, HasZone: m[2] != "", RawInput: raw}, nil
		}
		return Value{}, newParseError(raw, "invalid gMonth", "")
	case GDay:
		if m := gDayRe.FindStringSubmatch(item); m != nil {
			day, _ := strconv.Atoi(m[1])
			t := time.Date(anchorYear, time.January, day, 0, 0, 0, 0, time.UTC)
			return Value{Kind: KindDateTime, Time: t, HasZone: m[2] != "", RawInput: raw}, nil
		}
		return Value{}, newParseError(raw, "invalid gDay", "")
	case GMonthDay:
		if m := gMonthDayRe.FindStringSubmatch(item); m != nil {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			t := time.Date(anchorYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return Value{Kind: KindDateTime, Time: t, HasZone: m[3] != "", RawInput: raw}, nil
		}
		return Value{}, newParseError(raw, "invalid gMonthDay", "")
	}

	for _, layout := range defaultLayouts(uri) {
		if t, zone, ok := tryParse(layout, item); ok {
			return Value{Kind: KindDateTime, Time: t.UTC(), HasZone: zone, RawInput: raw}, nil
		}
	}
	return Value{}, newParseError(raw, "invalid "+diagnosticName(uri), "")
}

func tryParse(layout, value string) (t time.Time, hasZone bool, ok bool) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false, false
	}
	hasZone = strings.Contains(layout, "Z") || strings.Contains(layout, "-0700") || strings.Contains(layout, "07:00")
	if !hasZone {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t, hasZone, true
}

// diagnosticName returns the error-type token used in column diagnostics;
// preserves a historical typo for gMonthDay, documented here rather than
// silently fixed, since downstream tooling may already depend on the
// exact string.
func diagnosticName(uri string) string {
	switch uri {
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case DateTimeStamp:
		return "dateTimeStamp"
	case GDay:
		return "gDay"
	case GMonth:
		return "gMonth"
	case GMonthDay:
		return "gMonthDat"
	case GYear:
		return "gYear"
	case GYearMonth:
		return "gYearMonth"
	case Time:
		return "time"
	default:
		return "datetime"
	}
}

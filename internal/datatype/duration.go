package datatype

import "regexp"

var (
	durationRe = regexp.MustCompile(
		`^-?P(?:[0-9]+Y)?(?:[0-9]+M)?(?:[0-9]+D)?(?:T(?:[0-9]+H)?(?:[0-9]+M)?(?:[0-9]+(?:\.[0-9]+)?S)?)?$`)
	dayTimeDurationRe = regexp.MustCompile(
		`^-?P(?:[0-9]+D)?(?:T(?:[0-9]+H)?(?:[0-9]+M)?(?:[0-9]+(?:\.[0-9]+)?S)?)?$`)
	yearMonthDurationRe = regexp.MustCompile(`^-?P(?:[0-9]+Y)?(?:[0-9]+M)?$`)
)

// parseDurationFamily validates a duration-family value against its
// datatype's lexical regex. The value is otherwise kept opaque: no
// arithmetic is performed on durations.
func parseDurationFamily(uri, item string) (Value, error) {
	var re *regexp.Regexp
	name := ""
	switch uri {
	case DayTimeDuration:
		re, name = dayTimeDurationRe, "dayTimeDuration"
	case YearMonthDuration:
		re, name = yearMonthDurationRe, "yearMonthDuration"
	default:
		re, name = durationRe, "duration"
	}

	if !re.MatchString(item) || !hasDurationComponent(item) {
		return Value{}, newParseError(item, "invalid "+name, "")
	}
	return Value{Kind: KindDuration, Str: item, RawInput: item}, nil
}

// hasDurationComponent rejects the bare "P" / "-P" / "PT" forms that the
// component regexes above would otherwise accept as a degenerate match.
func hasDurationComponent(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

package datatype

import "strings"

// parseBoolean implements the boolean parsing rules: with no format, the
// literal sets {true,1} and {false,0}; with a "T|F" format, the left side
// of the pipe means true and the right side means false.
func parseBoolean(format *Format, item string) (Value, error) {
	pattern := format.pattern()
	if pattern == "" {
		switch item {
		case "true", "1":
			return Value{Kind: KindBool, Bool: true, RawInput: item}, nil
		case "false", "0":
			return Value{Kind: KindBool, Bool: false, RawInput: item}, nil
		default:
			return Value{}, newParseError(item, "invalid boolean", "")
		}
	}

	left, right, ok := strings.Cut(pattern, "|")
	if !ok {
		return Value{}, newParseError(item, "invalid boolean format pattern", pattern)
	}
	switch item {
	case left:
		return Value{Kind: KindBool, Bool: true, RawInput: item}, nil
	case right:
		return Value{Kind: KindBool, Bool: false, RawInput: item}, nil
	default:
		return Value{}, newParseError(item, "invalid boolean", pattern)
	}
}

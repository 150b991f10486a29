package column

import (
	"strings"

	"golang.org/x/text/language"

	"csvwvalidate/internal/result"
	"csvwvalidate/internal/schema"
)

// HeaderResult is the outcome of validating one observed header cell
// against its column's declared titles.
type HeaderResult struct {
	Valid   bool
	Finding Finding
}

// ValidateHeader succeeds iff observed matches one of col's titles under
// any language tag that LanguagesMatch col.Lang, or matches col's own name.
func ValidateHeader(col *schema.Column, observed string) HeaderResult {
	for lang, titles := range col.Titles {
		if !LanguagesMatch(col.Lang, lang) {
			continue
		}
		for _, title := range titles {
			if title == observed {
				return HeaderResult{Valid: true}
			}
		}
	}
	if col.Name != "" && col.Name == observed {
		return HeaderResult{Valid: true}
	}
	return HeaderResult{Finding: Finding{
		Type:     result.TypeInvalidHeader,
		Category: "schema",
		Column:   col.Ordinal,
		Content:  observed,
	}}
}

// LanguagesMatch reports whether two language tags match: equal, either
// is the undefined tag "und", or one is a hyphen-prefixed subtag of the
// other ("en-GB" matches "en"). Tags are
// canonicalised with golang.org/x/text/language before comparison so that
// case and subtag ordering quirks don't produce spurious mismatches; a tag
// that fails to parse falls back to a raw case-insensitive comparison.
func LanguagesMatch(a, b string) bool {
	if strings.EqualFold(a, "und") || strings.EqualFold(b, "und") {
		return true
	}

	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	if ta == tb {
		return true
	}
	return isAncestor(ta, tb) || isAncestor(tb, ta)
}

// isAncestor reports whether narrow is the same tag as, or a more specific
// subtag descending from, wide (e.g. wide="en", narrow="en-GB").
func isAncestor(wide, narrow language.Tag) bool {
	for t := narrow; ; {
		if t == wide {
			return true
		}
		parent := t.Parent()
		if parent == t || parent == language.Und {
			return false
		}
		t = parent
	}
}

// Package locale carries the regional formatting conventions used by the
// date and money helpers: an ordered default tag list, month and weekday
// name tables, and number/currency separator rules.
//
// Tags use the underscore form ("en_US"). The data behind a tag is immutable
// after process start; callers needing a reduced or reordered tag set pass
// their own slice instead of mutating the defaults.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Tag identifies a regional formatting convention, e.g. "en_US".
type Tag string

// DefaultTags is the ordered tag list tried during parse and format
// fallback. Order matters: earlier tags win ties.
var DefaultTags = []Tag{
	"id_ID",
	"en_US",
	"en_GB",
	"fr_FR",
	"de_DE",
	"es_ES",
	"it_IT",
	"pt_BR",
}

// Normalize canonicalizes separator and casing: "en-us" -> "en_US".
// A bare language ("fr") normalizes to lowercase with no region.
func (t Tag) Normalize() Tag {
	s := strings.ReplaceAll(string(t), "-", "_")
	parts := strings.SplitN(s, "_", 2)
	lang := strings.ToLower(parts[0])
	if len(parts) == 1 || parts[1] == "" {
		return Tag(lang)
	}
	return Tag(lang + "_" + strings.ToUpper(parts[1]))
}

// Base returns the language part of the tag: "en_US" -> "en".
func (t Tag) Base() string {
	s := string(t.Normalize())
	if i := strings.IndexByte(s, '_'); i >= 0 {
		return s[:i]
	}
	return s
}

// Region returns the region part of the tag, or "" when absent.
func (t Tag) Region() string {
	s := string(t.Normalize())
	if i := strings.IndexByte(s, '_'); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// Language resolves the tag to a BCP 47 language.Tag for the x/text
// printers. Unresolvable tags map to language.Und, which formats with
// root-locale conventions.
func (t Tag) Language() language.Tag {
	bcp := strings.ReplaceAll(string(t.Normalize()), "_", "-")
	parsed, err := language.Parse(bcp)
	if err != nil {
		return language.Und
	}
	return parsed
}

// Lookup returns the convention data for a tag. Unknown regions fall back
// to the base language ("en_AU" -> "en"); unknown languages report false.
func Lookup(t Tag) (*Info, bool) {
	n := t.Normalize()
	if info, ok := infoByTag[n]; ok {
		return info, true
	}
	if info, ok := infoByBase[t.Base()]; ok {
		return info, true
	}
	return nil, false
}

// Supported reports whether Lookup would succeed for the tag.
func Supported(t Tag) bool {
	_, ok := Lookup(t)
	return ok
}

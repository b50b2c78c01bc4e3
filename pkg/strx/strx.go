// Package strx holds the string helpers shared by the expression
// functions and the formatting layers.
package strx

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var spaceRuns = regexp.MustCompile(`\s+`)

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CollapseSpaces trims s and folds interior whitespace runs to one space.
func CollapseSpaces(s string) string {
	return spaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Mask replaces the middle of s with '*', keeping the first showFirst and
// last showLast runes visible. Negative counts clamp to zero. When the
// visible counts cover the whole string it is returned unchanged.
func Mask(s string, showFirst, showLast int) string {
	runes := []rune(s)
	length := len(runes)

	if showFirst < 0 {
		showFirst = 0
	}
	if showLast < 0 {
		showLast = 0
	}
	if showFirst+showLast >= length {
		return s
	}

	masked := make([]rune, length)
	for i := 0; i < length; i++ {
		if i < showFirst || i >= length-showLast {
			masked[i] = runes[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

// Truncate shortens s to at most max runes, ending with "..." when content
// was dropped. A max of three or fewer leaves no room for the ellipsis and
// cuts hard; max <= 0 returns "".
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// PadLeft prepends pad until s reaches length bytes, trimming overshoot
// from the left so the end of s is preserved. An empty pad is a no-op.
func PadLeft(s string, length int, pad string) string {
	if len(pad) == 0 {
		return s
	}
	for len(s) < length {
		s = pad + s
	}
	if len(s) > length {
		s = s[len(s)-length:]
	}
	return s
}

// PadRight appends pad until s reaches length bytes, trimming overshoot
// from the right. An empty pad is a no-op.
func PadRight(s string, length int, pad string) string {
	if len(pad) == 0 {
		return s
	}
	for len(s) < length {
		s = s + pad
	}
	if len(s) > length {
		s = s[:length]
	}
	return s
}

// Substr extracts length runes starting at start. Out-of-range bounds
// clamp instead of failing.
func Substr(s string, start, length int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start >= len(runes) {
		return ""
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	if end <= start {
		return ""
	}
	return string(runes[start:end])
}

// ExtractDomain returns the part of an email address after the last '@',
// or "" when there is none.
func ExtractDomain(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx == -1 || idx == len(email)-1 {
		return ""
	}
	return email[idx+1:]
}

// Title upper-cases the first letter of each word using Unicode casing
// rules. Casers are stateful, so one is built per call.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Slugify lowers s and replaces every non-alphanumeric run with a single
// hyphen, trimming hyphens from both ends.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		switch {
		case isAlnum:
			b.WriteRune(r)
			prevHyphen = false
		case !prevHyphen && b.Len() > 0:
			b.WriteByte('-')
			prevHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

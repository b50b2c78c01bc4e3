package dates

import (
	"strings"
	"time"

	"github.com/fieldry/fieldry/pkg/locale"
)

// englishMonthsAbbrev mirrors what time.Format emits for "Jan".
var englishMonthsAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var englishDaysAbbrev = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// toEnglish rewrites locale month and weekday names in text to the English
// names the layout parser understands, touching only the classes the
// pattern engages.
func toEnglish(text string, info *locale.Info, needs nameNeeds) string {
	if info.Tag.Base() == "en" {
		return text
	}
	if needs.fullMonth {
		for i, name := range info.Months {
			text = replaceFold(text, name, time.Month(i+1).String())
		}
	}
	if needs.fullDay {
		for i, name := range info.Days {
			text = replaceFold(text, name, time.Weekday(i).String())
		}
	}
	if needs.abbrevMonth {
		for i, name := range info.MonthsAbbrev {
			text = replaceFold(text, name, englishMonthsAbbrev[i])
		}
	}
	if needs.abbrevDay {
		for i, name := range info.DaysAbbrev {
			text = replaceFold(text, name, englishDaysAbbrev[i])
		}
	}
	return text
}

// fromEnglish rewrites the English names time.Format produced into the
// locale's names. time.Format casing is fixed, so exact matching is enough.
func fromEnglish(text string, info *locale.Info, needs nameNeeds) string {
	if info.Tag.Base() == "en" {
		return text
	}
	if needs.fullMonth {
		for i, name := range info.Months {
			text = strings.ReplaceAll(text, time.Month(i+1).String(), name)
		}
	}
	if needs.fullDay {
		for i, name := range info.Days {
			text = strings.ReplaceAll(text, time.Weekday(i).String(), name)
		}
	}
	if needs.abbrevMonth {
		for i, name := range info.MonthsAbbrev {
			text = strings.ReplaceAll(text, englishMonthsAbbrev[i], name)
		}
	}
	if needs.abbrevDay {
		for i, name := range info.DaysAbbrev {
			text = strings.ReplaceAll(text, englishDaysAbbrev[i], name)
		}
	}
	return text
}

// replaceFold is a case-insensitive ReplaceAll. When lowercasing shifts
// byte offsets (rare outside Latin text) it falls back to exact matching.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	ls, lo := strings.ToLower(s), strings.ToLower(old)
	if len(ls) != len(s) || len(lo) != len(old) {
		return strings.ReplaceAll(s, old, new)
	}
	var b strings.Builder
	for {
		i := strings.Index(ls, lo)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		ls = ls[i+len(lo):]
	}
}

package dates

import "time"

// defaultParser backs the package-level functions: default patterns,
// default locales, results in time.Local.
var defaultParser = NewParser()

// Parse resolves text with the default parser. See Parser.Parse.
func Parse(text string) (time.Time, bool) {
	return defaultParser.Parse(text)
}

// ParseFormat resolves text against one explicit pattern with the default
// parser. See Parser.ParseFormat.
func ParseFormat(text, pattern string) (time.Time, bool) {
	return defaultParser.ParseFormat(text, pattern)
}

// Format renders t with the default parser. See Parser.Format.
func Format(t time.Time, pattern string) string {
	return defaultParser.Format(t, pattern)
}

// FormatString re-renders date text with the default parser. See
// Parser.FormatString.
func FormatString(text, originPattern, targetPattern string) string {
	return defaultParser.FormatString(text, originPattern, targetPattern)
}

// ParseEpoch reads an epoch integer with the default parser. See
// Parser.ParseEpoch.
func ParseEpoch(text string) (time.Time, bool) {
	return defaultParser.ParseEpoch(text)
}

// FormatEpoch renders an epoch integer with the default parser. See
// Parser.FormatEpoch.
func FormatEpoch(text, pattern string) string {
	return defaultParser.FormatEpoch(text, pattern)
}

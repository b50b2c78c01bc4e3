// Package dates parses and formats date-time text against an ordered list
// of calendar-field patterns with locale fallback.
//
// Parsing is strict: a candidate pattern matches only when the whole input
// matches and every calendar value is in range, so 31/02/2024 is rejected
// rather than clamped. Malformed input is reported as absent, never as an
// error. Patterns use the yyyy-MM-dd token syntax and are translated to Go
// layouts by Layout.
package dates

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fieldry/fieldry/pkg/locale"
)

// DefaultPatterns is the fallback pattern list tried in order when no
// explicit format is given. Most specific first; the first strict match
// wins, so ambiguous day/month input resolves by rank.
var DefaultPatterns = []string{
	"yyyy-MM-dd'T'HH:mm:ss.SSS'Z'",
	"yyyy-MM-dd'T'HH:mm:ss'Z'",
	"yyyy-MM-dd HH:mm:ss.SSS",
	"yyyy-MM-dd HH:mm:ss",
	"yyyy/MM/dd HH:mm:ss.SSS",
	"yyyy/MM/dd HH:mm:ss",
	"dd/MM/yyyy HH:mm:ss",
	"MM/dd/yyyy HH:mm:ss",
	"dd-MM-yyyy HH:mm:ss",
	"MM-dd-yyyy HH:mm:ss",
	"dd/MM/yyyy",
	"MM/dd/yyyy",
	"yyyy-MM-dd",
	"yyyy/MM/dd",
	"MM-dd-yyyy",
	"dd-MM-yyyy",
}

// offsetless ISO form; its instant is UTC.
const isoNoOffset = "2006-01-02T15:04:05.999999999"

type compiledPattern struct {
	raw    string
	layout string
	needs  nameNeeds
}

// Parser holds an ordered pattern list, an ordered locale list, and a
// result location. All three are fixed at construction; a Parser is safe
// for concurrent use.
type Parser struct {
	patterns []compiledPattern
	locales  []*locale.Info
	loc      *time.Location
}

// ParserOptions configures a Parser at construction.
type ParserOptions func(*Parser)

// WithPatterns replaces the fallback pattern list. Untranslatable patterns
// are dropped with a debug event rather than failing construction.
func WithPatterns(patterns ...string) ParserOptions {
	return func(p *Parser) {
		p.patterns = compilePatterns(patterns)
	}
}

// WithLocales replaces the locale fallback list. Tags without convention
// data are dropped.
func WithLocales(tags ...locale.Tag) ParserOptions {
	return func(p *Parser) {
		p.locales = resolveLocales(tags)
	}
}

// WithResultLocation sets the location results are expressed in. ISO 8601
// input resolves its instant first (the spelled offset, or UTC when it
// carries none) and is then converted to this location, instant preserved.
// Offset-free pattern-list text is interpreted directly in this location,
// preserving the wall clock it spells. Passing nil keeps results exactly
// as parsed: offset-free input is captured as UTC and ISO input honors its
// offset.
func WithResultLocation(loc *time.Location) ParserOptions {
	return func(p *Parser) {
		p.loc = loc
	}
}

// NewParser builds a Parser with the default pattern list, the default
// locale list, and results in time.Local.
func NewParser(opts ...ParserOptions) *Parser {
	p := &Parser{
		patterns: compilePatterns(DefaultPatterns),
		locales:  resolveLocales(locale.DefaultTags),
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func compilePatterns(patterns []string) []compiledPattern {
	out := make([]compiledPattern, 0, len(patterns))
	for _, raw := range patterns {
		layout, needs, err := translate(raw)
		if err != nil {
			slog.Debug("[fieldry.dates]",
				slog.String("event_type", "pattern.translate.failed"),
				slog.String("pattern", raw),
				slog.Any("error", err),
			)
			continue
		}
		out = append(out, compiledPattern{raw: raw, layout: layout, needs: needs})
	}
	return out
}

func resolveLocales(tags []locale.Tag) []*locale.Info {
	out := make([]*locale.Info, 0, len(tags))
	for _, tag := range tags {
		info, ok := locale.Lookup(tag)
		if !ok {
			slog.Debug("[fieldry.dates]",
				slog.String("event_type", "locale.unknown"),
				slog.String("tag", string(tag)),
			)
			continue
		}
		out = append(out, info)
	}
	return out
}

// zone is where offset-free text is interpreted.
func (p *Parser) zone() *time.Location {
	if p.loc != nil {
		return p.loc
	}
	return time.UTC
}

// Parse resolves text with no explicit format: strict ISO 8601 first, then
// the fallback pattern list crossed with the locale list. Blank input and
// exhaustion both report absent.
func (p *Parser) Parse(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if t, ok := p.parseISO(text); ok {
		return t, true
	}
	for _, cp := range p.patterns {
		if t, ok := p.parseCompiled(text, cp); ok {
			return t, true
		}
	}
	slog.Debug("[fieldry.dates]",
		slog.String("event_type", "parse.exhausted"),
		slog.String("text", text),
		slog.Int("patterns", len(p.patterns)),
		slog.Int("locales", len(p.locales)),
	)
	return time.Time{}, false
}

// ParseFormat resolves text against one explicit pattern, trying each
// locale in order. An empty pattern falls back to the full Parse search.
func (p *Parser) ParseFormat(text, pattern string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if strings.TrimSpace(pattern) == "" {
		return p.Parse(text)
	}
	layout, needs, err := translate(pattern)
	if err != nil {
		slog.Debug("[fieldry.dates]",
			slog.String("event_type", "pattern.translate.failed"),
			slog.String("pattern", pattern),
			slog.Any("error", err),
		)
		return time.Time{}, false
	}
	return p.parseCompiled(text, compiledPattern{raw: pattern, layout: layout, needs: needs})
}

func (p *Parser) parseISO(text string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		t, err = time.Parse(isoNoOffset, text)
	}
	if err != nil {
		return time.Time{}, false
	}
	if p.loc != nil {
		return t.In(p.loc), true
	}
	return t, true
}

func (p *Parser) parseCompiled(text string, cp compiledPattern) (time.Time, bool) {
	if !cp.needs.any() {
		t, err := time.ParseInLocation(cp.layout, text, p.zone())
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, info := range p.locales {
		t, err := time.ParseInLocation(cp.layout, toEnglish(text, info, cp.needs), p.zone())
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders t with the given pattern. The zero time and
// untranslatable patterns render as "". Name-bearing patterns use the
// first locale in the parser's list; a parser with no resolvable locales
// cannot render names and reports "".
func (p *Parser) Format(t time.Time, pattern string) string {
	if t.IsZero() {
		return ""
	}
	layout, needs, err := translate(pattern)
	if err != nil {
		slog.Debug("[fieldry.dates]",
			slog.String("event_type", "pattern.translate.failed"),
			slog.String("pattern", pattern),
			slog.Any("error", err),
		)
		return ""
	}
	out := t.Format(layout)
	if !needs.any() {
		return out
	}
	if len(p.locales) > 0 {
		return fromEnglish(out, p.locales[0], needs)
	}
	return ""
}

// FormatString parses text with originPattern (empty means the full
// fallback search) and re-renders it with targetPattern. Any failure along
// the way reports "".
func (p *Parser) FormatString(text, originPattern, targetPattern string) string {
	t, ok := p.ParseFormat(text, originPattern)
	if !ok {
		return ""
	}
	return p.Format(t, targetPattern)
}

// Epoch magnitude cutoffs, shared with the transform layer's notion of
// epoch columns: values up to 11 digits are seconds, up to 14 digits
// milliseconds, beyond that microseconds.
const (
	maxEpochSeconds = int64(99_999_999_999)
	maxEpochMillis  = int64(99_999_999_999_999)
)

// ParseEpoch reads a decimal epoch integer, detecting its unit by
// magnitude. Negative values are pre-1970 seconds. The instant is
// expressed in the parser's result location (UTC when nil).
func (p *Parser) ParseEpoch(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return epochToTime(n).In(p.zone()), true
}

// FormatEpoch is ParseEpoch piped into Format: FormatEpoch("1672531200000",
// "yyyy") renders "2023" for a UTC parser.
func (p *Parser) FormatEpoch(text, pattern string) string {
	t, ok := p.ParseEpoch(text)
	if !ok {
		return ""
	}
	return p.Format(t, pattern)
}

func epochToTime(n int64) time.Time {
	switch {
	case n < 0 || n <= maxEpochSeconds:
		return time.Unix(n, 0).UTC()
	case n <= maxEpochMillis:
		return time.UnixMilli(n).UTC()
	default:
		return time.UnixMicro(n).UTC()
	}
}

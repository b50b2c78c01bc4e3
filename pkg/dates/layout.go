package dates

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedPattern marks a pattern token with no layout equivalent.
	ErrUnsupportedPattern = errors.New("unsupported pattern token")
	// ErrUnterminatedQuote marks a pattern with an unclosed literal section.
	ErrUnterminatedQuote = errors.New("unterminated quote in pattern")
)

// nameNeeds records which locale name tables a layout engages. Substitution
// touches only the classes a pattern actually uses, so e.g. an
// abbreviation pass can never chew on a full name it did not produce.
type nameNeeds struct {
	fullMonth   bool
	abbrevMonth bool
	fullDay     bool
	abbrevDay   bool
}

func (n nameNeeds) any() bool {
	return n.fullMonth || n.abbrevMonth || n.fullDay || n.abbrevDay
}

// Layout translates a calendar-field pattern such as "yyyy-MM-dd HH:mm:ss"
// into a Go reference layout. Single quotes delimit literal sections, a
// doubled quote is a literal quote, and fractional seconds (S runs) must
// follow a dot. Letters that start no known token make the pattern
// untranslatable.
func Layout(pattern string) (string, error) {
	layout, _, err := translate(pattern)
	return layout, err
}

func translate(pattern string) (string, nameNeeds, error) {
	var b strings.Builder
	var needs nameNeeds

	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == '\'':
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			content, width, err := scanQuoted(pattern, i)
			if err != nil {
				return "", needs, err
			}
			// a literal digit would read as a layout atom downstream
			if strings.ContainsAny(content, "0123456789") {
				return "", needs, fmt.Errorf("pattern %q, position %d: digits must stay outside quotes: %w", pattern, i, ErrUnsupportedPattern)
			}
			b.WriteString(content)
			i += width

		case isASCIILetter(c):
			n := runLength(pattern, i)
			atom, err := mapToken(c, n, &needs)
			if err != nil {
				return "", needs, fmt.Errorf("pattern %q, position %d: %w", pattern, i, err)
			}
			if c == 'S' && !strings.HasSuffix(b.String(), ".") {
				return "", needs, fmt.Errorf("pattern %q, position %d: fractional seconds must follow a dot: %w", pattern, i, ErrUnsupportedPattern)
			}
			b.WriteString(atom)
			i += n

		case c >= '0' && c <= '9':
			return "", needs, fmt.Errorf("pattern %q, position %d: bare digit: %w", pattern, i, ErrUnsupportedPattern)

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), needs, nil
}

// scanQuoted consumes a 'literal' section starting at the opening quote,
// returning the unquoted content and the number of pattern bytes consumed.
func scanQuoted(pattern string, start int) (string, int, error) {
	var content strings.Builder
	j := start + 1
	for j < len(pattern) {
		if pattern[j] != '\'' {
			content.WriteByte(pattern[j])
			j++
			continue
		}
		if j+1 < len(pattern) && pattern[j+1] == '\'' {
			content.WriteByte('\'')
			j += 2
			continue
		}
		return content.String(), j + 1 - start, nil
	}
	return "", 0, fmt.Errorf("pattern %q, position %d: %w", pattern, start, ErrUnterminatedQuote)
}

func runLength(pattern string, start int) int {
	c := pattern[start]
	j := start
	for j < len(pattern) && pattern[j] == c {
		j++
	}
	return j - start
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// mapToken resolves one letter run to its layout atom, marking any name
// table the atom engages.
func mapToken(c byte, n int, needs *nameNeeds) (string, error) {
	switch c {
	case 'y':
		if n == 2 {
			return "06", nil
		}
		if n <= 4 {
			return "2006", nil
		}
	case 'M':
		switch n {
		case 1:
			return "1", nil
		case 2:
			return "01", nil
		case 3:
			needs.abbrevMonth = true
			return "Jan", nil
		case 4:
			needs.fullMonth = true
			return "January", nil
		}
	case 'd':
		if n == 1 {
			return "2", nil
		}
		if n == 2 {
			return "02", nil
		}
	case 'E':
		if n <= 3 {
			needs.abbrevDay = true
			return "Mon", nil
		}
		if n == 4 {
			needs.fullDay = true
			return "Monday", nil
		}
	case 'H':
		if n <= 2 {
			return "15", nil
		}
	case 'h':
		if n == 1 {
			return "3", nil
		}
		if n == 2 {
			return "03", nil
		}
	case 'm':
		if n == 1 {
			return "4", nil
		}
		if n == 2 {
			return "04", nil
		}
	case 's':
		if n == 1 {
			return "5", nil
		}
		if n == 2 {
			return "05", nil
		}
	case 'S':
		if n <= 9 {
			return strings.Repeat("0", n), nil
		}
	case 'a':
		if n == 1 {
			return "PM", nil
		}
	case 'z':
		if n <= 3 {
			return "MST", nil
		}
	case 'Z':
		if n == 1 {
			return "-0700", nil
		}
	case 'X':
		switch n {
		case 1:
			return "Z07", nil
		case 2:
			return "Z0700", nil
		case 3:
			return "Z07:00", nil
		}
	}
	return "", fmt.Errorf("%q x%d: %w", string(c), n, ErrUnsupportedPattern)
}

package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fieldry/fieldry/pkg/locale"
)

var (
	// ErrEmptyAmount reports blank input.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrMalformedAmount reports input that is not a decimal amount.
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrAmountOverflow reports an amount too large for int64 cents.
	ErrAmountOverflow = errors.New("amount overflows cents")
)

// largest integer part that cannot overflow once scaled to cents and
// rounded up
const maxIntPart = (math.MaxInt64 - 99) / 100

// ParseAmount reads a decimal amount written under the tag's conventions
// and returns it in cents. Group separators and spacing are stripped, the
// locale decimal separator is honored, a third decimal rounds half up, and
// a leading sign is allowed. Unknown tags read as dot-decimal.
func ParseAmount(text string, tag locale.Tag) (int64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrEmptyAmount
	}

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	conv := numberConvention(tag)
	for _, sep := range []string{" ", " ", " "} {
		s = strings.ReplaceAll(s, sep, "")
	}
	if conv.GroupSep != "" && conv.GroupSep != conv.DecimalSep {
		s = strings.ReplaceAll(s, conv.GroupSep, "")
	}
	if conv.DecimalSep != "." {
		s = strings.ReplaceAll(s, conv.DecimalSep, ".")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%q: %w", text, ErrMalformedAmount)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%q: %w", text, ErrMalformedAmount)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, fmt.Errorf("%q: %w", text, ErrMalformedAmount)
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > maxIntPart {
		return 0, fmt.Errorf("%q: %w", text, ErrAmountOverflow)
	}

	// first two fractional digits are cents; the third rounds half up
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}

	cents := iv*100 + frac
	if neg {
		cents = -cents
	}
	return cents, nil
}

// ParseDecimal reads a plain dot-decimal number, rejecting blank input and
// non-finite values.
func ParseDecimal(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", text, ErrMalformedAmount)
	}
	return v, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func numberConvention(tag locale.Tag) locale.NumberConvention {
	if info, ok := locale.Lookup(tag); ok {
		return info.Number
	}
	return locale.NumberConvention{DecimalSep: ".", GroupSep: ",", GroupSize: 3}
}

// Package money renders numbers, percentages, and monetary amounts under
// locale conventions, and parses decimal amount strings into cents.
//
// Formatting never fails: unknown currency codes fall back to the code
// itself as the symbol and unknown locales to root-locale digits. Parsing
// reports sentinel errors so callers can distinguish empty from malformed
// from overflowing input.
package money

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fieldry/fieldry/pkg/locale"
)

// currencySymbols covers the currencies of the supported locales. Codes
// outside the map render as the code itself.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"IDR": "Rp",
	"BRL": "R$",
	"JPY": "¥",
}

// currencyDecimalOverride pins fraction digits where regional practice
// differs from the ISO default.
var currencyDecimalOverride = map[string]int{
	"IDR": 0,
	"JPY": 0,
}

// FormatCurrency renders amount as money: the number body follows the
// locale's digit conventions, the symbol and its placement follow the
// locale convention table, and fraction digits follow the currency.
func FormatCurrency(amount float64, code string, tag locale.Tag) string {
	digits := fractionDigits(code)
	symbol, known := currencySymbols[code]
	if !known {
		symbol = code
	}

	printer := message.NewPrinter(tag.Language())
	body := printer.Sprint(number.Decimal(math.Abs(amount), number.Scale(digits)))

	conv := currencyConvention(tag)
	space := ""
	if conv.SymbolSpace || !known {
		space = " "
	}

	var out string
	if conv.SymbolBefore {
		out = symbol + space + body
	} else {
		out = body + space + symbol
	}
	if amount < 0 {
		out = "-" + out
	}
	return out
}

// FormatNumber renders n with a fixed number of decimals under the
// locale's separators.
func FormatNumber(n float64, decimals int, tag locale.Tag) string {
	return message.NewPrinter(tag.Language()).Sprint(number.Decimal(n, number.Scale(decimals)))
}

// FormatInt renders n with the locale's digit grouping.
func FormatInt(n int64, tag locale.Tag) string {
	return message.NewPrinter(tag.Language()).Sprint(number.Decimal(n))
}

// FormatPercent renders a ratio as a percentage: 0.156 with one decimal is
// "15.6%" under en_US.
func FormatPercent(ratio float64, decimals int, tag locale.Tag) string {
	return message.NewPrinter(tag.Language()).Sprint(number.Percent(ratio, number.Scale(decimals)))
}

// RoundTo rounds half away from zero at the given decimal place.
func RoundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// Clamp limits v to [lo, hi]. lo must not exceed hi.
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// fractionDigits resolves how many decimals a currency carries: the
// regional override first, then the ISO standard rounding, then two.
func fractionDigits(code string) int {
	if d, ok := currencyDecimalOverride[code]; ok {
		return d
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

func currencyConvention(tag locale.Tag) locale.CurrencyConvention {
	if info, ok := locale.Lookup(tag); ok {
		return info.Currency
	}
	return locale.CurrencyConvention{SymbolBefore: true}
}

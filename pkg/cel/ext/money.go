package ext

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/fieldry/fieldry/pkg/locale"
	"github.com/fieldry/fieldry/pkg/money"
)

// MoneyFuncs returns CEL environment options for locale-aware amount
// formatting and parsing. Locale tags use the underscore form ("en_US");
// the overloads without a tag argument use the first default tag.
//
// Functions:
//   - formatCurrency(double, code) -> string: Format with currency symbol
//   - formatCurrency(double, code, tag) -> string: Same, explicit locale
//   - formatNumber(double, places) -> string: Grouped decimal string
//   - formatNumber(double, places, tag) -> string: Same, explicit locale
//   - parseAmount(string) -> int|null: Parse a display amount to cents
//   - parseAmount(string, tag) -> int|null: Same, explicit locale
//   - roundTo(double, places) -> double: Half-up rounding
//   - clamp(double, lo, hi) -> double: Constrain to [lo, hi]
//
// parseAmount returns null on malformed input instead of an error so
// expressions can chain it through the null handling functions.
func MoneyFuncs() cel.EnvOption {
	return cel.Lib(&moneyLib{})
}

type moneyLib struct{}

func (l *moneyLib) LibraryName() string {
	return "fieldry.money"
}

func defaultMoneyTag() locale.Tag {
	return locale.DefaultTags[0]
}

func (l *moneyLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("formatCurrency",
			cel.Overload("formatCurrency_double_string",
				[]*cel.Type{cel.DoubleType, cel.StringType},
				cel.StringType,
				cel.BinaryBinding(func(amount, code ref.Val) ref.Val {
					return types.String(money.FormatCurrency(
						float64(amount.(types.Double)),
						string(code.(types.String)),
						defaultMoneyTag(),
					))
				}),
			),
			cel.Overload("formatCurrency_double_string_string",
				[]*cel.Type{cel.DoubleType, cel.StringType, cel.StringType},
				cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.String(money.FormatCurrency(
						float64(args[0].(types.Double)),
						string(args[1].(types.String)),
						locale.Tag(string(args[2].(types.String))),
					))
				}),
			),
		),
		cel.Function("formatNumber",
			cel.Overload("formatNumber_double_int",
				[]*cel.Type{cel.DoubleType, cel.IntType},
				cel.StringType,
				cel.BinaryBinding(func(n, places ref.Val) ref.Val {
					return types.String(money.FormatNumber(
						float64(n.(types.Double)),
						int(places.(types.Int)),
						defaultMoneyTag(),
					))
				}),
			),
			cel.Overload("formatNumber_double_int_string",
				[]*cel.Type{cel.DoubleType, cel.IntType, cel.StringType},
				cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.String(money.FormatNumber(
						float64(args[0].(types.Double)),
						int(args[1].(types.Int)),
						locale.Tag(string(args[2].(types.String))),
					))
				}),
			),
		),
		cel.Function("parseAmount",
			cel.Overload("parseAmount_string",
				[]*cel.Type{cel.StringType},
				cel.DynType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					cents, err := money.ParseAmount(string(s.(types.String)), defaultMoneyTag())
					if err != nil {
						return types.NullValue
					}
					return types.Int(cents)
				}),
			),
			cel.Overload("parseAmount_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.DynType,
				cel.BinaryBinding(func(s, tag ref.Val) ref.Val {
					cents, err := money.ParseAmount(
						string(s.(types.String)),
						locale.Tag(string(tag.(types.String))),
					)
					if err != nil {
						return types.NullValue
					}
					return types.Int(cents)
				}),
			),
		),
		cel.Function("roundTo",
			cel.Overload("roundTo_double_int",
				[]*cel.Type{cel.DoubleType, cel.IntType},
				cel.DoubleType,
				cel.BinaryBinding(func(v, places ref.Val) ref.Val {
					return types.Double(money.RoundTo(
						float64(v.(types.Double)),
						int(places.(types.Int)),
					))
				}),
			),
		),
		cel.Function("clamp",
			cel.Overload("clamp_double_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType, cel.DoubleType},
				cel.DoubleType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.Double(money.Clamp(
						float64(args[0].(types.Double)),
						float64(args[1].(types.Double)),
						float64(args[2].(types.Double)),
					))
				}),
			),
		),
	}
}

func (l *moneyLib) ProgramOptions() []cel.ProgramOption {
	return nil
}

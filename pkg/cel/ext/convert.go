package ext

import (
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/fieldry/fieldry/pkg/money"
)

// ConvertFuncs returns CEL environment options for type conversion. String
// inputs tolerate surrounding whitespace, the way field values usually
// arrive; toDouble(string) goes through money.ParseDecimal, so non-finite
// spellings like "NaN" are conversion errors rather than non-finite values.
//
// Functions:
//   - toInt(string) -> int: Parse decimal digits with optional sign
//   - toInt(double) -> int: Truncate toward zero
//   - toInt(bool) -> int: false=0, true=1
//   - toDouble(string) -> double: Parse a finite dot-decimal number
//   - toDouble(int) -> double: Widen int to double
//   - toBool(string) -> bool: true/false, t/f, yes/no, y/n, 1/0, any case
//   - toBool(int) -> bool: 0 = false, non-zero = true
//   - toString(int) -> string: Decimal rendering
//   - toString(double) -> string: Shortest round-trip decimal rendering
//   - toString(bool) -> string: "true" or "false"
func ConvertFuncs() cel.EnvOption {
	return cel.Lib(&convertLib{})
}

type convertLib struct{}

func (l *convertLib) LibraryName() string {
	return "fieldry.convert"
}

func intFromString(s ref.Val) ref.Val {
	text := strings.TrimSpace(string(s.(types.String)))
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return types.NewErr("toInt: %s", err)
	}
	return types.Int(n)
}

func doubleFromString(s ref.Val) ref.Val {
	v, err := money.ParseDecimal(string(s.(types.String)))
	if err != nil {
		return types.NewErr("toDouble: %s", err)
	}
	return types.Double(v)
}

var (
	truthyWords = []string{"true", "t", "yes", "y", "1"}
	falsyWords  = []string{"false", "f", "no", "n", "0"}
)

func boolFromString(s ref.Val) ref.Val {
	text := strings.TrimSpace(string(s.(types.String)))
	for _, w := range truthyWords {
		if strings.EqualFold(text, w) {
			return types.True
		}
	}
	for _, w := range falsyWords {
		if strings.EqualFold(text, w) {
			return types.False
		}
	}
	return types.NewErr("toBool: %q is not a boolean word", text)
}

func (l *convertLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("toInt",
			cel.Overload("toInt_string",
				[]*cel.Type{cel.StringType}, cel.IntType,
				cel.UnaryBinding(intFromString),
			),
			cel.Overload("toInt_double",
				[]*cel.Type{cel.DoubleType}, cel.IntType,
				cel.UnaryBinding(func(d ref.Val) ref.Val {
					return types.Int(int64(d.(types.Double)))
				}),
			),
			cel.Overload("toInt_bool",
				[]*cel.Type{cel.BoolType}, cel.IntType,
				cel.UnaryBinding(func(b ref.Val) ref.Val {
					if b.(types.Bool) {
						return types.Int(1)
					}
					return types.Int(0)
				}),
			),
		),
		cel.Function("toDouble",
			cel.Overload("toDouble_string",
				[]*cel.Type{cel.StringType}, cel.DoubleType,
				cel.UnaryBinding(doubleFromString),
			),
			cel.Overload("toDouble_int",
				[]*cel.Type{cel.IntType}, cel.DoubleType,
				cel.UnaryBinding(func(i ref.Val) ref.Val {
					return types.Double(i.(types.Int))
				}),
			),
		),
		cel.Function("toBool",
			cel.Overload("toBool_string",
				[]*cel.Type{cel.StringType}, cel.BoolType,
				cel.UnaryBinding(boolFromString),
			),
			cel.Overload("toBool_int",
				[]*cel.Type{cel.IntType}, cel.BoolType,
				cel.UnaryBinding(func(i ref.Val) ref.Val {
					return types.Bool(i.(types.Int) != 0)
				}),
			),
		),
		cel.Function("toString",
			cel.Overload("toString_int",
				[]*cel.Type{cel.IntType}, cel.StringType,
				cel.UnaryBinding(func(i ref.Val) ref.Val {
					return types.String(strconv.FormatInt(int64(i.(types.Int)), 10))
				}),
			),
			cel.Overload("toString_double",
				[]*cel.Type{cel.DoubleType}, cel.StringType,
				cel.UnaryBinding(func(d ref.Val) ref.Val {
					return types.String(strconv.FormatFloat(float64(d.(types.Double)), 'f', -1, 64))
				}),
			),
			cel.Overload("toString_bool",
				[]*cel.Type{cel.BoolType}, cel.StringType,
				cel.UnaryBinding(func(b ref.Val) ref.Val {
					return types.String(strconv.FormatBool(bool(b.(types.Bool))))
				}),
			),
		),
	}
}

func (l *convertLib) ProgramOptions() []cel.ProgramOption {
	return nil
}

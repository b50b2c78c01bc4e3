package ext

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/fieldry/fieldry/pkg/nulls"
)

// NullFuncs returns CEL environment options for null handling. The
// functions are the expression-side view of pkg/nulls, with CEL null
// standing in for a nil pointer.
//
// Functions:
//   - coalesce(dyn, dyn) -> dyn: First non-null argument
//   - coalesce3(dyn, dyn, dyn) -> dyn: Same over three arguments
//   - coalesce4(dyn, dyn, dyn, dyn) -> dyn: Same over four arguments
//   - ifNull(dyn, dyn) -> dyn: First arg if non-null, else second
//   - orDefault(dyn, dyn) -> dyn: Alias for ifNull
//   - isNull(dyn) -> bool: Whether the value is null
//   - isNotNull(dyn) -> bool: Whether the value is non-null
//   - nullIf(dyn, dyn) -> dyn: Null when the args are equal, else the first
func NullFuncs() cel.EnvOption {
	return cel.Lib(&nullLib{})
}

type nullLib struct{}

func (l *nullLib) LibraryName() string {
	return "fieldry.nulls"
}

// asPtr maps a CEL value onto the pointer convention pkg/nulls uses:
// null becomes nil, anything else a pointer to itself.
func asPtr(v ref.Val) *ref.Val {
	if v == nil || v.Type() == types.NullType {
		return nil
	}
	return &v
}

func firstNonNull(args ...ref.Val) ref.Val {
	ptrs := make([]*ref.Val, len(args))
	for i, a := range args {
		ptrs[i] = asPtr(a)
	}
	if p := nulls.Coalesce(ptrs...); p != nil {
		return *p
	}
	return types.NullValue
}

// coalesceOverload declares an n-ary coalesce overload over dyn arguments.
func coalesceOverload(overloadID string, arity int) cel.FunctionOpt {
	argTypes := make([]*cel.Type, arity)
	for i := range argTypes {
		argTypes[i] = cel.DynType
	}
	return cel.Overload(overloadID, argTypes, cel.DynType,
		cel.FunctionBinding(func(args ...ref.Val) ref.Val {
			return firstNonNull(args...)
		}),
	)
}

// both ifNull and orDefault bind here
var orDefaultBinding = cel.BinaryBinding(func(value, fallback ref.Val) ref.Val {
	return nulls.OrDefault(asPtr(value), fallback)
})

func (l *nullLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("coalesce", coalesceOverload("coalesce_dyn_dyn", 2)),
		cel.Function("coalesce3", coalesceOverload("coalesce3_dyn_dyn_dyn", 3)),
		cel.Function("coalesce4", coalesceOverload("coalesce4_dyn_dyn_dyn_dyn", 4)),
		cel.Function("ifNull",
			cel.Overload("ifNull_dyn_dyn",
				[]*cel.Type{cel.DynType, cel.DynType},
				cel.DynType,
				orDefaultBinding,
			),
		),
		cel.Function("orDefault",
			cel.Overload("orDefault_dyn_dyn",
				[]*cel.Type{cel.DynType, cel.DynType},
				cel.DynType,
				orDefaultBinding,
			),
		),
		cel.Function("isNull",
			cel.Overload("isNull_dyn",
				[]*cel.Type{cel.DynType},
				cel.BoolType,
				cel.UnaryBinding(func(value ref.Val) ref.Val {
					return types.Bool(asPtr(value) == nil)
				}),
			),
		),
		cel.Function("isNotNull",
			cel.Overload("isNotNull_dyn",
				[]*cel.Type{cel.DynType},
				cel.BoolType,
				cel.UnaryBinding(func(value ref.Val) ref.Val {
					return types.Bool(asPtr(value) != nil)
				}),
			),
		),
		// nullIf compares with CEL equality, not Go ==, so lists and
		// maps compare structurally; pkg/nulls.NullIf cannot express that.
		cel.Function("nullIf",
			cel.Overload("nullIf_dyn_dyn",
				[]*cel.Type{cel.DynType, cel.DynType},
				cel.DynType,
				cel.BinaryBinding(func(value, match ref.Val) ref.Val {
					if value.Equal(match) == types.True {
						return types.NullValue
					}
					return value
				}),
			),
		),
	}
}

func (l *nullLib) ProgramOptions() []cel.ProgramOption {
	return nil
}

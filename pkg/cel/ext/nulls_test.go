package ext

import (
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

func evalNull(t *testing.T, env *cel.Env, expr string, vars map[string]any) ref.Val {
	t.Helper()
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		t.Fatalf("Compile(%q): %v", expr, issues.Err())
	}
	prog, err := env.Program(ast)
	if err != nil {
		t.Fatalf("Program(%q): %v", expr, err)
	}
	out, _, err := prog.Eval(vars)
	if err != nil {
		t.Fatalf("Eval(%q): %v", expr, err)
	}
	return out
}

func TestNullFuncs(t *testing.T) {
	env, err := cel.NewEnv(
		NullFuncs(),
		cel.Variable("nickname", cel.DynType),
		cel.Variable("legal_name", cel.DynType),
		cel.Variable("display_name", cel.DynType),
		cel.Variable("user_id", cel.DynType),
		cel.Variable("region", cel.DynType),
	)
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}

	tests := []struct {
		name       string
		expr       string
		vars       map[string]any
		expected   any
		expectNull bool
	}{
		{
			name:     "coalesce_prefers_first",
			expr:     "coalesce(nickname, legal_name)",
			vars:     map[string]any{"nickname": "Dee", "legal_name": "Dewi Sartika"},
			expected: "Dee",
		},
		{
			name:     "coalesce_skips_null",
			expr:     "coalesce(nickname, legal_name)",
			vars:     map[string]any{"nickname": nil, "legal_name": "Dewi Sartika"},
			expected: "Dewi Sartika",
		},
		{
			name:       "coalesce_all_null",
			expr:       "coalesce(nickname, legal_name)",
			vars:       map[string]any{"nickname": nil, "legal_name": nil},
			expectNull: true,
		},
		{
			name:     "coalesce3_middle",
			expr:     "coalesce3(nickname, display_name, legal_name)",
			vars:     map[string]any{"nickname": nil, "display_name": "dee_s", "legal_name": "Dewi Sartika"},
			expected: "dee_s",
		},
		{
			name:       "coalesce3_all_null",
			expr:       "coalesce3(nickname, display_name, legal_name)",
			vars:       map[string]any{"nickname": nil, "display_name": nil, "legal_name": nil},
			expectNull: true,
		},
		{
			name:     "coalesce4_last",
			expr:     `coalesce4(nickname, display_name, legal_name, "anonymous")`,
			vars:     map[string]any{"nickname": nil, "display_name": nil, "legal_name": nil},
			expected: "anonymous",
		},
		{
			name:     "ifNull_present",
			expr:     `ifNull(region, "id-jkt")`,
			vars:     map[string]any{"region": "sg-01"},
			expected: "sg-01",
		},
		{
			name:     "ifNull_missing",
			expr:     `ifNull(region, "id-jkt")`,
			vars:     map[string]any{"region": nil},
			expected: "id-jkt",
		},
		{
			name:     "orDefault_present",
			expr:     "orDefault(user_id, 0)",
			vars:     map[string]any{"user_id": int64(42)},
			expected: int64(42),
		},
		{
			name:     "orDefault_missing",
			expr:     "orDefault(user_id, 0)",
			vars:     map[string]any{"user_id": nil},
			expected: int64(0),
		},
		{
			name:     "isNull",
			expr:     "isNull(nickname)",
			vars:     map[string]any{"nickname": nil},
			expected: true,
		},
		{
			name:     "isNull_false_on_value",
			expr:     "isNull(nickname)",
			vars:     map[string]any{"nickname": "Dee"},
			expected: false,
		},
		{
			name:     "isNotNull",
			expr:     "isNotNull(nickname)",
			vars:     map[string]any{"nickname": "Dee"},
			expected: true,
		},
		{
			name:     "isNotNull_false_on_null",
			expr:     "isNotNull(nickname)",
			vars:     map[string]any{"nickname": nil},
			expected: false,
		},
		{
			name:       "nullIf_sentinel_string",
			expr:       `nullIf(region, "N/A")`,
			vars:       map[string]any{"region": "N/A"},
			expectNull: true,
		},
		{
			name:     "nullIf_passthrough",
			expr:     `nullIf(region, "N/A")`,
			vars:     map[string]any{"region": "sg-01"},
			expected: "sg-01",
		},
		{
			name:       "nullIf_zero_int",
			expr:       "nullIf(user_id, 0)",
			vars:       map[string]any{"user_id": int64(0)},
			expectNull: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := evalNull(t, env, tc.expr, tc.vars)
			if tc.expectNull {
				if out.Type() != types.NullType {
					t.Errorf("expected null, got %v (%T)", out.Value(), out.Value())
				}
			} else if out.Value() != tc.expected {
				t.Errorf("got %v (%T), want %v (%T)", out.Value(), out.Value(), tc.expected, tc.expected)
			}
		})
	}
}

// nullIf equality is structural: two lists with equal elements are equal
// even though they are distinct values.
func TestNullFuncs_NullIfStructuralEquality(t *testing.T) {
	env, err := cel.NewEnv(NullFuncs())
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}

	out := evalNull(t, env, "nullIf([1, 2], [1, 2])", map[string]any{})
	if out.Type() != types.NullType {
		t.Errorf("expected null for equal lists, got %v", out.Value())
	}

	out = evalNull(t, env, "nullIf([1, 2], [2, 1])", map[string]any{})
	if out.Type() == types.NullType {
		t.Error("expected the first list back for unequal lists, got null")
	}
}

// parseAmount reports malformed input as null, so the null functions are
// the natural way to default it in an expression.
func TestNullFuncs_ChainsWithParseAmount(t *testing.T) {
	env, err := cel.NewEnv(
		NullFuncs(),
		MoneyFuncs(),
		cel.Variable("amount_text", cel.StringType),
	)
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}

	out := evalNull(t, env, `orDefault(parseAmount(amount_text, "en_US"), -1)`,
		map[string]any{"amount_text": "1,234.56"})
	if out.Value() != int64(123456) {
		t.Errorf("got %v, want 123456 cents", out.Value())
	}

	out = evalNull(t, env, `orDefault(parseAmount(amount_text, "en_US"), -1)`,
		map[string]any{"amount_text": "not an amount"})
	if out.Value() != int64(-1) {
		t.Errorf("got %v, want the -1 default", out.Value())
	}

	out = evalNull(t, env, `isNull(parseAmount(amount_text, "en_US"))`,
		map[string]any{"amount_text": ""})
	if out.Value() != true {
		t.Errorf("got %v, want true for blank input", out.Value())
	}
}

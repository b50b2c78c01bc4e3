package cel

import (
	"fmt"
	"time"

	"github.com/google/cel-go/common/types"
)

// Evaluator runs compiled expressions. Activations come from a pool, so
// repeated evaluation does not allocate a fresh variable map per call.
// CEL null results are normalized to a nil value.
type Evaluator struct {
	activations *activationPool
}

func NewEvaluator() *Evaluator {
	return &Evaluator{activations: newActivationPool()}
}

func (e *Evaluator) Eval(expr *CompiledExpr, vars map[string]any) EvalResult {
	act := e.activations.get(vars)
	out, _, err := expr.program.Eval(act)
	e.activations.put(act)
	if err != nil {
		return NewEvalError(fmt.Errorf("eval: %w", err))
	}
	if _, isNull := out.(types.Null); isNull {
		return NewEvalResult(nil, expr.outputType)
	}
	return NewEvalResult(out.Value(), expr.outputType)
}

func (e *Evaluator) EvalBool(expr *CompiledExpr, vars map[string]any) (bool, error) {
	return e.Eval(expr, vars).Bool()
}

func (e *Evaluator) EvalString(expr *CompiledExpr, vars map[string]any) (string, error) {
	return e.Eval(expr, vars).String()
}

func (e *Evaluator) EvalInt(expr *CompiledExpr, vars map[string]any) (int64, error) {
	return e.Eval(expr, vars).Int()
}

func (e *Evaluator) EvalDouble(expr *CompiledExpr, vars map[string]any) (float64, error) {
	return e.Eval(expr, vars).Double()
}

func (e *Evaluator) EvalTime(expr *CompiledExpr, vars map[string]any) (time.Time, error) {
	return e.Eval(expr, vars).Time()
}

func (e *Evaluator) EvalAny(expr *CompiledExpr, vars map[string]any) (any, error) {
	result := e.Eval(expr, vars)
	if result.Err() != nil {
		return nil, result.Err()
	}
	return result.Value(), nil
}

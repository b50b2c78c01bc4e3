package transform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Executor executes a compiled profile on records.
type Executor struct {
	profile *CompiledProfile
}

// NewExecutor creates an executor for a compiled profile.
func NewExecutor(profile *CompiledProfile) *Executor {
	return &Executor{profile: profile}
}

// Process executes the profile on a single record.
// The record should be a map[string]any representing the decoded document.
func (e *Executor) Process(record map[string]any) Result {
	activation := map[string]any{e.profile.RecordVar: record}
	return e.processWithActivation(activation)
}

// ProcessWithMetadata executes the profile on a record with metadata.
// The metadata map carries additional variables like _record_id,
// _received_at, _source, and _locale.
func (e *Executor) ProcessWithMetadata(record map[string]any, metadata map[string]any) Result {
	activation := make(map[string]any, len(metadata)+1)
	activation[e.profile.RecordVar] = record

	for k, v := range metadata {
		activation[k] = v
	}

	return e.processWithActivation(activation)
}

// processWithActivation processes a record with a pre-built activation map.
func (e *Executor) processWithActivation(activation map[string]any) Result {
	// 1. Validate
	for _, v := range e.profile.Validations {
		out, _, err := v.Program.Eval(activation)
		if err != nil {
			return Result{
				Status:   StatusError,
				Error:    err,
				Location: fmt.Sprintf("validate[%d]", v.Index),
			}
		}

		val, ok := out.Value().(bool)
		if !ok {
			return Result{
				Status:   StatusError,
				Error:    fmt.Errorf("validation returned %T, expected bool", out.Value()),
				Location: fmt.Sprintf("validate[%d]", v.Index),
			}
		}

		if !val {
			return Result{
				Status: StatusRejected,
				Error: &ValidationError{
					Index:      v.Index,
					Expression: v.Source,
					Message:    "validation returned false",
				},
				Location: fmt.Sprintf("validate[%d]", v.Index),
			}
		}
	}

	// 2. Filter
	if e.profile.Filter != nil {
		out, _, err := e.profile.Filter.Program.Eval(activation)
		if err != nil {
			return Result{
				Status:   StatusError,
				Error:    &FilterError{Expression: e.profile.Filter.Source, Err: err},
				Location: "filter",
			}
		}

		val, ok := out.Value().(bool)
		if !ok {
			return Result{
				Status:   StatusError,
				Error:    fmt.Errorf("filter returned %T, expected bool", out.Value()),
				Location: "filter",
			}
		}

		if !val {
			return Result{Status: StatusFiltered}
		}
	}

	// 3. Transform (evaluate fields)
	row := make([]any, len(e.profile.Fields))
	for i, f := range e.profile.Fields {
		out, _, err := f.Program.Eval(activation)
		if err != nil {
			return Result{
				Status: StatusError,
				Error: &FieldError{
					Name:       f.Name,
					Index:      f.Index,
					Expression: f.Source,
					Err:        err,
				},
				Location: fmt.Sprintf("fields[%d]", f.Index),
			}
		}
		row[i] = out.Value()
	}

	return Result{
		Status: StatusOK,
		Row:    row,
	}
}

// ProcessBatch executes the profile on multiple records.
// Returns results in the same order as input records.
func (e *Executor) ProcessBatch(records []map[string]any) *BatchResult {
	result := NewBatchResult(len(records))
	for _, record := range records {
		result.Add(e.Process(record))
	}
	return result
}

// SortRows orders rows in place per the profile's sort spec. The sort is
// stable; rows compare field by field until one comparison differs. Rows
// shorter than a sort field's index sort as null.
func (e *Executor) SortRows(rows [][]any) {
	if len(e.profile.Sort) == 0 || len(rows) < 2 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, sf := range e.profile.Sort {
			var a, b any
			if sf.FieldIndex < len(rows[i]) {
				a = rows[i][sf.FieldIndex]
			}
			if sf.FieldIndex < len(rows[j]) {
				b = rows[j][sf.FieldIndex]
			}

			c := compareWithNulls(a, b, sf.NullOrder)
			if c == 0 {
				continue
			}
			if sf.Direction == SortDesc && a != nil && b != nil {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareWithNulls compares two values, placing nulls per the null order.
// Null placement is independent of sort direction: nulls-first puts nulls
// at the head of the output whether ascending or descending.
func compareWithNulls(a, b any, nullOrder NullOrder) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if nullOrder == NullsFirst {
			return -1
		}
		return 1
	case b == nil:
		if nullOrder == NullsFirst {
			return 1
		}
		return -1
	}
	return compareValues(a, b)
}

// compareValues compares two non-nil row values. Numeric types compare
// numerically across int/uint/float representations; everything else falls
// back to string comparison.
func compareValues(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// toFloat widens any numeric row value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Profile returns the compiled profile.
func (e *Executor) Profile() *CompiledProfile {
	return e.profile
}

// OutputSchema returns the Arrow output schema.
func (e *Executor) OutputSchema() *arrow.Schema {
	return e.profile.OutputSchema
}

// FieldNames returns the output field names.
func (e *Executor) FieldNames() []string {
	return e.profile.FieldNames()
}

// FieldCount returns the number of output fields.
func (e *Executor) FieldCount() int {
	return e.profile.FieldCount()
}

package ext

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// ListFuncs returns CEL environment options for list/array operations.
// The field-based functions accept dot notation for nested access
// ("item.price").
//
// Functions:
//   - sum(list<int>) -> int: Sum of integers
//   - sumDouble(list<double>) -> double: Sum of doubles
//   - min(list<int>) -> int: Minimum integer
//   - minDouble(list<double>) -> double: Minimum double
//   - max(list<int>) -> int: Maximum integer
//   - maxDouble(list<double>) -> double: Maximum double
//   - first(list<dyn>) -> dyn: First element (null if empty)
//   - last(list<dyn>) -> dyn: Last element (null if empty)
//   - avg(list<int>) -> double: Average of integers
//   - avgDouble(list<double>) -> double: Average of doubles
//   - flatten(list<list<dyn>>) -> list<dyn>: Flatten nested list
//   - chunk(list<dyn>, int) -> list<list<dyn>>: Split into fixed-size chunks
//   - groupBy(list<dyn>, string) -> map<string, list<dyn>>: Bucket by field value
//   - sortBy(list<dyn>, string) -> list<dyn>: Stable ascending sort by field
//   - pluck(list<dyn>, string) -> list<dyn>: Collect field values
//   - sumBy(list<dyn>, string) -> double: Sum field values from list of maps
//   - avgBy(list<dyn>, string) -> double: Average field values from list of maps
//   - minBy(list<dyn>, string) -> double: Min field value from list of maps
//   - maxBy(list<dyn>, string) -> double: Max field value from list of maps
func ListFuncs() cel.EnvOption {
	return cel.Lib(&listLib{})
}

type listLib struct{}

func (l *listLib) LibraryName() string {
	return "fieldry.lists"
}

func (l *listLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		// sum for int list
		cel.Function("sum",
			cel.Overload("sum_list_int",
				[]*cel.Type{cel.ListType(cel.IntType)},
				cel.IntType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					var sum int64
					for i := 0; i < size; i++ {
						sum += int64(lister.Get(types.Int(i)).(types.Int))
					}
					return types.Int(sum)
				}),
			),
		),
		// sum for double list
		cel.Function("sumDouble",
			cel.Overload("sum_list_double",
				[]*cel.Type{cel.ListType(cel.DoubleType)},
				cel.DoubleType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					var sum float64
					for i := 0; i < size; i++ {
						sum += float64(lister.Get(types.Int(i)).(types.Double))
					}
					return types.Double(sum)
				}),
			),
		),
		// min for int list
		cel.Function("min",
			cel.Overload("min_list_int",
				[]*cel.Type{cel.ListType(cel.IntType)},
				cel.IntType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.NewErr("min: empty list")
					}
					minVal := int64(lister.Get(types.Int(0)).(types.Int))
					for i := 1; i < size; i++ {
						v := int64(lister.Get(types.Int(i)).(types.Int))
						if v < minVal {
							minVal = v
						}
					}
					return types.Int(minVal)
				}),
			),
		),
		// min for double list
		cel.Function("minDouble",
			cel.Overload("min_list_double",
				[]*cel.Type{cel.ListType(cel.DoubleType)},
				cel.DoubleType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.NewErr("minDouble: empty list")
					}
					minVal := float64(lister.Get(types.Int(0)).(types.Double))
					for i := 1; i < size; i++ {
						v := float64(lister.Get(types.Int(i)).(types.Double))
						if v < minVal {
							minVal = v
						}
					}
					return types.Double(minVal)
				}),
			),
		),
		// max for int list
		cel.Function("max",
			cel.Overload("max_list_int",
				[]*cel.Type{cel.ListType(cel.IntType)},
				cel.IntType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.NewErr("max: empty list")
					}
					maxVal := int64(lister.Get(types.Int(0)).(types.Int))
					for i := 1; i < size; i++ {
						v := int64(lister.Get(types.Int(i)).(types.Int))
						if v > maxVal {
							maxVal = v
						}
					}
					return types.Int(maxVal)
				}),
			),
		),
		// max for double list
		cel.Function("maxDouble",
			cel.Overload("max_list_double",
				[]*cel.Type{cel.ListType(cel.DoubleType)},
				cel.DoubleType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.NewErr("maxDouble: empty list")
					}
					maxVal := float64(lister.Get(types.Int(0)).(types.Double))
					for i := 1; i < size; i++ {
						v := float64(lister.Get(types.Int(i)).(types.Double))
						if v > maxVal {
							maxVal = v
						}
					}
					return types.Double(maxVal)
				}),
			),
		),
		// first element
		cel.Function("first",
			cel.Overload("first_list",
				[]*cel.Type{cel.ListType(cel.DynType)},
				cel.DynType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.NullValue
					}
					return lister.Get(types.Int(0))
				}),
			),
		),
		// last element
		cel.Function("last",
			cel.Overload("last_list",
				[]*cel.Type{cel.ListType(cel.DynType)},
				cel.DynType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.NullValue
					}
					return lister.Get(types.Int(size - 1))
				}),
			),
		),
		// avg for int list (returns double)
		cel.Function("avg",
			cel.Overload("avg_list_int",
				[]*cel.Type{cel.ListType(cel.IntType)},
				cel.DoubleType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.Double(math.NaN())
					}
					var sum int64
					for i := 0; i < size; i++ {
						sum += int64(lister.Get(types.Int(i)).(types.Int))
					}
					return types.Double(float64(sum) / float64(size))
				}),
			),
		),
		// avg for double list
		cel.Function("avgDouble",
			cel.Overload("avg_list_double",
				[]*cel.Type{cel.ListType(cel.DoubleType)},
				cel.DoubleType,
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					lister := list.(traits.Lister)
					size := int(lister.Size().(types.Int))
					if size == 0 {
						return types.Double(math.NaN())
					}
					var sum float64
					for i := 0; i < size; i++ {
						sum += float64(lister.Get(types.Int(i)).(types.Double))
					}
					return types.Double(sum / float64(size))
				}),
			),
		),
		// flatten nested list
		cel.Function("flatten",
			cel.Overload("flatten_list_list",
				[]*cel.Type{cel.ListType(cel.ListType(cel.DynType))},
				cel.ListType(cel.DynType),
				cel.UnaryBinding(func(list ref.Val) ref.Val {
					outer := list.(traits.Lister)
					outerSize := int(outer.Size().(types.Int))
					var result []ref.Val
					for i := 0; i < outerSize; i++ {
						inner := outer.Get(types.Int(i)).(traits.Lister)
						innerSize := int(inner.Size().(types.Int))
						for j := 0; j < innerSize; j++ {
							result = append(result, inner.Get(types.Int(j)))
						}
					}
					return types.DefaultTypeAdapter.NativeToValue(result)
				}),
			),
		),
		// chunk - split into consecutive fixed-size chunks
		cel.Function("chunk",
			cel.Overload("chunk_list_int",
				[]*cel.Type{cel.ListType(cel.DynType), cel.IntType},
				cel.ListType(cel.ListType(cel.DynType)),
				cel.BinaryBinding(func(list, size ref.Val) ref.Val {
					lister := list.(traits.Lister)
					n := int(lister.Size().(types.Int))
					chunkSize := int(size.(types.Int))
					if chunkSize < 1 {
						chunkSize = n
					}
					var result [][]ref.Val
					for start := 0; start < n; start += chunkSize {
						end := start + chunkSize
						if end > n {
							end = n
						}
						chunk := make([]ref.Val, 0, end-start)
						for i := start; i < end; i++ {
							chunk = append(chunk, lister.Get(types.Int(i)))
						}
						result = append(result, chunk)
					}
					return types.DefaultTypeAdapter.NativeToValue(result)
				}),
			),
		),
		// groupBy - bucket maps by the string form of a field value
		cel.Function("groupBy",
			cel.Overload("groupBy_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.MapType(cel.StringType, cel.ListType(cel.DynType)),
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					lister, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("groupBy: first argument must be a list")
					}
					fieldName := string(field.(types.String))
					size := int(lister.Size().(types.Int))

					groups := make(map[string][]ref.Val)
					for i := 0; i < size; i++ {
						item := lister.Get(types.Int(i))
						val, err := extractField(item, fieldName)
						if err != nil {
							return types.NewErr("groupBy: %v", err)
						}
						key := fieldKey(val)
						groups[key] = append(groups[key], item)
					}
					return types.DefaultTypeAdapter.NativeToValue(groups)
				}),
			),
		),
		// sortBy - stable ascending sort by a field value
		cel.Function("sortBy",
			cel.Overload("sortBy_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.ListType(cel.DynType),
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					lister, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("sortBy: first argument must be a list")
					}
					fieldName := string(field.(types.String))
					size := int(lister.Size().(types.Int))

					items := make([]ref.Val, size)
					keys := make([]ref.Val, size)
					for i := 0; i < size; i++ {
						items[i] = lister.Get(types.Int(i))
						val, err := extractField(items[i], fieldName)
						if err != nil {
							return types.NewErr("sortBy: %v", err)
						}
						keys[i] = val
					}
					// index sort keeps keys and items aligned
					idx := make([]int, size)
					for i := range idx {
						idx[i] = i
					}
					sort.SliceStable(idx, func(i, j int) bool {
						return fieldLess(keys[idx[i]], keys[idx[j]])
					})
					sorted := make([]ref.Val, size)
					for i, j := range idx {
						sorted[i] = items[j]
					}
					return types.DefaultTypeAdapter.NativeToValue(sorted)
				}),
			),
		),
		// pluck - collect a field value from each map, skipping absent fields
		cel.Function("pluck",
			cel.Overload("pluck_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.ListType(cel.DynType),
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					lister, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("pluck: first argument must be a list")
					}
					fieldName := string(field.(types.String))
					size := int(lister.Size().(types.Int))

					result := make([]ref.Val, 0, size)
					for i := 0; i < size; i++ {
						val, err := extractField(lister.Get(types.Int(i)), fieldName)
						if err != nil {
							continue
						}
						result = append(result, val)
					}
					return types.DefaultTypeAdapter.NativeToValue(result)
				}),
			),
		),
		// sumBy - sum a field from list of maps
		cel.Function("sumBy",
			cel.Overload("sumBy_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.DoubleType,
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					return aggregateByField(list, field, aggSum)
				}),
			),
		),
		// avgBy - average a field from list of maps
		cel.Function("avgBy",
			cel.Overload("avgBy_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.DoubleType,
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					return aggregateByField(list, field, aggAvg)
				}),
			),
		),
		// minBy - min of a field from list of maps
		cel.Function("minBy",
			cel.Overload("minBy_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.DoubleType,
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					return aggregateByField(list, field, aggMin)
				}),
			),
		),
		// maxBy - max of a field from list of maps
		cel.Function("maxBy",
			cel.Overload("maxBy_list_string",
				[]*cel.Type{cel.ListType(cel.DynType), cel.StringType},
				cel.DoubleType,
				cel.BinaryBinding(func(list, field ref.Val) ref.Val {
					return aggregateByField(list, field, aggMax)
				}),
			),
		),
	}
}

func (l *listLib) ProgramOptions() []cel.ProgramOption {
	return nil
}

// aggregation type constants
type aggType int

const (
	aggSum aggType = iota
	aggAvg
	aggMin
	aggMax
)

// aggregateByField extracts a numeric field from each map in the list and aggregates.
// Supports nested fields via dot notation: "item.price"
func aggregateByField(list, field ref.Val, agg aggType) ref.Val {
	lister, ok := list.(traits.Lister)
	if !ok {
		return types.NewErr("sumBy: first argument must be a list")
	}

	fieldName := string(field.(types.String))
	size := int(lister.Size().(types.Int))

	if size == 0 {
		if agg == aggAvg {
			return types.Double(math.NaN())
		}
		return types.Double(0)
	}

	var sum float64
	var minVal, maxVal float64
	first := true

	for i := 0; i < size; i++ {
		item := lister.Get(types.Int(i))
		val, err := extractNumericField(item, fieldName)
		if err != nil {
			return types.NewErr("%s: %v", aggName(agg), err)
		}

		sum += val
		if first {
			minVal = val
			maxVal = val
			first = false
		} else {
			if val < minVal {
				minVal = val
			}
			if val > maxVal {
				maxVal = val
			}
		}
	}

	switch agg {
	case aggSum:
		return types.Double(sum)
	case aggAvg:
		return types.Double(sum / float64(size))
	case aggMin:
		return types.Double(minVal)
	case aggMax:
		return types.Double(maxVal)
	default:
		return types.Double(sum)
	}
}

func aggName(agg aggType) string {
	switch agg {
	case aggSum:
		return "sumBy"
	case aggAvg:
		return "avgBy"
	case aggMin:
		return "minBy"
	case aggMax:
		return "maxBy"
	default:
		return "aggregateBy"
	}
}

// extractField gets a value from a map, supporting nested field access
// via dot notation.
func extractField(item ref.Val, fieldPath string) (ref.Val, error) {
	current := item
	for _, part := range splitFieldPath(fieldPath) {
		mapper, ok := current.(traits.Mapper)
		if !ok {
			return nil, fmt.Errorf("cannot access field %q on non-map value", part)
		}
		current = mapper.Get(types.String(part))
		if types.IsError(current) {
			return nil, fmt.Errorf("field %q not found", part)
		}
	}
	return current, nil
}

// extractNumericField gets a numeric value from a map, supporting nested field access.
func extractNumericField(item ref.Val, fieldPath string) (float64, error) {
	current, err := extractField(item, fieldPath)
	if err != nil {
		return 0, err
	}

	// to float64
	switch v := current.(type) {
	case types.Int:
		return float64(v), nil
	case types.Double:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("field value is not numeric: %T", current)
	}
}

// fieldKey renders a field value as a map key string.
func fieldKey(v ref.Val) string {
	if s, ok := v.(types.String); ok {
		return string(s)
	}
	if conv, ok := v.ConvertToType(types.StringType).(types.String); ok {
		return string(conv)
	}
	return fmt.Sprintf("%v", v.Value())
}

// fieldLess orders two field values: numerically when both are numeric,
// by string form otherwise.
func fieldLess(a, b ref.Val) bool {
	af, aNum := numericValue(a)
	bf, bNum := numericValue(b)
	if aNum && bNum {
		return af < bf
	}
	return fieldKey(a) < fieldKey(b)
}

func numericValue(v ref.Val) (float64, bool) {
	switch n := v.(type) {
	case types.Int:
		return float64(n), true
	case types.Double:
		return float64(n), true
	case types.Uint:
		return float64(n), true
	default:
		return 0, false
	}
}

// splitFieldPath splits "a.b.c" into ["a", "b", "c"]
func splitFieldPath(path string) []string {
	if path == "" {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		parts = append(parts, path[start:])
	}
	return parts
}

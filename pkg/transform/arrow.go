package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/cel-go/cel"
)

var (
	// ErrNilType is returned when a nil type is provided.
	ErrNilType = errors.New("nil type")

	// ErrInvalidOutputType is returned when an invalid "as" type is specified.
	ErrInvalidOutputType = errors.New("invalid output type")
)

// CEL Expression -> CEL Type -> Arrow Type
// A field expression like record.amount * 100 (amount is of type int)
// compiles with CEL inferring the type (int):
//
//	ast, _ := env.Compile("record.amount * 100")
//	celType := ast.OutputType()            -> cel.IntType
//	arrowType, _ := CELTypeToArrow(celType) -> arrow.Int64
//
// Example profile
//
//	{
//	  "fields": [
//	    {"name": "order_id", "expr": "record.order_id"},
//	    {"name": "amount", "expr": "record.amount"},
//	    {"name": "is_large", "expr": "record.amount > 100.0"},
//	    {"name": "item_count", "expr": "record.items.size()"},
//	    {"name": "created_at", "expr": "record.created_at"},
//	    {"name": "tags", "expr": "record.tags"}
//	  ]
//	}
//
// Resulting Arrow schema
//
//	| Field      | CEL Type     | Arrow Type          |
//	|------------|--------------|---------------------|
//	| order_id   | string       | String              |
//	| amount     | double       | Float64             |
//	| is_large   | bool         | Boolean             |
//	| item_count | int          | Int64               |
//	| created_at | timestamp    | Timestamp(µs, UTC)  |
//	| tags       | list(string) | List                |

// CELTypeToArrow converts a CEL type to an Arrow data type.
//
// bool, int, uint, double, string, bytes map directly to Arrow equivalents.
// Timestamps and durations use microsecond precision.
// Lists and maps are handled recursively.
// Unknown or dynamic types serialize to JSON strings.
func CELTypeToArrow(celType *cel.Type) (arrow.DataType, error) {
	if celType == nil {
		return nil, ErrNilType
	}

	switch celType.String() {
	case "bool":
		return arrow.FixedWidthTypes.Boolean, nil
	case "int":
		return arrow.PrimitiveTypes.Int64, nil
	case "uint":
		return arrow.PrimitiveTypes.Uint64, nil
	case "double":
		return arrow.PrimitiveTypes.Float64, nil
	case "string":
		return arrow.BinaryTypes.String, nil
	case "bytes":
		return arrow.BinaryTypes.Binary, nil
	case "google.protobuf.Timestamp", "timestamp":
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case "google.protobuf.Duration", "duration":
		return arrow.FixedWidthTypes.Duration_us, nil
	case "null", "null_type":
		return arrow.Null, nil
	case "dyn":
		return arrow.BinaryTypes.String, nil
	case "type":
		return arrow.BinaryTypes.String, nil
	}

	// parameterized types ?
	typeName := celType.String()

	// List types: list(T)
	if len(typeName) > 5 && typeName[:5] == "list(" {
		params := celType.Parameters()
		if len(params) > 0 {
			elemType, err := CELTypeToArrow(params[0])
			if err != nil {
				return nil, fmt.Errorf("list element type: %w", err)
			}
			return arrow.ListOf(elemType), nil
		}
		// Fallback for list without parameters
		return arrow.ListOf(arrow.BinaryTypes.String), nil
	}

	// Map types: map(K, V)
	if len(typeName) > 4 && typeName[:4] == "map(" {
		params := celType.Parameters()
		if len(params) >= 2 {
			keyType, err := CELTypeToArrow(params[0])
			if err != nil {
				return nil, fmt.Errorf("map key type: %w", err)
			}
			valType, err := CELTypeToArrow(params[1])
			if err != nil {
				return nil, fmt.Errorf("map value type: %w", err)
			}
			return arrow.MapOf(keyType, valType), nil
		}
		// Fallback for map without parameters
		return arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String), nil
	}

	// Custom object types serialize as JSON strings
	return arrow.BinaryTypes.String, nil
}

// ParseOutputType parses an "as" type string into an Arrow data type.
// Supported types match common analytics formats:
//   - boolean, int, long, float, double: primitive numerics
//   - string, binary: byte sequences
//   - date, time: calendar/clock types
//   - timestamp, timestamptz: datetime with/without timezone
//   - decimal(P,S): fixed-point decimal with precision P and scale S
//   - uuid: 16-byte UUID
func ParseOutputType(typeStr string) (arrow.DataType, error) {
	if typeStr == "" {
		return nil, nil
	}
	typeStr = strings.ToLower(typeStr)

	switch typeStr {
	case "boolean", "bool":
		return arrow.FixedWidthTypes.Boolean, nil
	case "int", "int32":
		return arrow.PrimitiveTypes.Int32, nil
	case "long", "int64":
		return arrow.PrimitiveTypes.Int64, nil
	case "float", "float32":
		return arrow.PrimitiveTypes.Float32, nil
	case "double", "float64":
		return arrow.PrimitiveTypes.Float64, nil
	case "string":
		return arrow.BinaryTypes.String, nil
	case "binary", "bytes":
		return arrow.BinaryTypes.Binary, nil
	case "date":
		return arrow.FixedWidthTypes.Date32, nil
	case "time":
		return arrow.FixedWidthTypes.Time64us, nil
	case "timestamp":
		// local datetime
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case "timestamptz":
		// UTC
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case "uuid":
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, nil
	}

	// check for decimal(P,S)
	if len(typeStr) > 8 && typeStr[:8] == "decimal(" && typeStr[len(typeStr)-1] == ')' {
		params := typeStr[8 : len(typeStr)-1]
		var precision, scale int32
		n, err := fmt.Sscanf(params, "%d,%d", &precision, &scale)
		if err != nil || n != 2 {
			return nil, fmt.Errorf("%w: %s (expected decimal(P,S))", ErrInvalidOutputType, typeStr)
		}
		if precision <= 0 || precision > 38 {
			return nil, fmt.Errorf("%w: %s (precision must be 1-38)", ErrInvalidOutputType, typeStr)
		}
		if scale < 0 || scale > precision {
			return nil, fmt.Errorf("%w: %s (scale must be 0 to precision)", ErrInvalidOutputType, typeStr)
		}
		return &arrow.Decimal128Type{Precision: precision, Scale: scale}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidOutputType, typeStr)
}

// BuildOutputSchema creates the Arrow output schema from compiled fields.
// Fields carrying a field_id get PARQUET:field_id metadata; fields used by
// the partition or sort spec are marked so downstream writers can lay out
// files accordingly.
func BuildOutputSchema(
	fields []CompiledField,
	partitions []CompiledPartition,
	sortFields []CompiledSort,
) (*arrow.Schema, error) {
	partitionIndices := make(map[int]bool)
	for _, pf := range partitions {
		partitionIndices[pf.FieldIndex] = true
	}
	sortIndices := make(map[int]bool)
	for _, sf := range sortFields {
		sortIndices[sf.FieldIndex] = true
	}

	arrowFields := make([]arrow.Field, len(fields))

	for i, f := range fields {
		arrowType := f.ArrowType
		if arrowType == nil {
			var err error
			arrowType, err = CELTypeToArrow(f.CELType)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
		}

		var metaKeys, metaVals []string

		if f.FieldID != nil {
			metaKeys = append(metaKeys, "PARQUET:field_id")
			metaVals = append(metaVals, strconv.Itoa(*f.FieldID))
		}

		if partitionIndices[i] {
			metaKeys = append(metaKeys, "partition")
			metaVals = append(metaVals, "true")
		}

		if sortIndices[i] {
			metaKeys = append(metaKeys, "sort")
			metaVals = append(metaVals, "true")
		}

		var meta arrow.Metadata
		if len(metaKeys) > 0 {
			meta = arrow.NewMetadata(metaKeys, metaVals)
		}

		arrowFields[i] = arrow.Field{
			Name:     f.Name,
			Type:     arrowType,
			Nullable: f.Nullable,
			Metadata: meta,
		}
	}

	return arrow.NewSchema(arrowFields, nil), nil
}

// IsNullableCELType returns true if the CEL type can represent null.
func IsNullableCELType(celType *cel.Type) bool {
	if celType == nil {
		return true
	}
	switch celType.String() {
	case "null", "null_type", "dyn":
		return true
	default:
		return false
	}
}

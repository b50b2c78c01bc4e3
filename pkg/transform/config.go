// Package transform compiles declarative record-transform profiles into
// executable CEL programs. A profile is embedded in a schema document under
// "x-transform" and describes validations, an optional filter, the output
// fields, and optional partition and sort specs.
package transform

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies the schema document format a profile is embedded in.
type Format string

const (
	// FormatAvro indicates an Avro record schema.
	FormatAvro Format = "avro"

	// FormatJSON indicates a JSON Schema document.
	FormatJSON Format = "json"
)

func (f Format) String() string {
	if f == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(f))
}

// SortDirection defines the sort order direction.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// NullOrder defines where nulls appear in sorted output.
//
//	Data: [3, NULL, 1, NULL, 2]
//
//	nulls-first + asc: [NULL, NULL, 1, 2, 3]
//	nulls-last  + asc: [1, 2, 3, NULL, NULL]
//
//	nulls-first + desc: [NULL, NULL, 3, 2, 1]
//	nulls-last  + desc: [3, 2, 1, NULL, NULL]
type NullOrder string

const (
	NullsFirst NullOrder = "nulls-first"
	NullsLast  NullOrder = "nulls-last"
)

var (
	// ErrNoFields is returned when Fields is empty.
	ErrNoFields = errors.New("profile must have at least one field")
	// ErrEmptyFieldName is returned when a field has an empty name.
	ErrEmptyFieldName = errors.New("field name cannot be empty")
	// ErrEmptyFieldExpr is returned when a field has an empty expression.
	ErrEmptyFieldExpr = errors.New("field expression cannot be empty")
	// ErrDuplicateFieldName is returned when two fields have the same name.
	ErrDuplicateFieldName = errors.New("duplicate field name")
	// ErrEmptyValidation is returned when a validate expression is empty.
	ErrEmptyValidation = errors.New("validate expression cannot be empty")
	// ErrInvalidFieldID is returned when field_id is out of valid range.
	ErrInvalidFieldID = errors.New("field_id must be positive and less than 2147483647")
	// ErrDuplicateFieldID is returned when two fields have the same field_id.
	ErrDuplicateFieldID = errors.New("duplicate field_id")
	// ErrUnknownField is returned when a partition or sort entry references
	// a field name that is not declared under fields.
	ErrUnknownField = errors.New("unknown field")
	// ErrBadTransform is returned when a partition transform is not recognized.
	ErrBadTransform = errors.New("invalid transform")
	// ErrBadDirection is returned when a sort direction is invalid.
	ErrBadDirection = errors.New("invalid direction: must be 'asc' or 'desc'")
	// ErrBadNullOrder is returned when a null order is invalid.
	ErrBadNullOrder = errors.New("invalid null_order: must be 'nulls-first' or 'nulls-last'")
	// ErrBadPartition is returned when a partition entry is malformed.
	ErrBadPartition = errors.New("invalid partition")
)

// Config represents the x-transform configuration embedded in a schema.
// It defines how records are validated, filtered, and reshaped.
type Config struct {
	// Validations contains boolean expressions that must all return true.
	// Records failing any validation are rejected with an error.
	Validations []string `json:"validate,omitempty"`

	// Filter is a boolean expression. Records where filter returns false
	// are silently dropped (not an error).
	Filter string `json:"filter,omitempty"`

	// Fields defines the output row. Each field is a CEL expression
	// evaluated against the input record.
	Fields []FieldSpec `json:"fields"`

	// Partitions defines how to partition output rows.
	// Each entry names a source field and a transform.
	Partitions []PartitionField `json:"partitions,omitempty"`

	// Sort defines how to order rows within partitions.
	// Multiple entries create a composite sort key.
	Sort []SortField `json:"sort,omitempty"`
}

// FieldSpec defines an output field.
type FieldSpec struct {
	// Name is the output field name. Must be unique within Fields.
	Name string `json:"name"`

	// Expr is a CEL expression evaluated against the input record.
	// The expression's return type determines the field's data type.
	Expr string `json:"expr"`

	// As overrides the CEL-inferred type with an explicit output type.
	// Useful when the target system requires a specific type that
	// CEL doesn't natively support.
	// Supported values: date, time, timestamp, timestamptz, float, int,
	// decimal(P,S), uuid, binary, string, boolean, long, double.
	As string `json:"as,omitempty"`

	// FieldID is an optional field ID for schema evolution support.
	// When specified, it is attached to the output schema as
	// PARQUET:field_id metadata. Must be unique and positive.
	FieldID *int `json:"field_id,omitempty"`
}

// PartitionField defines a single partition dimension.
type PartitionField struct {
	// Field is the name of the source field from Fields.
	Field string `json:"field"`

	// Transform specifies how to derive the partition value from the source.
	// Options: identity, bucket, truncate, year, month, day, hour, void
	Transform PartitionTransform `json:"transform"`

	// Param is an optional parameter for parameterized transforms.
	// Used by bucket (N buckets) and truncate (width W).
	Param int `json:"param,omitempty"`

	// Name is the partition key name in the output path. Defaults to Field.
	// Example: "dt" produces path segments like "dt=2024-12-31".
	Name string `json:"name,omitempty"`
}

// Key returns the partition key name used in output paths.
func (pf PartitionField) Key() string {
	if pf.Name != "" {
		return pf.Name
	}
	return pf.Field
}

// SortField defines a single sort dimension.
type SortField struct {
	// Field is the name of the source field from Fields.
	Field string `json:"field"`

	// Direction is the sort order: "asc" or "desc".
	Direction SortDirection `json:"direction"`

	// NullOrder specifies where nulls appear: "nulls-first" or "nulls-last".
	NullOrder NullOrder `json:"null_order"`
}

// Validate checks if the configuration is structurally valid.
func (c *Config) Validate() error {
	if len(c.Fields) == 0 {
		return ErrNoFields
	}

	names := make(map[string]bool, len(c.Fields))
	fieldIDs := make(map[int]bool)
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("fields[%d]: %w", i, ErrEmptyFieldName)
		}
		if f.Expr == "" {
			return fmt.Errorf("fields[%d] %q: %w", i, f.Name, ErrEmptyFieldExpr)
		}
		if names[f.Name] {
			return fmt.Errorf("fields[%d]: %w: %q", i, ErrDuplicateFieldName, f.Name)
		}
		names[f.Name] = true

		if f.FieldID != nil {
			id := *f.FieldID
			if id <= 0 || id >= 2147483647 {
				return fmt.Errorf("fields[%d] %q: %w", i, f.Name, ErrInvalidFieldID)
			}
			if fieldIDs[id] {
				return fmt.Errorf("fields[%d] %q: %w: %d", i, f.Name, ErrDuplicateFieldID, id)
			}
			fieldIDs[id] = true
		}
	}

	for i, expr := range c.Validations {
		if expr == "" {
			return fmt.Errorf("validate[%d]: %w", i, ErrEmptyValidation)
		}
	}

	if err := c.validatePartitions(names); err != nil {
		return err
	}

	return c.validateSort(names)
}

// validatePartitions validates the partition specification.
func (c *Config) validatePartitions(fieldNames map[string]bool) error {
	keys := make(map[string]bool, len(c.Partitions))

	for i, pf := range c.Partitions {
		if pf.Field == "" {
			return fmt.Errorf("partitions[%d]: %w: field cannot be empty", i, ErrBadPartition)
		}
		if !fieldNames[pf.Field] {
			return fmt.Errorf("partitions[%d]: %w: %q is not a declared field", i, ErrUnknownField, pf.Field)
		}
		if !isValidTransform(pf.Transform) {
			return fmt.Errorf("partitions[%d]: %w: %q", i, ErrBadTransform, pf.Transform)
		}
		if keys[pf.Key()] {
			return fmt.Errorf("partitions[%d]: %w: duplicate partition key %q", i, ErrBadPartition, pf.Key())
		}
		keys[pf.Key()] = true
	}

	return nil
}

// validateSort validates the sort specification.
func (c *Config) validateSort(fieldNames map[string]bool) error {
	for i, sf := range c.Sort {
		if sf.Field == "" || !fieldNames[sf.Field] {
			return fmt.Errorf("sort[%d]: %w: %q is not a declared field", i, ErrUnknownField, sf.Field)
		}
		if sf.Direction != SortAsc && sf.Direction != SortDesc {
			return fmt.Errorf("sort[%d]: %w: %q", i, ErrBadDirection, sf.Direction)
		}
		if sf.NullOrder != NullsFirst && sf.NullOrder != NullsLast {
			return fmt.Errorf("sort[%d]: %w: %q", i, ErrBadNullOrder, sf.NullOrder)
		}
	}

	return nil
}

// isValidTransform checks if the transform is recognized.
func isValidTransform(t PartitionTransform) bool {
	switch t {
	case TransformIdentity, TransformBucket, TransformTruncate,
		TransformYear, TransformMonth, TransformDay, TransformHour, TransformVoid:
		return true
	default:
		return false
	}
}

// FieldNames returns all field names in order.
func (c *Config) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the index of a field by name, or -1 if not found.
func (c *Config) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// HasValidation returns true if there are validation expressions.
func (c *Config) HasValidation() bool {
	return len(c.Validations) > 0
}

// HasFilter returns true if there is a filter expression.
func (c *Config) HasFilter() bool {
	return c.Filter != ""
}

// HasPartitions returns true if a partition spec is defined.
func (c *Config) HasPartitions() bool {
	return len(c.Partitions) > 0
}

// HasSort returns true if a sort spec is defined.
func (c *Config) HasSort() bool {
	return len(c.Sort) > 0
}

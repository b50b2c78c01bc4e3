package transform

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/cel-go/cel"
)

// CompiledProfile holds pre-compiled CEL programs ready for execution.
type CompiledProfile struct {
	Config     *Config
	SchemaName string

	// RecordVar is the activation variable name the record is bound to.
	RecordVar string

	// compiled expressions.
	Validations []CompiledValidation
	Filter      *CompiledFilter

	// compiled field expressions.
	Fields []CompiledField

	// OutputSchema is the Arrow schema for the output rows.
	// Derived from the CEL types of the field expressions.
	OutputSchema *arrow.Schema

	// Partitions contains resolved partition field definitions.
	Partitions []CompiledPartition

	// Sort contains resolved sort field definitions.
	Sort []CompiledSort
}

// CompiledValidation holds a compiled validation expression.
type CompiledValidation struct {
	// Index is the position in the validate array (for error reporting).
	Index int
	// original expression text.
	Source string
	// compiled CEL program.
	Program cel.Program
}

// CompiledFilter holds a compiled filter expression.
type CompiledFilter struct {
	Source  string
	Program cel.Program
}

// CompiledField holds a compiled field expression.
type CompiledField struct {
	// Name is the output field name.
	Name string

	// Index is the field index (0-indexed) within output rows.
	Index int

	Source  string
	Program cel.Program
	// CEL output type.
	CELType *cel.Type
	// Arrow output type (explicit "as" override or inferred from CELType).
	ArrowType arrow.DataType

	// Nullable indicates whether the field can hold null values.
	Nullable bool

	// FieldID is the optional schema-evolution field ID.
	FieldID *int
}

// CompiledPartition holds a resolved partition field.
type CompiledPartition struct {
	// Field is the source field name.
	Field string

	// Transform specifies how to derive the partition value from the source.
	Transform PartitionTransform

	// Param is an optional parameter for parameterized transforms (bucket, truncate).
	Param int

	// Name is the partition key name in the output path.
	Name string

	// FieldIndex is the resolved index into the output row.
	FieldIndex int
}

// CompiledSort holds a resolved sort field.
type CompiledSort struct {
	// Field is the source field name.
	Field string

	// Direction is the sort order: asc or desc.
	Direction SortDirection

	// NullOrder specifies where nulls appear: nulls-first or nulls-last.
	NullOrder NullOrder

	// FieldIndex is the resolved index into the output row.
	FieldIndex int
}

// FieldNames returns all output field names in order.
func (c *CompiledProfile) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// PartitionKeys returns partition key names (for Hive-style directory paths).
func (c *CompiledProfile) PartitionKeys() []string {
	keys := make([]string, len(c.Partitions))
	for i, pf := range c.Partitions {
		keys[i] = pf.Name
	}
	return keys
}

// HasValidation returns true if there are validation expressions.
func (c *CompiledProfile) HasValidation() bool {
	return len(c.Validations) > 0
}

// HasFilter returns true if there is a filter expression.
func (c *CompiledProfile) HasFilter() bool {
	return c.Filter != nil
}

// HasPartitions returns true if a partition spec is defined.
func (c *CompiledProfile) HasPartitions() bool {
	return len(c.Partitions) > 0
}

// HasSort returns true if a sort spec is defined.
func (c *CompiledProfile) HasSort() bool {
	return len(c.Sort) > 0
}

// FieldCount returns the number of output fields.
func (c *CompiledProfile) FieldCount() int {
	return len(c.Fields)
}

// GetField returns the field at the given index, or nil when out of range.
func (c *CompiledProfile) GetField(index int) *CompiledField {
	if index < 0 || index >= len(c.Fields) {
		return nil
	}
	return &c.Fields[index]
}

// GetFieldByName returns the field with the given name, or nil.
func (c *CompiledProfile) GetFieldByName(name string) *CompiledField {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

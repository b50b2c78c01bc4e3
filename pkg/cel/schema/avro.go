package schema

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/hamba/avro/v2"
)

var (
	// ErrNotAvroSchema is returned when MappedSchema.Raw is not an avro.Schema.
	ErrNotAvroSchema = errors.New("schema is not an Avro schema")

	// ErrNotRecordSchema is returned when the Avro schema is not a record type.
	ErrNotRecordSchema = errors.New("schema must be a record type")
)

// AvroMapper parses Avro schema documents for use with the TypeProvider.
type AvroMapper struct{}

// NewAvroMapper creates a new AvroMapper.
func NewAvroMapper() *AvroMapper {
	return &AvroMapper{}
}

// Map parses Avro schema JSON and returns a MappedSchema.
func (m *AvroMapper) Map(schema []byte) (*MappedSchema, error) {
	parsed, err := avro.Parse(string(schema))
	if err != nil {
		return nil, err
	}
	return m.FromSchema(parsed)
}

// FromSchema wraps an already parsed avro.Schema.
func (m *AvroMapper) FromSchema(schema avro.Schema) (*MappedSchema, error) {
	if _, ok := schema.(*avro.RecordSchema); !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotRecordSchema, schema.Type())
	}
	return &MappedSchema{Raw: schema}, nil
}

// AvroAdapter implements SchemaAdapter for Avro record schemas.
type AvroAdapter struct {
	schema *avro.RecordSchema
}

// NewAvroAdapter creates an adapter from a MappedSchema holding an Avro schema.
func NewAvroAdapter(mapped *MappedSchema) (*AvroAdapter, error) {
	if mapped == nil {
		return nil, ErrNilSchema
	}

	raw, ok := mapped.Raw.(avro.Schema)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotAvroSchema, mapped.Raw)
	}

	rec, ok := raw.(*avro.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotRecordSchema, raw.Type())
	}

	return &AvroAdapter{schema: rec}, nil
}

// NewAvroAdapterFromSchema creates an adapter directly from a parsed record schema.
func NewAvroAdapterFromSchema(schema *avro.RecordSchema) *AvroAdapter {
	return &AvroAdapter{schema: schema}
}

// BuildTypes implements SchemaAdapter.
func (a *AvroAdapter) BuildTypes(provider *TypeProvider) (string, error) {
	if a.schema == nil {
		return "", ErrNilSchema
	}
	rootType := a.registerRecord(a.schema, provider)
	return rootType, nil
}

// registerRecord registers the record's field table under its full name,
// recursing into nested records, and returns the registered name.
func (a *AvroAdapter) registerRecord(schema avro.Schema, p *TypeProvider) string {
	rec, ok := schema.(*avro.RecordSchema)
	if !ok {
		return ""
	}

	name := rec.FullName()
	fields := make(map[string]*cel.Type)

	for _, f := range rec.Fields() {
		fields[f.Name()] = a.celType(f.Type(), p)
	}

	p.registerType(name, fields)
	return name
}

func (a *AvroAdapter) celType(schema avro.Schema, p *TypeProvider) *cel.Type {
	switch s := schema.(type) {
	case *avro.PrimitiveSchema:
		return a.primitiveType(s)

	case *avro.RecordSchema:
		name := a.registerRecord(s, p)
		return cel.ObjectType(name)

	case *avro.ArraySchema:
		return cel.ListType(a.celType(s.Items(), p))

	case *avro.MapSchema:
		return cel.MapType(cel.StringType, a.celType(s.Values(), p))

	case *avro.UnionSchema:
		return a.unionType(s, p)

	case *avro.EnumSchema:
		return cel.StringType

	case *avro.FixedSchema:
		return cel.BytesType

	case *avro.RefSchema:
		return a.celType(s.Schema(), p)

	default:
		return cel.DynType
	}
}

// Logical types refine the primitive mapping: timestamps and dates become
// CEL timestamps, times become durations, uuid and decimal stay strings.
func (a *AvroAdapter) primitiveType(s *avro.PrimitiveSchema) *cel.Type {
	if s.Logical() != nil {
		switch s.Logical().Type() {
		case "timestamp-millis", "timestamp-micros",
			"local-timestamp-millis", "local-timestamp-micros":
			return cel.TimestampType
		case "date":
			return cel.TimestampType
		case "time-millis", "time-micros":
			return cel.DurationType
		case "uuid":
			return cel.StringType
		case "decimal":
			return cel.StringType
		}
	}

	switch s.Type() {
	case "null":
		return cel.NullType
	case "boolean":
		return cel.BoolType
	case "int", "long":
		return cel.IntType
	case "float", "double":
		return cel.DoubleType
	case "string":
		return cel.StringType
	case "bytes":
		return cel.BytesType
	default:
		return cel.DynType
	}
}

// Avro expresses optional fields as unions with null:
//
//	{"name": "nickname", "type": ["null", "string"]}
//
// A union with one non-null branch maps to that branch's type, nullable at
// runtime. Multiple non-null branches map to dyn.
func (a *AvroAdapter) unionType(s *avro.UnionSchema, p *TypeProvider) *cel.Type {
	branches := s.Types()
	if len(branches) == 0 {
		return cel.DynType
	}

	var nonNull *cel.Type
	for _, b := range branches {
		if b.Type() == "null" {
			continue
		}
		if nonNull != nil {
			return cel.DynType
		}
		nonNull = a.celType(b, p)
	}

	if nonNull == nil {
		return cel.NullType
	}
	return nonNull
}

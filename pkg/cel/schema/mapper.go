// Package schema derives typed CEL environments from schema documents.
// An expression checked against a typed environment fails at compile time
// on unknown fields and type mismatches instead of at evaluation.
package schema

// MappedSchema holds a parsed schema ready for environment creation. Raw
// carries the format-specific parse result (avro.Schema, *jsonSchemaNode).
type MappedSchema struct {
	Raw any
}

// Mapper parses schema bytes into a MappedSchema.
type Mapper interface {
	Map(schema []byte) (*MappedSchema, error)
}

package schema

import (
	"github.com/google/cel-go/cel"
)

// SchemaAdapter converts a parsed schema into CEL types.
type SchemaAdapter interface {
	// BuildTypes registers every type reachable from the schema with the
	// provider and returns the root type name (e.g. "com.example.Order").
	BuildTypes(provider *TypeProvider) (rootTypeName string, err error)
}

// EnvOptions configures typed environment creation.
type EnvOptions struct {
	// MetadataFields are extra variables available to expressions on top
	// of the defaults. See DefaultMetadataFields.
	MetadataFields []MetadataField

	// DisableDefaultMetadata leaves the default metadata fields out.
	DisableDefaultMetadata bool

	// RecordVarName is the name of the record variable (default: "record").
	RecordVarName string

	// AdditionalOpts are extra CEL environment options.
	AdditionalOpts []cel.EnvOption
}

// MetadataField declares a variable available in CEL expressions.
type MetadataField struct {
	Name string
	Type *cel.Type
}

// DefaultMetadataFields returns the metadata variables carried alongside
// every record.
func DefaultMetadataFields() []MetadataField {
	return []MetadataField{
		{Name: "_record_id", Type: cel.StringType},
		{Name: "_received_at", Type: cel.TimestampType},
		{Name: "_source", Type: cel.StringType},
		{Name: "_locale", Type: cel.StringType},
	}
}

// DefaultEnvOptions returns sensible defaults.
func DefaultEnvOptions() EnvOptions {
	return EnvOptions{
		RecordVarName: "record",
	}
}

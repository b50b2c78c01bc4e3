package schema

import (
	"errors"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/fieldry/fieldry/pkg/cel/ext"
)

var (
	// ErrNilSchema is returned when the mapped schema is nil.
	ErrNilSchema = errors.New("schema is nil")

	// ErrNilAdapter is returned when the adapter is nil.
	ErrNilAdapter = errors.New("adapter is nil")
)

// TypeProvider implements cel-go's type provider over the field tables a
// SchemaAdapter registers.
type TypeProvider struct {
	types map[string]map[string]*cel.Type
}

// NewTypeProvider creates an empty TypeProvider.
func NewTypeProvider() *TypeProvider {
	return &TypeProvider{
		types: make(map[string]map[string]*cel.Type),
	}
}

func (p *TypeProvider) EnumValue(enumName string) ref.Val {
	return types.NewErr("unknown enum: %s", enumName)
}

func (p *TypeProvider) FindIdent(identName string) (ref.Val, bool) {
	return nil, false
}

func (p *TypeProvider) FindStructType(structType string) (*types.Type, bool) {
	if _, ok := p.types[structType]; ok {
		return types.NewObjectType(structType), true
	}
	return nil, false
}

func (p *TypeProvider) FindStructFieldNames(structType string) ([]string, bool) {
	fields, ok := p.types[structType]
	if !ok {
		return nil, false
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names, true
}

func (p *TypeProvider) FindStructFieldType(structType, fieldName string) (*types.FieldType, bool) {
	fields, ok := p.types[structType]
	if !ok {
		return nil, false
	}
	ft, ok := fields[fieldName]
	if !ok {
		return nil, false
	}
	return &types.FieldType{Type: ft}, true
}

func (p *TypeProvider) NewValue(structType string, fields map[string]ref.Val) ref.Val {
	return types.NewErr("NewValue not implemented for %s", structType)
}

func (p *TypeProvider) registerType(name string, fields map[string]*cel.Type) {
	p.types[name] = fields
}

// BuildTypedEnv creates a CEL environment whose record variable carries the
// adapter's root type. Every extension library is installed, plus the
// default metadata fields unless disabled.
func BuildTypedEnv(adapter SchemaAdapter, provider *TypeProvider, opts EnvOptions) (*cel.Env, string, error) {
	if adapter == nil {
		return nil, "", ErrNilAdapter
	}

	rootType, err := adapter.BuildTypes(provider)
	if err != nil {
		return nil, "", err
	}

	envOpts := []cel.EnvOption{
		cel.CustomTypeProvider(provider),
	}

	envOpts = append(envOpts, ext.AllFuncs()...)
	if !opts.DisableDefaultMetadata {
		for _, f := range DefaultMetadataFields() {
			envOpts = append(envOpts, cel.Variable(f.Name, f.Type))
		}
	}

	for _, f := range opts.MetadataFields {
		envOpts = append(envOpts, cel.Variable(f.Name, f.Type))
	}

	recordVar := opts.RecordVarName
	if recordVar == "" {
		recordVar = "record"
	}
	envOpts = append(envOpts, cel.Variable(recordVar, cel.ObjectType(rootType)))

	envOpts = append(envOpts, opts.AdditionalOpts...)

	env, err := cel.NewEnv(envOpts...)
	return env, rootType, err
}

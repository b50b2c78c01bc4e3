package transform

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/cel-go/cel"

	celschema "github.com/fieldry/fieldry/pkg/cel/schema"
)

// Compiler compiles transform configurations against schemas.
type Compiler struct {
	envOptions []cel.EnvOption
	recordVar  string
}

// NewCompiler creates a new profile compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompilerOption configures the compiler.
type CompilerOption func(*Compiler)

// WithEnvOptions adds additional CEL environment options.
func WithEnvOptions(opts ...cel.EnvOption) CompilerOption {
	return func(c *Compiler) {
		c.envOptions = append(c.envOptions, opts...)
	}
}

// WithRecordVar overrides the record variable name (default: "record").
func WithRecordVar(name string) CompilerOption {
	return func(c *Compiler) {
		c.recordVar = name
	}
}

// Compile compiles a transform configuration against a mapped schema.
func (c *Compiler) Compile(
	config *Config,
	mapped *celschema.MappedSchema,
	format Format,
	schemaName string,
) (*CompiledProfile, error) {
	// Validation is done in CompileWithAdapter
	adapter, err := getAdapter(mapped, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema adapter: %w", err)
	}

	return c.CompileWithAdapter(config, adapter, schemaName)
}

// CompileWithAdapter compiles using a schema adapter directly.
func (c *Compiler) CompileWithAdapter(
	config *Config,
	adapter celschema.SchemaAdapter,
	schemaName string,
) (*CompiledProfile, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transform config: %w", err)
	}

	provider := celschema.NewTypeProvider()
	envOpts := celschema.DefaultEnvOptions()
	if c.recordVar != "" {
		envOpts.RecordVarName = c.recordVar
	}
	envOpts.AdditionalOpts = append(envOpts.AdditionalOpts, c.envOptions...)
	env, rootType, err := celschema.BuildTypedEnv(adapter, provider, envOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEL environment: %w", err)
	}

	if schemaName == "" {
		schemaName = rootType
	}

	return c.compileWithEnv(config, env, envOpts.RecordVarName, schemaName)
}

// compileWithEnv compiles using a pre-built CEL environment.
func (c *Compiler) compileWithEnv(
	config *Config,
	env *cel.Env,
	recordVar string,
	schemaName string,
) (*CompiledProfile, error) {
	compileErrors := &CompileErrors{}

	// validation exprs
	validations := make([]CompiledValidation, 0, len(config.Validations))
	for i, expr := range config.Validations {
		prog, err := compileExpression(env, expr, cel.BoolType)
		if err != nil {
			compileErrors.Add(CompileError{
				Location: fmt.Sprintf("validate[%d]", i),
				Source:   expr,
				Err:      err,
			})
			continue
		}
		validations = append(validations, CompiledValidation{
			Index:   i,
			Source:  expr,
			Program: prog,
		})
	}

	// filter expr
	var filter *CompiledFilter
	if config.Filter != "" {
		prog, err := compileExpression(env, config.Filter, cel.BoolType)
		if err != nil {
			compileErrors.Add(CompileError{
				Location: "filter",
				Source:   config.Filter,
				Err:      err,
			})
		} else {
			filter = &CompiledFilter{
				Source:  config.Filter,
				Program: prog,
			}
		}
	}

	// field exprs
	fields := make([]CompiledField, 0, len(config.Fields))
	for i, spec := range config.Fields {
		ast, issues := env.Compile(spec.Expr)
		if issues != nil && issues.Err() != nil {
			compileErrors.Add(CompileError{
				Location: fmt.Sprintf("fields[%d].expr", i),
				Source:   spec.Expr,
				Err:      issues.Err(),
			})
			continue
		}
		if ast == nil {
			compileErrors.Add(CompileError{
				Location: fmt.Sprintf("fields[%d].expr", i),
				Source:   spec.Expr,
				Err:      fmt.Errorf("compilation produced nil AST"),
			})
			continue
		}

		prog, err := env.Program(ast)
		if err != nil {
			compileErrors.Add(CompileError{
				Location: fmt.Sprintf("fields[%d].expr", i),
				Source:   spec.Expr,
				Err:      err,
			})
			continue
		}

		celType := ast.OutputType()

		// Explicit "as" override takes precedence over the inferred type.
		var arrowType arrow.DataType
		if spec.As != "" {
			arrowType, err = ParseOutputType(spec.As)
			if err != nil {
				compileErrors.Add(CompileError{
					Location: fmt.Sprintf("fields[%d].as", i),
					Source:   spec.As,
					Err:      err,
				})
				continue
			}
		} else {
			arrowType, err = CELTypeToArrow(celType)
			if err != nil {
				compileErrors.Add(CompileError{
					Location: fmt.Sprintf("fields[%d].type", i),
					Source:   spec.Expr,
					Err:      fmt.Errorf("cannot map CEL type %s to Arrow: %w", celType, err),
				})
				continue
			}
		}

		fields = append(fields, CompiledField{
			Name:      spec.Name,
			Index:     i,
			Source:    spec.Expr,
			Program:   prog,
			CELType:   celType,
			ArrowType: arrowType,
			Nullable:  IsNullableCELType(celType),
			FieldID:   spec.FieldID,
		})
	}

	if compileErrors.HasErrors() {
		return nil, compileErrors
	}

	nameToIndex := make(map[string]int, len(fields))
	for i, f := range fields {
		nameToIndex[f.Name] = i
	}

	// partitions - resolve field names to row indices
	partitions := make([]CompiledPartition, len(config.Partitions))
	for i, pf := range config.Partitions {
		idx, ok := nameToIndex[pf.Field]
		if !ok {
			return nil, fmt.Errorf("partitions[%d]: field %q not found", i, pf.Field)
		}
		partitions[i] = CompiledPartition{
			Field:      pf.Field,
			Transform:  pf.Transform,
			Param:      pf.Param,
			Name:       pf.Key(),
			FieldIndex: idx,
		}
	}

	// sort - resolve field names to row indices
	sortFields := make([]CompiledSort, len(config.Sort))
	for i, sf := range config.Sort {
		idx, ok := nameToIndex[sf.Field]
		if !ok {
			return nil, fmt.Errorf("sort[%d]: field %q not found", i, sf.Field)
		}
		sortFields[i] = CompiledSort{
			Field:      sf.Field,
			Direction:  sf.Direction,
			NullOrder:  sf.NullOrder,
			FieldIndex: idx,
		}
	}

	outputSchema, err := BuildOutputSchema(fields, partitions, sortFields)
	if err != nil {
		return nil, fmt.Errorf("failed to build output schema: %w", err)
	}

	return &CompiledProfile{
		Config:       config,
		SchemaName:   schemaName,
		RecordVar:    recordVar,
		Validations:  validations,
		Filter:       filter,
		Fields:       fields,
		OutputSchema: outputSchema,
		Partitions:   partitions,
		Sort:         sortFields,
	}, nil
}

// compileExpression compiles a CEL expression and verifies its type.
func compileExpression(env *cel.Env, expr string, expectedType *cel.Type) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast == nil {
		return nil, fmt.Errorf("compilation produced nil AST")
	}

	// Check if the output type is assignable TO the expected type.
	if expectedType != nil {
		outputType := ast.OutputType()
		if !expectedType.IsAssignableType(outputType) {
			return nil, fmt.Errorf("type mismatch: expected %s, got %s", expectedType, outputType)
		}
	}

	prog, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	return prog, nil
}

// getAdapter creates the appropriate adapter based on the mapped schema type.
func getAdapter(mapped *celschema.MappedSchema, format Format) (celschema.SchemaAdapter, error) {
	if mapped == nil {
		return nil, fmt.Errorf("nil mapped schema")
	}

	switch format {
	case FormatJSON:
		return celschema.NewJSONSchemaAdapter(mapped)
	case FormatAvro:
		return celschema.NewAvroAdapter(mapped)
	}

	// Auto-detect no harm
	jsonAdapter, err := celschema.NewJSONSchemaAdapter(mapped)
	if err == nil {
		return jsonAdapter, nil
	}

	avroAdapter, err := celschema.NewAvroAdapter(mapped)
	if err == nil {
		return avroAdapter, nil
	}

	return nil, fmt.Errorf("failed to create adapter for schema type: %T (specify the profile format)", mapped.Raw)
}

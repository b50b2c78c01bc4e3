package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/hamba/avro/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	celschema "github.com/fieldry/fieldry/pkg/cel/schema"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrInvalidSchema      = errors.New("invalid schema")
	ErrUnsupportedFormat  = errors.New("unsupported schema format")
	ErrDecodingFailed     = errors.New("decoding failed")
	ErrProfileCompilation = errors.New("profile compilation failed")
)

// Validator provides schema-checked decoding.
type Validator interface {
	// Decode decodes data into a native Go value.
	// For Avro: validates structure during unmarshal.
	// For JSON: validates against the JSON Schema before unmarshaling.
	Decode(data []byte, target any) error
}

// Profile holds a registered schema, its validator, and the compiled
// transform when the document carries one.
type Profile struct {
	ID     uint32
	Format Format
	// without x-transform
	SchemaJSON    string
	RawSchemaJSON string
	Validator     Validator

	// Transform fields, set when the document carries x-transform.
	Config       *Config
	Compiled     *CompiledProfile
	Executor     *Executor
	OutputSchema *arrow.Schema
}

// HasTransform returns true if the profile has an embedded transform.
func (p *Profile) HasTransform() bool {
	return p.Compiled != nil
}

// avroValidator implements Validator for Avro schemas.
type avroValidator struct {
	schema avro.Schema
}

func newAvroValidator(schemaJSON string) (*avroValidator, error) {
	schema, err := avro.Parse(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &avroValidator{schema: schema}, nil
}

func (v *avroValidator) Decode(data []byte, target any) error {
	if err := avro.Unmarshal(v.schema, data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}
	return nil
}

// AvroSchema returns the underlying avro.Schema.
func (v *avroValidator) AvroSchema() avro.Schema {
	return v.schema
}

// jsonValidator implements Validator for JSON Schema documents.
type jsonValidator struct {
	schema *jsonschema.Schema
}

func newJSONValidator(schemaJSON string) (*jsonValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON schema: %v", ErrInvalidSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON schema: %v", ErrInvalidSchema, err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to compile JSON schema: %v", ErrInvalidSchema, err)
	}

	return &jsonValidator{schema: schema}, nil
}

func (v *jsonValidator) Decode(data []byte, target any) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrDecodingFailed, err)
	}

	if err := v.schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodingFailed, err)
	}

	if t, ok := target.(*map[string]any); ok {
		if m, ok := value.(map[string]any); ok {
			*t = m
			return nil
		}
	}

	// for other target types use json.Unmarshal.
	return json.Unmarshal(data, target)
}

// Registry stores compiled profiles by ID. It holds everything in memory;
// persistence, when needed, belongs to the embedding service.
type Registry struct {
	mu       sync.RWMutex
	profiles map[uint32]*Profile
	compiler *Compiler
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...CompilerOption) *Registry {
	return &Registry{
		profiles: make(map[uint32]*Profile),
		compiler: NewCompiler(opts...),
	}
}

// Register validates a schema document, extracts and compiles its
// x-transform profile when present, and stores the result under id.
func (r *Registry) Register(id uint32, format Format, doc string) error {
	cleaned, config, err := ExtractConfig([]byte(doc))
	if err != nil {
		return fmt.Errorf("extract transform: %w", err)
	}

	validator, err := createValidator(format, string(cleaned))
	if err != nil {
		return err
	}

	normalizedClean, err := normalizeSchema(string(cleaned))
	if err != nil {
		return fmt.Errorf("normalize clean schema: %w", err)
	}
	normalizedRaw, err := normalizeSchema(doc)
	if err != nil {
		return fmt.Errorf("normalize raw schema: %w", err)
	}

	var compiled *CompiledProfile
	var executor *Executor
	var outputSchema *arrow.Schema

	if config != nil {
		compiled, err = r.compileProfile(format, cleaned, config)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProfileCompilation, err)
		}
		executor = NewExecutor(compiled)
		outputSchema = compiled.OutputSchema
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[id]; exists {
		return fmt.Errorf("%w: %d", ErrProfileExists, id)
	}

	r.profiles[id] = &Profile{
		ID:            id,
		Format:        format,
		SchemaJSON:    normalizedClean,
		RawSchemaJSON: normalizedRaw,
		Validator:     validator,
		Config:        config,
		Compiled:      compiled,
		Executor:      executor,
		OutputSchema:  outputSchema,
	}

	return nil
}

// compileProfile maps the cleaned schema per format and compiles the config
// against it.
func (r *Registry) compileProfile(format Format, cleaned []byte, config *Config) (*CompiledProfile, error) {
	var mapper celschema.Mapper
	switch format {
	case FormatAvro:
		mapper = celschema.NewAvroMapper()
	case FormatJSON:
		mapper = celschema.NewJSONSchemaMapper()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	mapped, err := mapper.Map(cleaned)
	if err != nil {
		return nil, fmt.Errorf("map schema: %w", err)
	}

	return r.compiler.Compile(config, mapped, format, "")
}

// Get retrieves a profile by ID.
func (r *Registry) Get(id uint32) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}
	return profile, nil
}

// GetValidator is a convenience method to get the validator directly.
func (r *Registry) GetValidator(id uint32) (Validator, error) {
	profile, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return profile.Validator, nil
}

// Decode decodes data with the validator registered under id.
func (r *Registry) Decode(id uint32, data []byte, target any) error {
	validator, err := r.GetValidator(id)
	if err != nil {
		return err
	}
	return validator.Decode(data, target)
}

// HasTransform checks if a registered profile has an embedded transform.
func (r *Registry) HasTransform(id uint32) bool {
	profile, err := r.Get(id)
	if err != nil {
		return false
	}
	return profile.HasTransform()
}

// IDs returns the registered profile IDs in arbitrary order.
func (r *Registry) IDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint32, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	return ids
}

func createValidator(format Format, schemaJSON string) (Validator, error) {
	switch format {
	case FormatAvro:
		return newAvroValidator(schemaJSON)
	case FormatJSON:
		return newJSONValidator(schemaJSON)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func normalizeSchema(schemaJSON string) (string, error) {
	var schema any
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		return "", err
	}
	normalized, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	return string(normalized), nil
}

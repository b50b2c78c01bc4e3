// Package cel wraps github.com/google/cel-go with the environment,
// compilation, and evaluation conventions the transform layer builds on:
// an environment builder carrying the record and metadata variables, a
// compiler that enforces expression output types, and an evaluator with a
// pooled activation.
package cel

import (
	"github.com/google/cel-go/cel"
)

// RecordVarName is the variable untyped record maps are bound to.
const RecordVarName = "record"

// Env aliases the cel-go environment type.
type Env = cel.Env

// EnvBuilder accumulates environment options fluently. The first error
// sticks and surfaces from Build.
type EnvBuilder struct {
	opts []cel.EnvOption
	err  error
}

func NewEnvBuilder() *EnvBuilder {
	return &EnvBuilder{}
}

func (b *EnvBuilder) WithVariable(name string, t *cel.Type) *EnvBuilder {
	if b.err != nil {
		return b
	}
	b.opts = append(b.opts, cel.Variable(name, t))
	return b
}

// WithRecord declares the record variable as an untyped string-keyed map.
// Schema-derived environments declare a typed record instead.
func (b *EnvBuilder) WithRecord() *EnvBuilder {
	if b.err != nil {
		return b
	}
	b.opts = append(b.opts, cel.Variable(RecordVarName, cel.MapType(cel.StringType, cel.DynType)))
	return b
}

// WithMetadata declares the per-record metadata fields every transform
// expression can reference.
func (b *EnvBuilder) WithMetadata() *EnvBuilder {
	if b.err != nil {
		return b
	}
	b.opts = append(b.opts,
		cel.Variable("_record_id", cel.StringType),
		cel.Variable("_received_at", cel.TimestampType),
		cel.Variable("_source", cel.StringType),
		cel.Variable("_locale", cel.StringType),
	)
	return b
}

func (b *EnvBuilder) WithLibrary(lib cel.Library) *EnvBuilder {
	if b.err != nil {
		return b
	}
	b.opts = append(b.opts, cel.Lib(lib))
	return b
}

func (b *EnvBuilder) WithOption(opt cel.EnvOption) *EnvBuilder {
	if b.err != nil {
		return b
	}
	b.opts = append(b.opts, opt)
	return b
}

func (b *EnvBuilder) Build() (*cel.Env, error) {
	if b.err != nil {
		return nil, b.err
	}
	return cel.NewEnv(b.opts...)
}

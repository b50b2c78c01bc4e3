package cel

import (
	"sync"

	"github.com/google/cel-go/interpreter"
)

const (
	// enough for a record var plus the default metadata fields
	activationInitialVars = 16
	// activations that grew past this are dropped instead of pooled so
	// one oversized record does not pin memory
	activationMaxRetainedVars = 256
)

// activationPool recycles the variable maps backing evaluations. Hot paths
// evaluate the same expressions against many records, and the per-call map
// is the only allocation left on that path.
type activationPool struct {
	pool sync.Pool
}

func newActivationPool() *activationPool {
	p := &activationPool{}
	p.pool.New = func() any {
		return &varActivation{vars: make(map[string]any, activationInitialVars)}
	}
	return p
}

// get returns an activation populated with a copy of vars. The caller's
// map is never retained past the call.
func (p *activationPool) get(vars map[string]any) *varActivation {
	a := p.pool.Get().(*varActivation)
	for k, v := range vars {
		a.vars[k] = v
	}
	return a
}

func (p *activationPool) put(a *varActivation) {
	if len(a.vars) > activationMaxRetainedVars {
		return
	}
	clear(a.vars)
	p.pool.Put(a)
}

type varActivation struct {
	vars map[string]any
}

func (a *varActivation) ResolveName(name string) (any, bool) {
	v, ok := a.vars[name]
	return v, ok
}

func (a *varActivation) Parent() interpreter.Activation {
	return nil
}

var _ interpreter.Activation = (*varActivation)(nil)

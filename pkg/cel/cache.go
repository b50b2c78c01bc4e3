package cel

import "sync"

// ExprCache memoizes compiled expressions keyed by source text. Safe for
// concurrent use.
type ExprCache struct {
	mu    sync.RWMutex
	exprs map[string]*CompiledExpr
}

func NewExprCache() *ExprCache {
	return &ExprCache{exprs: make(map[string]*CompiledExpr)}
}

// GetOrCompile returns the cached result for source, compiling and storing
// it on a miss. Failed compiles are not cached, so later calls retry.
func (c *ExprCache) GetOrCompile(source string, compile func(string) (*CompiledExpr, error)) (*CompiledExpr, error) {
	c.mu.RLock()
	compiled, ok := c.exprs[source]
	c.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if compiled, ok := c.exprs[source]; ok {
		return compiled, nil
	}

	compiled, err := compile(source)
	if err != nil {
		return nil, err
	}
	c.exprs[source] = compiled
	return compiled, nil
}

// Len reports how many expressions are cached.
func (c *ExprCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.exprs)
}

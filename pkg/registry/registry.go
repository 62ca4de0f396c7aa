// Package registry holds host functions that automaton scripts can call by name,
// next to the built-in ones (payload, param, group...).
package registry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Function defines the signature for a host function.
// Arguments arrive as nil, bool, int64, float64 or string; the result is handed
// back to the script the same way.
type Function func(ctx context.Context, args []any) (any, error)

// Registry manages the available functions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]Function),
	}
}

// Register adds a function to the registry.
// If a function with the same name exists, it is overwritten. Names of built-in
// script functions are shadowed by the built-ins.
func (r *Registry) Register(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = fn
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

// Call looks up a function by name and executes it.
// Returns an error if the function is not found.
func (r *Registry) Call(ctx context.Context, name string, args []any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("function not found: %s", name)
	}
	r.mu.RLock()
	fn, ok := r.functions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("function not found: %s", name)
	}
	return fn(ctx, args)
}

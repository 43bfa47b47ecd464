package gate

import (
	"context"
	"sync"
)

// Registry maps resource kinds to gates
type Registry struct {
	gates map[string]Gate
	mux   sync.RWMutex
}

// NewRegistry creates a registry
func NewRegistry(gates ...Gate) *Registry {
	ret := &Registry{gates: make(map[string]Gate)}
	for _, g := range gates {
		ret.Register(g)
	}
	return ret
}

// Register adds or replaces a gate
func (r *Registry) Register(g Gate) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.gates[g.Kind()] = g
}

// Lookup returns the gate for the resource kind
func (r *Registry) Lookup(kind string) (Gate, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	g, ok := r.gates[kind]
	return g, ok
}

// Kinds returns registered kinds
func (r *Registry) Kinds() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	result := make([]string, 0, len(r.gates))
	for kind := range r.gates {
		result = append(result, kind)
	}
	return result
}

// Start launches the refresh loop of every asynchronously refreshed gate
func (r *Registry) Start(ctx context.Context) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, g := range r.gates {
		if srv, ok := g.(*Service); ok {
			go srv.Start(ctx)
		}
	}
}

// Shutdown stops refresh loops
func (r *Registry) Shutdown() {
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, g := range r.gates {
		if srv, ok := g.(*Service); ok {
			srv.Shutdown()
		}
	}
}

package registry

import (
	"slices"
	"sync"
)

// Module is the interface that all runner modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the registered runners for a single application instance.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*RegisteredRunner
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		runners: make(map[string]*RegisteredRunner),
	}
}

// Load registers every module in order.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the runner registered under name.
func (r *Registry) Lookup(name string) (*RegisteredRunner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.runners[name]
	return h, ok
}

// Names returns every registered runner name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

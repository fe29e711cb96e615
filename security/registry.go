package security

import (
	"sort"
	"sync"

	"github.com/oastrace/oastrace/openapi"
)

// Registry holds every security scheme an ApiClient has registered,
// feeding both ApiCall's default auth and the Assembler's
// components.securitySchemes.
type Registry struct {
	mu      sync.RWMutex
	schemes map[string]Scheme
	order   []string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemes: make(map[string]Scheme)}
}

// Register adds or replaces a scheme under its own Name(), returning the
// Registry for fluent chaining.
func (r *Registry) Register(s Scheme) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemes[s.Name()]; !exists {
		r.order = append(r.order, s.Name())
	}
	r.schemes[s.Name()] = s
	return r
}

// Get returns the scheme registered under name, if any.
func (r *Registry) Get(name string) (Scheme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemes[name]
	return s, ok
}

// Names returns every registered scheme name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SecuritySchemes returns every registered scheme's OpenAPI shape,
// keyed by its canonical name, for Assembler to place under
// components.securitySchemes.
func (r *Registry) SecuritySchemes() map[string]*openapi.SecurityScheme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*openapi.SecurityScheme, len(r.schemes))
	for name, s := range r.schemes {
		out[name] = s.OpenAPI()
	}
	return out
}

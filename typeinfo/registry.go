package typeinfo

import (
	stderrors "errors"
	"sort"
	"sync"

	"github.com/wippyai/hostbridge/errors"
)

// ErrNotRegistered is the cause of a TypeNotFound raised by a Registry.
var ErrNotRegistered = stderrors.New("name not registered")

// Registry resolves type names to descriptors.
// Registry is thread-safe.
type Registry struct {
	types map[string]*Type
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register makes t available under its own name.
func (r *Registry) Register(t *Type) error {
	return r.RegisterAs(t.Name(), t)
}

// RegisterAs makes t available under name. Registering a different type
// under a taken name fails; registering the same type again is a no-op.
func (r *Registry) RegisterAs(name string, t *Type) error {
	if name == "" || t == nil {
		return errors.InvalidInput(errors.PhaseLookup, "registration needs a name and a type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[name]; ok && existing != t {
		return errors.New(errors.PhaseLookup, errors.KindInvalidInput).
			Type(name).
			Detail("name already registered to %s", existing.Name()).
			Build()
	}
	r.types[name] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, error) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.TypeNotFound(name, ErrNotRegistered)
	}
	return t, nil
}

// Unregister removes name. It reports whether the name was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.types[name]
	delete(r.types, name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// Registry manages the available node classes.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]ports.NodeClass
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]ports.NodeClass),
	}
}

// Register adds a class to the registry.
// If a class with the same name exists, it is overwritten.
func (r *Registry) Register(class ports.NodeClass) error {
	if class == nil || class.Name() == "" {
		return fmt.Errorf("register: class must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[class.Name()] = class
	return nil
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (ports.NodeClass, error) {
	r.mu.RLock()
	class, ok := r.classes[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownClass, name)
	}
	return class, nil
}

// Names lists the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

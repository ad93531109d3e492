package schema

import (
	"sort"
	"sync"

	"github.com/aretw0/weave/pkg/socket"
)

// Validator checks observed input types against a schema.
//
// Smart types are engine-internal types whose compatibility was already
// settled during resolution; any input observed with one of them passes.
type Validator struct {
	mu    sync.RWMutex
	smart map[string]struct{}
}

// NewValidator returns a validator that trusts FLOW_CONTROL plus the given
// type names.
func NewValidator(smart ...string) *Validator {
	v := &Validator{smart: map[string]struct{}{socket.FlowControlName: {}}}
	for _, name := range smart {
		v.smart[name] = struct{}{}
	}
	return v
}

// RegisterSmartType adds a trusted type name.
func (v *Validator) RegisterSmartType(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.smart[name] = struct{}{}
}

// SmartTypes lists the trusted type names.
func (v *Validator) SmartTypes() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, 0, len(v.smart))
	for name := range v.smart {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (v *Validator) isSmart(t socket.Type) bool {
	if t.Kind() != socket.KindConcrete {
		return false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, name := range t.Names() {
		if _, ok := v.smart[name]; !ok {
			return false
		}
	}
	return true
}

// Validate checks each observed input against its declaration. Inputs the
// schema does not declare are ignored. It returns nil or an error listing
// every rejected socket.
func (v *Validator) Validate(s Schema, observed map[string]socket.Type) error {
	if len(observed) == 0 {
		return nil
	}

	names := make([]string, 0, len(observed))
	for name := range observed {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		actual := observed[name]
		if v.isSmart(actual) {
			continue
		}
		in, ok := s.Input(name)
		if !ok {
			continue
		}
		if !socket.Compatible(in.Type, actual) {
			errs = append(errs, &ValidationError{
				Socket:   name,
				Declared: in.Type,
				Actual:   actual,
			})
		}
	}
	return Join(errs...)
}

// Required returns the names of non-optional, non-hidden inputs that are
// missing from present.
func Required(s Schema, present map[string]bool) []string {
	var missing []string
	for _, in := range s.Inputs {
		if in.Optional || in.Hidden || in.Default != nil {
			continue
		}
		if !present[in.Name] {
			missing = append(missing, in.Name)
		}
	}
	return missing
}

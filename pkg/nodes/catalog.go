package nodes

import (
	"fmt"

	"github.com/aretw0/weave/pkg/ports"
)

// Registerer is satisfied by *registry.Registry.
type Registerer interface {
	Register(class ports.NodeClass) error
}

// All returns one instance of every built-in class, sharing opts.
func All(opts ...Option) []ports.NodeClass {
	return []ports.NodeClass{
		NewWhileLoopOpen(opts...),
		NewWhileLoopClose(opts...),
		NewForLoopOpen(opts...),
		NewForLoopClose(opts...),
		NewGate(opts...),
		NewIntMath(opts...),
		NewToBool(opts...),
		NewAccumulate(opts...),
		NewAccumulationHead(opts...),
		NewAccumulationTail(opts...),
		NewAccumulationToList(opts...),
		NewListToAccumulation(opts...),
		NewAccumulationGetLength(opts...),
		NewAccumulationGetItem(opts...),
		NewAccumulationSetItem(opts...),
		NewPrint(opts...),
		NewPassthrough(opts...),
		NewMakeList(opts...),
	}
}

// RegisterAll registers every built-in class.
func RegisterAll(r Registerer, opts ...Option) error {
	for _, c := range All(opts...) {
		if err := r.Register(c); err != nil {
			return fmt.Errorf("register %s: %w", c.Name(), err)
		}
	}
	return nil
}

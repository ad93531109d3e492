package resolve

import "github.com/aretw0/weave/pkg/schema"

// Request carries everything a host observed around one node instance.
type Request struct {
	Observed schema.Observation
	// Entangled holds the observations of partner nodes whose bindings
	// constrain this one, such as the other half of a loop.
	Entangled []schema.Observation
}

// Strategy turns a declared schema into the resolved schema of one node
// instance. Strategies never mutate decl.
type Strategy interface {
	Resolve(decl schema.Schema, req Request) schema.Schema
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(decl schema.Schema, req Request) schema.Schema

func (f StrategyFunc) Resolve(decl schema.Schema, req Request) schema.Schema {
	return f(decl, req)
}

// Static returns the declaration unchanged.
var Static Strategy = StrategyFunc(func(decl schema.Schema, _ Request) schema.Schema {
	return decl.Clone()
})

// Chain runs strategies in order, each one resolving the previous output.
func Chain(strategies ...Strategy) Strategy {
	return StrategyFunc(func(decl schema.Schema, req Request) schema.Schema {
		out := decl.Clone()
		for _, s := range strategies {
			out = s.Resolve(out, req)
		}
		return out
	})
}

// Templates resolves <T> and W<T> placeholders from the wiring.
func Templates() Strategy { return StrategyFunc(ResolveTemplates) }

// Variadic materializes name#GROUP sockets.
func Variadic() Strategy { return StrategyFunc(ExpandGroups) }

// Generic expands variadic groups, then resolves templates, so per-index
// placeholders are numbered before binding.
func Generic() Strategy { return Chain(Variadic(), Templates()) }

package resolve

import (
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Bindings collects template bindings from every wired input and every
// output that downstream consumers observe.
func Bindings(decl schema.Schema, obs schema.Observation) *socket.Env {
	env := socket.NewEnv()
	for _, in := range decl.Inputs {
		actual, wired := obs.Inputs[in.Name]
		if !wired {
			continue
		}
		if key, val, ok := socket.Bind(in.Type, actual); ok {
			env.Bind(key, val)
		}
	}
	for _, out := range decl.Outputs {
		for _, actual := range obs.Outputs[out.Name] {
			if key, val, ok := socket.Bind(out.Type, actual); ok {
				env.Bind(key, val)
			}
		}
	}
	return env
}

// ResolveTemplates substitutes every templated socket of decl through the
// bindings observed on the node. Unbound keys resolve to the wildcard.
// Resolving a schema without templates returns an equal schema.
func ResolveTemplates(decl schema.Schema, req Request) schema.Schema {
	env := Bindings(decl, req.Observed)
	out := decl.Clone()
	for i := range out.Inputs {
		out.Inputs[i].Type = socket.Substitute(out.Inputs[i].Type, env)
	}
	for i := range out.Outputs {
		out.Outputs[i].Type = socket.Substitute(out.Outputs[i].Type, env)
	}
	return out
}

package schema

import (
	"fmt"

	"github.com/aretw0/weave/pkg/socket"
)

// ParseTypeMap converts a map of socket names to observed descriptors.
// Observed descriptors never carry templates.
func ParseTypeMap(raw map[string]string) map[string]socket.Type {
	if raw == nil {
		return nil
	}
	out := make(map[string]socket.Type, len(raw))
	for name, desc := range raw {
		out[name] = socket.Observed(desc)
	}
	return out
}

// ObservationFromStrings builds an Observation from plain descriptors, as
// received by the HTTP and MCP adapters.
func ObservationFromStrings(inputs map[string]string, outputs map[string][]string) Observation {
	obs := NewObservation()
	for name, desc := range inputs {
		obs.ObserveInput(name, socket.Observed(desc))
	}
	for name, descs := range outputs {
		for _, desc := range descs {
			obs.ObserveOutput(name, socket.Observed(desc))
		}
	}
	return obs
}

// Describe renders a schema as "name: TYPE" lines, inputs first.
func Describe(s Schema) []string {
	lines := make([]string, 0, len(s.Inputs)+len(s.Outputs))
	for _, in := range s.Inputs {
		flag := ""
		switch {
		case in.Hidden:
			flag = " (hidden)"
		case in.Optional:
			flag = " (optional)"
		}
		lines = append(lines, fmt.Sprintf("in  %s: %s%s", in.Name, in.Type, flag))
	}
	for i, out := range s.Outputs {
		lines = append(lines, fmt.Sprintf("out %d %s: %s", i, out.Name, out.Type))
	}
	return lines
}

package schema

import (
	"strconv"
	"strings"

	"github.com/aretw0/weave/pkg/socket"
)

// GroupMarker separates a socket base name from its variadic group,
// as in "value#COUNT".
const GroupMarker = "#"

// Input declares one input socket.
type Input struct {
	Name     string      `json:"name"`
	Type     socket.Type `json:"type"`
	Optional bool        `json:"optional,omitempty"`
	// RawLink inputs receive the link itself instead of the producer's value
	// and do not gate scheduling.
	RawLink bool `json:"raw_link,omitempty"`
	// Hidden inputs are set by the engine, never by users.
	Hidden  bool `json:"hidden,omitempty"`
	Default any  `json:"default,omitempty"`
}

// Output declares one output socket.
type Output struct {
	Name string      `json:"name"`
	Type socket.Type `json:"type"`
}

// Schema is the shape of a node: ordered inputs, ordered outputs and the
// number of materialized members per variadic group.
type Schema struct {
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
	// Groups is filled by resolution: group name -> materialized slots.
	Groups map[string]int `json:"groups,omitempty"`
	// GroupStart is the first index of a group. Groups default to 1.
	GroupStart map[string]int `json:"group_start,omitempty"`
}

// Input returns the declaration of the named input.
func (s Schema) Input(name string) (Input, bool) {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// OutputIndex returns the position of the named output, or -1.
func (s Schema) OutputIndex(name string) int {
	for i, out := range s.Outputs {
		if out.Name == name {
			return i
		}
	}
	return -1
}

// OutputNames returns the output names in order.
func (s Schema) OutputNames() []string {
	names := make([]string, len(s.Outputs))
	for i, out := range s.Outputs {
		names[i] = out.Name
	}
	return names
}

// OutputTypes returns the output types in order.
func (s Schema) OutputTypes() []socket.Type {
	types := make([]socket.Type, len(s.Outputs))
	for i, out := range s.Outputs {
		types[i] = out.Type
	}
	return types
}

// Count returns how many slots of group were materialized.
func (s Schema) Count(group string) int {
	return s.Groups[group]
}

// Start returns the first index of group.
func (s Schema) Start(group string) int {
	if v, ok := s.GroupStart[group]; ok {
		return v
	}
	return 1
}

// Clone returns a deep copy; socket types are immutable and shared.
func (s Schema) Clone() Schema {
	out := Schema{
		Inputs:  append([]Input(nil), s.Inputs...),
		Outputs: append([]Output(nil), s.Outputs...),
	}
	if s.Groups != nil {
		out.Groups = make(map[string]int, len(s.Groups))
		for k, v := range s.Groups {
			out.Groups[k] = v
		}
	}
	if s.GroupStart != nil {
		out.GroupStart = make(map[string]int, len(s.GroupStart))
		for k, v := range s.GroupStart {
			out.GroupStart[k] = v
		}
	}
	return out
}

// SplitGroup splits "base#GROUP" into its base name and group.
func SplitGroup(name string) (base, group string, ok bool) {
	i := strings.Index(name, GroupMarker)
	if i <= 0 || i == len(name)-1 {
		return name, "", false
	}
	return name[:i], name[i+1:], true
}

// IndexOf reports the numeric suffix of name when it is base followed by
// digits only.
func IndexOf(name, base string) (int, bool) {
	if !strings.HasPrefix(name, base) || len(name) == len(base) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(base):])
	if err != nil || n < 0 || strings.HasPrefix(name[len(base):], "+") {
		return 0, false
	}
	return n, true
}

// Observation is what a host sees around one node instance: the type wired
// into each linked input and the types requested by the consumers of each
// output.
type Observation struct {
	Inputs  map[string]socket.Type   `json:"inputs,omitempty"`
	Outputs map[string][]socket.Type `json:"outputs,omitempty"`
	// OutputSpan is one past the highest output index any consumer links
	// to. It lets a resolver grow outputs whose names do not exist yet.
	OutputSpan int `json:"output_span,omitempty"`
}

// NewObservation returns an empty observation.
func NewObservation() Observation {
	return Observation{
		Inputs:  make(map[string]socket.Type),
		Outputs: make(map[string][]socket.Type),
	}
}

// ObserveInput narrows the type seen on input name.
func (o *Observation) ObserveInput(name string, t socket.Type) {
	if o.Inputs == nil {
		o.Inputs = make(map[string]socket.Type)
	}
	if cur, ok := o.Inputs[name]; ok {
		t = socket.Intersect(cur, t)
	}
	o.Inputs[name] = t
}

// ObserveOutput records a type requested by one consumer of output name.
func (o *Observation) ObserveOutput(name string, t socket.Type) {
	if o.Outputs == nil {
		o.Outputs = make(map[string][]socket.Type)
	}
	o.Outputs[name] = append(o.Outputs[name], t)
}

// ObserveOutputIndex records that some consumer links to output index i.
func (o *Observation) ObserveOutputIndex(i int) {
	if i+1 > o.OutputSpan {
		o.OutputSpan = i + 1
	}
}

// Names lists every input and output name the observation mentions.
func (o Observation) Names() []string {
	names := make([]string, 0, len(o.Inputs)+len(o.Outputs))
	for n := range o.Inputs {
		names = append(names, n)
	}
	for n := range o.Outputs {
		names = append(names, n)
	}
	return names
}

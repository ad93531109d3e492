package resolve

import (
	"strconv"

	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Flow expands the loop-carried sockets of an open or close node.
//
// The declaration carries one placeholder input named Input#Group and one
// placeholder output named Output#Group. They are replaced by slots
// Start..Start+n-1 where n covers the highest index referenced by the node,
// by its consumers or by its entangled partner, plus one free slot. Every
// slot is optional and its type is the intersection of all the constraints
// on that index from both partners, so an open node and its close node
// resolve each shared socket to the same type.
type Flow struct {
	Group  string
	Input  string
	Output string
	Start  int
}

func (f Flow) inMarker() string  { return f.Input + schema.GroupMarker + f.Group }
func (f Flow) outMarker() string { return f.Output + schema.GroupMarker + f.Group }

// Resolve implements Strategy.
func (f Flow) Resolve(decl schema.Schema, req Request) schema.Schema {
	fixed := 0
	for _, o := range decl.Outputs {
		if o.Name != f.outMarker() {
			fixed++
		}
	}

	highest := HighestIndex([]string{f.Input, f.Output}, f.Start, req)
	if span := req.Observed.OutputSpan; span > fixed {
		if idx := span - 1 - fixed + f.Start; idx > highest {
			highest = idx
		}
	}
	n := SlotCount(highest, f.Start)

	types := make([]socket.Type, n)
	for k := range types {
		types[k] = f.slotType(f.Start+k, req)
	}

	out := decl.Clone()
	out.Inputs = out.Inputs[:0:0]
	for _, in := range decl.Inputs {
		if in.Name != f.inMarker() {
			out.Inputs = append(out.Inputs, in)
			continue
		}
		for k, t := range types {
			out.Inputs = append(out.Inputs, schema.Input{
				Name:     f.Input + strconv.Itoa(f.Start+k),
				Type:     t,
				Optional: true,
				RawLink:  in.RawLink,
			})
		}
	}
	out.Outputs = out.Outputs[:0:0]
	for _, o := range decl.Outputs {
		if o.Name != f.outMarker() {
			out.Outputs = append(out.Outputs, o)
			continue
		}
		for k, t := range types {
			out.Outputs = append(out.Outputs, schema.Output{
				Name: f.Output + strconv.Itoa(f.Start+k),
				Type: t,
			})
		}
	}

	if out.Groups == nil {
		out.Groups = make(map[string]int, 1)
	}
	if out.GroupStart == nil {
		out.GroupStart = make(map[string]int, 1)
	}
	out.Groups[f.Group] = n
	out.GroupStart[f.Group] = f.Start
	return out
}

func (f Flow) slotType(i int, req Request) socket.Type {
	in, out := f.Input+strconv.Itoa(i), f.Output+strconv.Itoa(i)
	var constraints []socket.Type
	collect := func(obs schema.Observation) {
		if t, ok := obs.Inputs[in]; ok {
			constraints = append(constraints, t)
		}
		constraints = append(constraints, obs.Outputs[out]...)
	}
	collect(req.Observed)
	for _, partner := range req.Entangled {
		collect(partner)
	}
	return socket.IntersectAll(constraints...)
}

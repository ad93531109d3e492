package domain

import "github.com/aretw0/weave/pkg/socket"

// Result is what a node execution hands back to the host.
type Result interface {
	// Outputs are the values of the node's outputs, positionally. A Ref
	// stands for a value the host resolves later.
	Outputs() []any
	isResult()
}

// Done carries final output values.
type Done struct {
	Values []any
}

func (d Done) Outputs() []any { return d.Values }
func (Done) isResult()        {}

// ContinueWith carries output placeholders plus a subgraph the host must
// splice into the prompt and schedule before the placeholders resolve.
type ContinueWith struct {
	Values    []any
	Expansion *Expansion
}

func (c ContinueWith) Outputs() []any { return c.Values }
func (ContinueWith) isResult()        {}

// Ref names an output of a node created by an expansion. Hosts replace it
// with that output's value once the node has run.
type Ref struct {
	Node   string `json:"node"`
	Output int    `json:"output"`
}

// Link converts the reference into an input link.
func (r Ref) Link() Input { return Linked(r.Node, r.Output) }

// Expansion is a set of new nodes, linked among themselves or to nodes that
// already exist in the prompt.
type Expansion struct {
	Nodes []*Node `json:"nodes"`
}

// Empty reports whether the expansion adds nothing.
func (e *Expansion) Empty() bool { return e == nil || len(e.Nodes) == 0 }

// IDs lists the ids of the expansion's nodes in order.
func (e *Expansion) IDs() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.Nodes))
	for i, n := range e.Nodes {
		out[i] = n.ID
	}
	return out
}

// FlowHandle is the first output of a loop open node. It identifies the
// open node so the matching close node can find the loop's boundary.
type FlowHandle struct {
	OpenID string `json:"open_id"`
}

// SocketType reports FLOW_CONTROL.
func (FlowHandle) SocketType() socket.Type { return socket.FlowControl() }

// Blocked replaces a value whose production was suppressed, such as by a
// gate. Nodes that receive it do not run and forward it on every output.
type Blocked struct {
	Message string `json:"message,omitempty"`
}

func (b Blocked) String() string {
	if b.Message == "" {
		return "blocked"
	}
	return "blocked: " + b.Message
}

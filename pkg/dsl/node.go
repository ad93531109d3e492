package dsl

import "github.com/aretw0/weave/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    *domain.Node
	key     string
	builder *Builder
}

// ID is the node's id in the prompt.
func (n *NodeBuilder) ID() string { return n.node.ID }

// Key is the key the node was added under.
func (n *NodeBuilder) Key() string { return n.key }

// Display overrides the identity shown to users.
func (n *NodeBuilder) Display(id string) *NodeBuilder {
	n.node.DisplayID = id
	return n
}

// Set records an input. A domain.Ref or domain.Link becomes a link, a
// domain.Input is copied verbatim and anything else is a literal. A nil
// value removes the input.
func (n *NodeBuilder) Set(name string, v any) *NodeBuilder {
	switch x := v.(type) {
	case nil:
		n.node.Unset(name)
	case domain.Ref:
		n.node.Set(name, x.Link())
	case domain.Link:
		n.node.Set(name, domain.Linked(x.From, x.Output))
	case *domain.Link:
		if x == nil {
			n.node.Unset(name)
			break
		}
		n.node.Set(name, domain.Linked(x.From, x.Output))
	case domain.Input:
		if x.Link != nil {
			n.node.Set(name, domain.Linked(x.Link.From, x.Link.Output))
			break
		}
		n.node.Set(name, x)
	default:
		n.node.Set(name, domain.Literal(v))
	}
	return n
}

// Link wires input name to output of another node.
func (n *NodeBuilder) Link(name string, from *NodeBuilder, output int) *NodeBuilder {
	n.node.Set(name, domain.Linked(from.ID(), output))
	return n
}

// Out references one output of this node.
func (n *NodeBuilder) Out(i int) domain.Ref {
	return domain.Ref{Node: n.node.ID, Output: i}
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() *domain.Node {
	return n.node
}

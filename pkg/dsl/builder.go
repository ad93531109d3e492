package dsl

import (
	"fmt"

	"github.com/aretw0/weave/pkg/domain"
)

// Builder manages the graph construction.
//
// Every node is added under a key; its id is the key under the builder's
// prefix ("prefix.key"), so builders used by different executions never
// collide.
type Builder struct {
	prefix string
	order  []string
	nodes  map[string]*NodeBuilder
}

// New creates a new graph builder. An empty prefix keeps keys as ids.
func New(prefix string) *Builder {
	return &Builder{
		prefix: prefix,
		nodes:  make(map[string]*NodeBuilder),
	}
}

// ID returns the node id a key maps to.
func (b *Builder) ID(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + "." + key
}

// Add creates a new node of the given class in the graph.
// If the key already exists, it returns the existing builder.
func (b *Builder) Add(class, key string) *NodeBuilder {
	if nb, ok := b.nodes[key]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NewNode(b.ID(key), class),
		key:     key,
		builder: b,
	}
	b.nodes[key] = nb
	b.order = append(b.order, key)
	return nb
}

// Lookup returns the builder added under key.
func (b *Builder) Lookup(key string) (*NodeBuilder, bool) {
	nb, ok := b.nodes[key]
	return nb, ok
}

// Len is the number of nodes added so far.
func (b *Builder) Len() int { return len(b.order) }

// Finalize collects the nodes, in the order they were added, into an
// expansion the host can splice.
func (b *Builder) Finalize() *domain.Expansion {
	exp := &domain.Expansion{Nodes: make([]*domain.Node, 0, len(b.order))}
	for _, key := range b.order {
		exp.Nodes = append(exp.Nodes, b.nodes[key].Build())
	}
	return exp
}

// BuildPrompt compiles the graph into a standalone prompt.
func (b *Builder) BuildPrompt(id string) (*domain.Prompt, error) {
	p := domain.NewPrompt(id)
	for _, n := range b.Finalize().Nodes {
		if err := p.Add(n); err != nil {
			return nil, fmt.Errorf("failed to build prompt: %w", err)
		}
	}
	return p, nil
}

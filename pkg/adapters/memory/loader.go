package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/weave/pkg/domain"
)

// Loader implements ports.PromptLoader using an in-memory map.
type Loader struct {
	nodes map[string]*domain.Node
	order []string
}

// NewLoader creates a Loader holding copies of nodes.
func NewLoader(nodes ...*domain.Node) (*Loader, error) {
	l := &Loader{nodes: make(map[string]*domain.Node, len(nodes))}
	for _, n := range nodes {
		if n == nil || n.ID == "" {
			return nil, fmt.Errorf("node missing ID")
		}
		if _, dup := l.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID)
		}
		l.nodes[n.ID] = n.Clone()
		l.order = append(l.order, n.ID)
	}
	return l, nil
}

// NewFromPrompt exposes the nodes of p, keeping its order.
func NewFromPrompt(p *domain.Prompt) *Loader {
	l := &Loader{nodes: make(map[string]*domain.Node, p.Len())}
	for _, id := range p.IDs() {
		n, _ := p.Node(id)
		l.nodes[id] = n.Clone()
		l.order = append(l.order, id)
	}
	return l
}

// GetNode retrieves a copy of a node by ID.
func (l *Loader) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	n, ok := l.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// ListNodes returns all node IDs in insertion order.
func (l *Loader) ListNodes(ctx context.Context) ([]string, error) {
	return append([]string(nil), l.order...), nil
}

// Sorted returns all node IDs in lexical order.
func (l *Loader) Sorted() []string {
	keys := append([]string(nil), l.order...)
	sort.Strings(keys)
	return keys
}

package runtime

import (
	"github.com/aretw0/weave/pkg/domain"
)

type consumer struct {
	node   string
	input  string
	output int
}

// graph is a prompt with its links indexed by producer. Expansions only
// append nodes, so the index grows with add and is never rebuilt.
type graph struct {
	*domain.Prompt
	consumers map[string][]consumer
}

func newGraph(p *domain.Prompt) *graph {
	g := &graph{Prompt: p, consumers: make(map[string][]consumer)}
	for _, id := range p.IDs() {
		g.index(id)
	}
	return g
}

func (g *graph) add(n *domain.Node) error {
	if err := g.Prompt.Add(n); err != nil {
		return err
	}
	g.index(n.ID)
	return nil
}

func (g *graph) index(id string) {
	n, _ := g.Node(id)
	for _, name := range n.InputNames() {
		in := n.Inputs[name]
		if in.IsLink() {
			g.consumers[in.Link.From] = append(g.consumers[in.Link.From], consumer{node: id, input: name, output: in.Link.Output})
		}
	}
}

// Consumers returns the nodes whose input named input links to id.
func (g *graph) Consumers(id, input string) []string {
	var out []string
	for _, c := range g.consumers[id] {
		if c.input == input {
			out = append(out, c.node)
		}
	}
	return out
}

// neighbours lists the existing nodes linked to id in either direction.
func (g *graph) neighbours(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	push := func(other string) {
		if seen[other] {
			return
		}
		seen[other] = true
		if _, ok := g.Node(other); ok {
			out = append(out, other)
		}
	}
	if n, ok := g.Node(id); ok {
		for _, name := range n.InputNames() {
			if in := n.Inputs[name]; in.IsLink() {
				push(in.Link.From)
			}
		}
	}
	for _, c := range g.consumers[id] {
		push(c.node)
	}
	return out
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Prompt is the graph being executed: an arena of nodes keyed by id that
// remembers insertion order. Expansions only ever append to it.
type Prompt struct {
	ID    string
	nodes map[string]*Node
	order []string
	pos   map[string]int
}

// NewPrompt returns an empty prompt.
func NewPrompt(id string) *Prompt {
	return &Prompt{ID: id, nodes: make(map[string]*Node), pos: make(map[string]int)}
}

// Add appends a node. Ids must be unique.
func (p *Prompt) Add(n *Node) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("add node: empty id")
	}
	if p.nodes == nil {
		p.nodes = make(map[string]*Node)
		p.pos = make(map[string]int)
	}
	if _, exists := p.nodes[n.ID]; exists {
		return fmt.Errorf("add node %q: %w", n.ID, ErrDuplicateNode)
	}
	p.nodes[n.ID] = n
	p.pos[n.ID] = len(p.order)
	p.order = append(p.order, n.ID)
	return nil
}

// Node returns the node with the given id.
func (p *Prompt) Node(id string) (*Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// IDs returns node ids in insertion order.
func (p *Prompt) IDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Position returns the insertion index of id.
func (p *Prompt) Position(id string) (int, bool) {
	i, ok := p.pos[id]
	return i, ok
}

// Len is the number of nodes.
func (p *Prompt) Len() int { return len(p.order) }

// Clone deep-copies the prompt.
func (p *Prompt) Clone() *Prompt {
	c := NewPrompt(p.ID)
	for _, id := range p.order {
		_ = c.Add(p.nodes[id].Clone())
	}
	return c
}

type promptDTO struct {
	ID    string  `json:"id,omitempty"`
	Nodes []*Node `json:"nodes"`
}

func (p *Prompt) MarshalJSON() ([]byte, error) {
	dto := promptDTO{ID: p.ID, Nodes: make([]*Node, 0, len(p.order))}
	for _, id := range p.order {
		dto.Nodes = append(dto.Nodes, p.nodes[id])
	}
	return json.Marshal(dto)
}

func (p *Prompt) UnmarshalJSON(data []byte) error {
	var dto promptDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	fresh := NewPrompt(dto.ID)
	for _, n := range dto.Nodes {
		if n.Inputs == nil {
			n.Inputs = make(map[string]Input)
		}
		if err := fresh.Add(n); err != nil {
			return err
		}
	}
	*p = *fresh
	return nil
}

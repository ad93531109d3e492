package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Link points at one output of a producer node.
type Link struct {
	From   string `json:"from" yaml:"from" mapstructure:"from"`
	Output int    `json:"output" yaml:"output" mapstructure:"output"`
}

func (l Link) String() string { return fmt.Sprintf("%s[%d]", l.From, l.Output) }

// Input is the recorded value of one input socket: either a literal or a
// link to another node's output.
type Input struct {
	Value any
	Link  *Link
}

// Literal wraps a constant value.
func Literal(v any) Input { return Input{Value: v} }

// Linked wraps a link to output of node from.
func Linked(from string, output int) Input {
	return Input{Link: &Link{From: from, Output: output}}
}

// IsLink reports whether the input is wired to another node.
func (i Input) IsLink() bool { return i.Link != nil }

// MarshalJSON writes links as {"from": id, "output": n} and literals as-is.
func (i Input) MarshalJSON() ([]byte, error) {
	if i.Link != nil {
		return json.Marshal(i.Link)
	}
	return json.Marshal(i.Value)
}

// UnmarshalJSON accepts the forms produced by DecodeInput.
func (i *Input) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = DecodeInput(raw)
	return nil
}

// DecodeInput interprets a decoded document value. A map holding exactly
// "from" (string) and "output" (number), or a two element [id, n] list, is a
// link; anything else is a literal.
func DecodeInput(raw any) Input {
	switch v := raw.(type) {
	case Input:
		return v
	case Link:
		return Input{Link: &v}
	case *Link:
		if v != nil {
			l := *v
			return Input{Link: &l}
		}
	case map[string]any:
		if len(v) == 2 {
			from, okFrom := v[KeyFrom].(string)
			out, okOut := asIndex(v[KeyOutput])
			if okFrom && okOut {
				return Linked(from, out)
			}
		}
	case []any:
		if len(v) == 2 {
			from, okFrom := v[0].(string)
			out, okOut := asIndex(v[1])
			if okFrom && okOut {
				return Linked(from, out)
			}
		}
	}
	return Literal(raw)
}

func asIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case uint64:
		return int(n), true
	case float64:
		return int(n), n >= 0 && n == float64(int(n))
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil && i >= 0
	}
	return 0, false
}

// Node is one instance of a node class inside a prompt.
type Node struct {
	ID    string `json:"id"`
	Class string `json:"class"`
	// DisplayID is the identity shown to users. Clones made by loop
	// expansion keep the display id of the node they were cloned from.
	DisplayID string `json:"display_id,omitempty"`
	// ParentID is the node whose execution produced this one.
	ParentID string           `json:"parent_id,omitempty"`
	Inputs   map[string]Input `json:"inputs"`
}

// NewNode creates a node with no inputs.
func NewNode(id, class string) *Node {
	return &Node{ID: id, Class: class, Inputs: make(map[string]Input)}
}

// Display returns the display id, falling back to the id.
func (n *Node) Display() string {
	if n.DisplayID != "" {
		return n.DisplayID
	}
	return n.ID
}

// Set records an input.
func (n *Node) Set(name string, in Input) {
	if n.Inputs == nil {
		n.Inputs = make(map[string]Input)
	}
	n.Inputs[name] = in
}

// Unset removes an input so the slot reads as unwired.
func (n *Node) Unset(name string) {
	delete(n.Inputs, name)
}

// InputNames returns the recorded input names in sorted order.
func (n *Node) InputNames() []string {
	names := make([]string, 0, len(n.Inputs))
	for name := range n.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone copies the node and its input table. Literal values are shared.
func (n *Node) Clone() *Node {
	c := *n
	c.Inputs = make(map[string]Input, len(n.Inputs))
	for k, v := range n.Inputs {
		if v.Link != nil {
			l := *v.Link
			v.Link = &l
		}
		c.Inputs[k] = v
	}
	return &c
}

package loop

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/dsl"
	"github.com/aretw0/weave/pkg/ports"
)

// Socket names and keys shared by the open/close protocol.
const (
	FlowSocket      = "flow_control"
	ConditionSocket = "condition"
	InitialPrefix   = "initial_value"
	ValuePrefix     = "value"

	// RecurseKey is the key of the close node's clone in every expansion.
	// Reusing it keeps ids from growing across iterations.
	RecurseKey = "Recurse"
)

// Upstream walks input links backward from start and returns, for every
// node transitively feeding start, the direct consumers reached from it
// during the walk.
func Upstream(p ports.PromptReader, start string) (map[string][]string, error) {
	upstream := make(map[string][]string)
	visited := map[string]bool{start: true}
	stack := []string{start}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, ok := p.Node(id)
		if !ok {
			return nil, fmt.Errorf("upstream of %q: %w: %s", start, domain.ErrNodeNotFound, id)
		}
		for _, name := range n.InputNames() {
			in := n.Inputs[name]
			if !in.IsLink() {
				continue
			}
			parent := in.Link.From
			upstream[parent] = appendUnique(upstream[parent], id)
			if !visited[parent] {
				visited[parent] = true
				stack = append(stack, parent)
			}
		}
	}
	return upstream, nil
}

// Contained collects every node reachable from open through the consumer
// map, plus open and close themselves.
func Contained(upstream map[string][]string, open, close string) map[string]bool {
	contained := map[string]bool{open: true, close: true}
	queue := []string{open}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range upstream[id] {
			if !contained[child] {
				contained[child] = true
				queue = append(queue, child)
			}
		}
	}
	return contained
}

// Iteration describes one close node execution that must loop again.
type Iteration struct {
	Prompt  ports.PromptReader
	CloseID string
	OpenID  string
	// Prefix namespaces the ids of the cloned nodes.
	Prefix string
	// Values are the current loop-carried values; Values[i] seeds the
	// cloned open node's initial_value<i>.
	Values []any
}

// Expand clones the loop body between the open and close node into a new
// subgraph and returns references to the cloned close node's outputs.
//
// Clones keep the display id of their original and use it as their key,
// except the close node's clone which always uses RecurseKey. Links between
// contained nodes are re-pointed at the clones; any other input is copied
// verbatim. The cloned open node's carried inputs are overwritten with
// Values.
func Expand(it Iteration) (domain.ContinueWith, error) {
	upstream, err := Upstream(it.Prompt, it.CloseID)
	if err != nil {
		return domain.ContinueWith{}, err
	}
	if _, ok := it.Prompt.Node(it.OpenID); !ok {
		return domain.ContinueWith{}, fmt.Errorf("open node: %w: %s", domain.ErrNodeNotFound, it.OpenID)
	}
	contained := Contained(upstream, it.OpenID, it.CloseID)

	// Prompt order keeps the expansion deterministic.
	members := make([]*domain.Node, 0, len(contained))
	for id := range contained {
		if n, ok := it.Prompt.Node(id); ok {
			members = append(members, n)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		a, _ := it.Prompt.Position(members[i].ID)
		b, _ := it.Prompt.Position(members[j].ID)
		return a < b
	})

	b := dsl.New(it.Prefix)
	keys := make(map[string]string, len(members))
	used := map[string]bool{RecurseKey: true}
	for i, n := range members {
		key := RecurseKey
		if n.ID != it.CloseID {
			key = n.Display()
			if used[key] {
				key = key + "_" + strconv.Itoa(i)
			}
			used[key] = true
		}
		keys[n.ID] = key
		b.Add(n.Class, key).Display(n.Display())
	}

	for _, n := range members {
		clone, _ := b.Lookup(keys[n.ID])
		for _, name := range n.InputNames() {
			in := n.Inputs[name]
			if in.IsLink() && contained[in.Link.From] {
				clone.Set(name, domain.Ref{Node: b.ID(keys[in.Link.From]), Output: in.Link.Output})
				continue
			}
			clone.Set(name, in)
		}
	}

	open, _ := b.Lookup(keys[it.OpenID])
	for i, v := range it.Values {
		name := InitialPrefix + strconv.Itoa(i)
		if v == nil {
			// the free slot stays unwired so the group keeps its width
			open.Build().Unset(name)
			continue
		}
		open.Build().Set(name, domain.Literal(v))
	}

	recurse, _ := b.Lookup(RecurseKey)
	refs := make([]any, len(it.Values))
	for i := range it.Values {
		refs[i] = recurse.Out(i)
	}
	return domain.ContinueWith{Values: refs, Expansion: b.Finalize()}, nil
}

// Partners finds the nodes entangled with id through the flow socket: the
// producer its own flow input links to, and every node whose flow input
// links to it.
func Partners(p ports.PromptReader, id string) []string {
	var out []string
	if n, ok := p.Node(id); ok {
		if in, ok := n.Inputs[FlowSocket]; ok && in.IsLink() {
			out = appendUnique(out, in.Link.From)
		}
	}
	if idx, ok := p.(ports.ConsumerIndex); ok {
		for _, other := range idx.Consumers(id, FlowSocket) {
			if other != id {
				out = appendUnique(out, other)
			}
		}
		return out
	}
	for _, other := range p.IDs() {
		if other == id {
			continue
		}
		n, _ := p.Node(other)
		if in, ok := n.Inputs[FlowSocket]; ok && in.IsLink() && in.Link.From == id {
			out = appendUnique(out, other)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

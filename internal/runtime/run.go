package runtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// maxRefDepth bounds placeholder chasing; each loop iteration adds one hop.
const maxRefDepth = 1 << 16

// run is the state of one execution.
type run struct {
	e       *Engine
	id      string
	g       *graph
	schemas Schemas
	outputs map[string][]any
	done    map[string]bool
	report  *domain.RunReport
	seq     int

	// ready holds nodes to try next; waiting parks nodes on the node
	// whose output they still need.
	ready   []string
	waiting map[string][]string
}

// Run executes p until every node has produced its outputs.
//
// Nodes are tried in prompt order. One whose linked input is not available
// yet waits on the producing node and is tried again once that node
// completes. A ContinueWith result splices its expansion into the prompt
// and the placeholders it returned resolve once the referenced nodes have
// run.
// The submitted prompt is not modified; the report carries the final graph.
func (e *Engine) Run(ctx context.Context, p *domain.Prompt) (*domain.RunReport, error) {
	r := &run{
		e:       e,
		id:      uuid.NewString(),
		g:       newGraph(p.Clone()),
		outputs: make(map[string][]any),
		done:    make(map[string]bool),
		waiting: make(map[string][]string),
	}
	r.report = domain.NewRunReport(r.id)
	r.report.Prompt = r.g.Prompt

	logger := e.logger.With("run_id", r.id, "prompt", p.ID)
	logger.Debug("run started", "nodes", p.Len())

	r.schemas = make(Schemas, p.Len())
	if err := e.resolveIDs(r.g, r.schemas, r.g.IDs(), nil); err != nil {
		r.report.Status = domain.StatusAborted
		return r.report, err
	}

	err := r.loop(ctx)
	r.finish(p)
	if err != nil {
		logger.Error("run aborted", "err", err, "executed", len(r.report.Order))
		return r.report, err
	}
	logger.Debug("run finished", "status", r.report.Status, "executed", len(r.report.Order), "expansions", r.report.Expansions)
	return r.report, nil
}

func (r *run) loop(ctx context.Context) error {
	r.ready = r.g.IDs()
	for len(r.ready) > 0 {
		id := r.ready[0]
		r.ready = r.ready[1:]
		if r.done[id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.report.Status = domain.StatusAborted
			return err
		}
		blocker, err := r.step(ctx, id)
		if err != nil {
			r.report.Status = domain.StatusAborted
			return err
		}
		if blocker != "" {
			r.waiting[blocker] = append(r.waiting[blocker], id)
		}
	}

	var pending []string
	for _, id := range r.g.IDs() {
		if !r.done[id] {
			pending = append(pending, id)
		}
	}
	if len(pending) > 0 {
		r.report.Status = domain.StatusStalled
		return fmt.Errorf("%w: %s", domain.ErrStalled, strings.Join(pending, ", "))
	}
	return nil
}

// step runs id if its inputs are available. Otherwise it returns the node
// id must wait for; an unresolvable placeholder waits on nothing and
// leaves id stalled.
func (r *run) step(ctx context.Context, id string) (string, error) {
	n, _ := r.g.Node(id)
	class, err := r.e.classes.Lookup(n.Class)
	if err != nil {
		return "", fmt.Errorf("node %q: %w", id, err)
	}
	s := r.schemas[id]

	inputs := make(map[string]any, len(n.Inputs))
	var blocked *domain.Blocked
	for _, name := range n.InputNames() {
		in := n.Inputs[name]
		if !in.IsLink() {
			inputs[name] = in.Value
			continue
		}
		if decl, ok := s.Input(name); ok && decl.RawLink {
			inputs[name] = *in.Link
			continue
		}
		v, missing, ok := r.value(in.Link.From, in.Link.Output, 0)
		if !ok {
			return missing, nil
		}
		if b, isBlocked := v.(domain.Blocked); isBlocked && blocked == nil {
			blocked = &b
		}
		inputs[name] = v
	}

	if blocked != nil {
		count := max(len(s.Outputs), 1)
		values := make([]any, count)
		for i := range values {
			values[i] = *blocked
		}
		r.complete(id, values)
		r.e.logger.Debug("node blocked", "node_id", id, "reason", blocked.String())
		return "", nil
	}

	for _, decl := range s.Inputs {
		if _, set := inputs[decl.Name]; !set && decl.Default != nil {
			inputs[decl.Name] = decl.Default
		}
	}

	r.seq++
	hidden := ports.Hidden{
		NodeID:    id,
		DisplayID: n.Display(),
		Schema:    s,
		Prompt:    r.g,
		Prefix:    "x" + strconv.Itoa(r.seq),
	}

	r.fireStart(ctx, n)
	res, err := class.Execute(ctx, inputs, hidden)
	if err != nil {
		if errors.Is(err, domain.ErrMissingFlowHandle) {
			r.e.logger.Error("loop close without flow handle", "node_id", id, "err", err)
		}
		return "", fmt.Errorf("node %q (%s): %w", id, n.Class, err)
	}

	values := res.Outputs()
	r.e.logger.Debug("node executed", "node_id", id, "class", n.Class)
	r.complete(id, values)
	r.report.Order = append(r.report.Order, id)
	r.report.Executions[n.Display()]++

	if cw, ok := res.(domain.ContinueWith); ok && !cw.Expansion.Empty() {
		if err := r.splice(ctx, id, hidden.Prefix, cw.Expansion); err != nil {
			return "", err
		}
	}
	r.fireDone(ctx, n, values)
	return "", nil
}

func (r *run) complete(id string, values []any) {
	r.outputs[id] = values
	r.done[id] = true
	if woken, ok := r.waiting[id]; ok {
		r.ready = append(r.ready, woken...)
		delete(r.waiting, id)
	}
}

// value resolves one output, following placeholders left by expansions.
// When the value is not available yet it returns the node still to run.
func (r *run) value(id string, index, depth int) (any, string, bool) {
	if !r.done[id] {
		return nil, id, false
	}
	values := r.outputs[id]
	if index < 0 || index >= len(values) {
		return nil, "", true
	}
	ref, ok := values[index].(domain.Ref)
	if !ok {
		return values[index], "", true
	}
	if depth > maxRefDepth {
		return nil, "", false
	}
	return r.value(ref.Node, ref.Output, depth+1)
}

func (r *run) splice(ctx context.Context, parent, prefix string, exp *domain.Expansion) error {
	r.report.Expansions++
	if limit := r.e.maxExpansions; limit > 0 && r.report.Expansions > limit {
		return fmt.Errorf("node %q: %w (%d)", parent, domain.ErrExpansionLimit, limit)
	}

	added := make([]string, 0, len(exp.Nodes))
	for _, n := range exp.Nodes {
		c := n.Clone()
		c.ParentID = parent
		if err := r.g.add(c); err != nil {
			return fmt.Errorf("splice from %q: %w", parent, err)
		}
		added = append(added, c.ID)
	}

	// Nodes that already ran keep the schema they ran with.
	frozen := func(id string) bool { return r.done[id] }
	if err := r.e.resolveIDs(r.g, r.schemas, added, frozen); err != nil {
		return err
	}
	r.ready = append(r.ready, added...)

	r.e.logger.Info("expansion spliced", "node_id", parent, "expansion", prefix, "added", len(added))
	if r.e.hooks.OnExpand != nil {
		r.e.hooks.OnExpand(ctx, &domain.ExpansionEvent{
			EventBase: r.event(domain.EventExpansion),
			NodeID:    parent,
			Prefix:    prefix,
			Added:     added,
		})
	}
	return nil
}

func (r *run) finish(submitted *domain.Prompt) {
	for id, values := range r.outputs {
		resolved := make([]any, len(values))
		for i := range values {
			resolved[i], _, _ = r.value(id, i, 0)
		}
		r.report.Outputs[id] = resolved
	}
	r.report.Diff = domain.Diff(submitted, r.g.Prompt)
}

func (r *run) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: r.id, PromptID: r.g.ID}
}

func (r *run) fireStart(ctx context.Context, n *domain.Node) {
	if r.e.hooks.OnNodeStart == nil {
		return
	}
	r.e.hooks.OnNodeStart(ctx, &domain.NodeEvent{
		EventBase: r.event(domain.EventNodeStart),
		NodeID:    n.ID,
		DisplayID: n.Display(),
		Class:     n.Class,
	})
}

func (r *run) fireDone(ctx context.Context, n *domain.Node, outputs []any) {
	if r.e.hooks.OnNodeDone == nil {
		return
	}
	r.e.hooks.OnNodeDone(ctx, &domain.NodeEvent{
		EventBase: r.event(domain.EventNodeDone),
		NodeID:    n.ID,
		DisplayID: n.Display(),
		Class:     n.Class,
		Outputs:   outputs,
	})
}

package runtime

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Schemas maps node ids to their resolved schema.
type Schemas map[string]schema.Schema

// Resolve computes the schema of every node in p.
//
// Types flow both ways: producers constrain the inputs they feed and
// consumers constrain the outputs they read. Since each resolution can
// narrow a neighbour, a node whose schema changes queues its neighbours
// until nothing changes.
func (e *Engine) Resolve(p *domain.Prompt) (Schemas, error) {
	schemas := make(Schemas, p.Len())
	if err := e.resolveIDs(newGraph(p), schemas, p.IDs(), nil); err != nil {
		return nil, err
	}
	return schemas, nil
}

// resolveIDs settles the schemas of ids and of every node their changes
// reach. Nodes for which frozen reports true keep their schema.
func (e *Engine) resolveIDs(g *graph, schemas Schemas, ids []string, frozen func(id string) bool) error {
	classes := make(map[string]ports.NodeClass, len(ids))
	classOf := func(id string) (ports.NodeClass, error) {
		if c, ok := classes[id]; ok {
			return c, nil
		}
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("resolve: %w: %s", domain.ErrNodeNotFound, id)
		}
		c, err := e.classes.Lookup(n.Class)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
		classes[id] = c
		if _, ok := schemas[id]; !ok {
			schemas[id] = c.Resolve(resolve.Request{Observed: schema.NewObservation()})
		}
		return c, nil
	}
	partnersOf := func(id string) []string {
		if ent, ok := classes[id].(ports.Entangled); ok {
			return ent.Partners(id, g)
		}
		return nil
	}

	queue := make([]string, 0, len(ids))
	queued := make(map[string]bool, len(ids))
	enqueue := func(id string) error {
		if queued[id] || (frozen != nil && frozen(id)) {
			return nil
		}
		if _, err := classOf(id); err != nil {
			return err
		}
		queued[id] = true
		queue = append(queue, id)
		return nil
	}
	for _, id := range ids {
		if err := enqueue(id); err != nil {
			return err
		}
	}

	for steps := 0; len(queue) > 0; steps++ {
		if steps >= e.maxRounds*len(classes) {
			e.logger.Debug("resolution did not settle", "rounds", e.maxRounds, "nodes", len(classes))
			return nil
		}
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		req := resolve.Request{Observed: observe(g, id, schemas)}
		partners := partnersOf(id)
		for _, partner := range partners {
			if _, known := schemas[partner]; known {
				req.Entangled = append(req.Entangled, observe(g, partner, schemas))
			}
		}
		s := classes[id].Resolve(req)
		if reflect.DeepEqual(s, schemas[id]) {
			continue
		}
		schemas[id] = s

		// Whatever observes id, directly or through an entangled partner,
		// has to look again.
		affected := append([]string{id}, partners...)
		for _, next := range g.neighbours(id) {
			affected = append(affected, next)
			if _, err := classOf(next); err != nil {
				return err
			}
			affected = append(affected, partnersOf(next)...)
		}
		for _, next := range affected {
			if _, ok := g.Node(next); !ok {
				continue
			}
			if err := enqueue(next); err != nil {
				return err
			}
		}
	}
	return nil
}

func observe(g *graph, id string, schemas Schemas) schema.Observation {
	obs := schema.NewObservation()
	n, ok := g.Node(id)
	if !ok {
		return obs
	}
	for _, name := range n.InputNames() {
		in := n.Inputs[name]
		if in.IsLink() {
			obs.ObserveInput(name, outputType(schemas, in.Link.From, in.Link.Output))
			continue
		}
		obs.ObserveInput(name, socket.Of(in.Value))
	}

	own := schemas[id]
	for _, c := range g.consumers[id] {
		obs.ObserveOutputIndex(c.output)
		if c.output < 0 || c.output >= len(own.Outputs) {
			continue
		}
		cs, ok := schemas[c.node]
		if !ok {
			continue
		}
		if in, ok := cs.Input(c.input); ok {
			obs.ObserveOutput(own.Outputs[c.output].Name, in.Type)
		}
	}
	return obs
}

func outputType(schemas Schemas, from string, index int) socket.Type {
	s, ok := schemas[from]
	if !ok || index < 0 || index >= len(s.Outputs) {
		return socket.Any()
	}
	return s.Outputs[index].Type
}

// Validate resolves p and checks every link against the consuming class.
// Unknown classes, dangling links, mismatched types and unset required
// inputs are all reported in one error.
func (e *Engine) Validate(p *domain.Prompt) error {
	var errs []error
	for _, id := range p.IDs() {
		n, _ := p.Node(id)
		if _, err := e.classes.Lookup(n.Class); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	schemas, err := e.Resolve(p)
	if err != nil {
		return err
	}

	for _, id := range p.IDs() {
		n, _ := p.Node(id)
		class, _ := e.classes.Lookup(n.Class)

		observed := make(map[string]socket.Type)
		present := make(map[string]bool, len(n.Inputs))
		for _, name := range n.InputNames() {
			in := n.Inputs[name]
			present[name] = true
			if !in.IsLink() {
				continue
			}
			if _, ok := p.Node(in.Link.From); !ok {
				errs = append(errs, &schema.ValidationError{
					Node:   id,
					Socket: name,
					Reason: "dangling link to " + in.Link.String(),
				})
				continue
			}
			observed[name] = outputType(schemas, in.Link.From, in.Link.Output)
		}

		if err := class.Validate(observed); err != nil {
			for _, failure := range flatten(err) {
				var ve *schema.ValidationError
				if errors.As(failure, &ve) && ve.Node == "" {
					ve.Node = id
				}
				errs = append(errs, failure)
			}
		}
		for _, name := range schema.Required(schemas[id], present) {
			errs = append(errs, &schema.ValidationError{Node: id, Socket: name, Reason: "required input is not set"})
		}
	}

	if err := schema.Join(errs...); err != nil {
		e.logger.Warn("prompt rejected", "prompt", p.ID, "err", err)
		return err
	}
	return nil
}

func flatten(err error) []error {
	if errs := schema.ValidationErrors(err); errs != nil {
		return errs
	}
	return []error{err}
}

package resolve

import (
	"strconv"

	"github.com/aretw0/weave/pkg/schema"
)

// HighestIndex returns the largest numeric suffix, at or above start, of any
// socket named base<N> in the node's own observation or in an entangled
// partner's. It returns start-1 when none is wired.
func HighestIndex(bases []string, start int, req Request) int {
	highest := start - 1
	scan := func(obs schema.Observation) {
		for _, name := range obs.Names() {
			for _, base := range bases {
				if idx, ok := schema.IndexOf(name, base); ok && idx >= start && idx > highest {
					highest = idx
				}
			}
		}
	}
	scan(req.Observed)
	for _, partner := range req.Entangled {
		scan(partner)
	}
	return highest
}

// SlotCount is the number of slots to offer: every index up to highest plus
// one free slot, and never fewer than one.
func SlotCount(highest, start int) int {
	if highest < start {
		return 1
	}
	return highest - start + 2
}

// ExpandGroups materializes every variadic group declared in decl.
//
// Members of the same group are emitted interleaved per index at the position
// of the group's first member, and a group marker inside a member's type is
// replaced with the slot index. The materialized count is recorded in Groups
// so execution knows how many numbered inputs are live.
func ExpandGroups(decl schema.Schema, req Request) schema.Schema {
	bases := make(map[string][]string)
	var order []string
	note := func(name string) {
		base, group, ok := schema.SplitGroup(name)
		if !ok {
			return
		}
		if _, seen := bases[group]; !seen {
			order = append(order, group)
		}
		bases[group] = append(bases[group], base)
	}
	for _, in := range decl.Inputs {
		note(in.Name)
	}
	for _, out := range decl.Outputs {
		note(out.Name)
	}
	if len(order) == 0 {
		return decl.Clone()
	}

	counts := make(map[string]int, len(order))
	for _, group := range order {
		start := decl.Start(group)
		counts[group] = SlotCount(HighestIndex(bases[group], start, req), start)
	}

	out := decl.Clone()
	out.Inputs = expandInputs(decl, counts)
	out.Outputs = expandOutputs(decl, counts)
	if out.Groups == nil {
		out.Groups = make(map[string]int, len(counts))
	}
	for group, n := range counts {
		out.Groups[group] = n
	}
	return out
}

func expandInputs(decl schema.Schema, counts map[string]int) []schema.Input {
	var (
		out  []schema.Input
		done = make(map[string]bool)
	)
	for _, in := range decl.Inputs {
		_, group, ok := schema.SplitGroup(in.Name)
		if !ok {
			out = append(out, in)
			continue
		}
		if done[group] {
			continue
		}
		done[group] = true

		var members []schema.Input
		for _, m := range decl.Inputs {
			if _, g, ok := schema.SplitGroup(m.Name); ok && g == group {
				members = append(members, m)
			}
		}
		start := decl.Start(group)
		for i := start; i < start+counts[group]; i++ {
			for _, m := range members {
				base, _, _ := schema.SplitGroup(m.Name)
				slot := m
				slot.Name = base + strconv.Itoa(i)
				slot.Type = m.Type.ReplaceGroup(schema.GroupMarker+group, i)
				out = append(out, slot)
			}
		}
	}
	return out
}

func expandOutputs(decl schema.Schema, counts map[string]int) []schema.Output {
	var (
		out  []schema.Output
		done = make(map[string]bool)
	)
	for _, o := range decl.Outputs {
		_, group, ok := schema.SplitGroup(o.Name)
		if !ok {
			out = append(out, o)
			continue
		}
		if done[group] {
			continue
		}
		done[group] = true

		var members []schema.Output
		for _, m := range decl.Outputs {
			if _, g, ok := schema.SplitGroup(m.Name); ok && g == group {
				members = append(members, m)
			}
		}
		start := decl.Start(group)
		for i := start; i < start+counts[group]; i++ {
			for _, m := range members {
				base, _, _ := schema.SplitGroup(m.Name)
				out = append(out, schema.Output{
					Name: base + strconv.Itoa(i),
					Type: m.Type.ReplaceGroup(schema.GroupMarker+group, i),
				})
			}
		}
	}
	return out
}

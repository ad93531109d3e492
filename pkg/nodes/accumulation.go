package nodes

import (
	"context"
	"fmt"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Class names of the accumulation helpers.
const (
	AccumulationHeadClass      = "AccumulationHead"
	AccumulationTailClass      = "AccumulationTail"
	AccumulationToListClass    = "AccumulationToList"
	ListToAccumulationClass    = "ListToAccumulation"
	AccumulationGetLengthClass = "AccumulationGetLength"
	AccumulationGetItemClass   = "AccumulationGetItem"
	AccumulationSetItemClass   = "AccumulationSetItem"
)

func accumulationType() socket.Type {
	return socket.Qualified(AccumulationWrapper, "T")
}

func accumulationInput() schema.Input {
	return schema.Input{Name: "accumulation", Type: accumulationType()}
}

// items unwraps an accumulation input. A nil value is an empty
// accumulation only when allowNil is set.
func items(class, nodeID string, v any, allowNil bool) ([]any, error) {
	switch acc := v.(type) {
	case Accumulation:
		return acc.Items, nil
	case *Accumulation:
		if acc != nil {
			return acc.Items, nil
		}
	}
	if v == nil && allowNil {
		return nil, nil
	}
	return nil, fmt.Errorf("%s %q: %w: accumulation is %T", class, nodeID, ErrInvalidInput, v)
}

// position maps index onto items, counting back from the end when negative.
func position(class, nodeID string, raw any, n int) (int, error) {
	i, err := asInt(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q: index: %w", class, nodeID, err)
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%s %q: %w: index %v out of range for %d items", class, nodeID, ErrInvalidInput, raw, n)
	}
	return i, nil
}

// AccumulationHead splits off the first item. An empty accumulation is
// returned unchanged with no head.
type AccumulationHead struct{ Base }

func NewAccumulationHead(opts ...Option) *AccumulationHead {
	decl := schema.Schema{
		Inputs: []schema.Input{accumulationInput()},
		Outputs: []schema.Output{
			{Name: "accumulation", Type: accumulationType()},
			{Name: "head", Type: socket.Template("T")},
		},
	}
	return &AccumulationHead{Base: newBase(AccumulationHeadClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *AccumulationHead) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	list, err := items(AccumulationHeadClass, hidden.NodeID, inputs["accumulation"], false)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return domain.Done{Values: []any{Accumulation{Items: list}, nil}}, nil
	}
	rest := append([]any(nil), list[1:]...)
	return domain.Done{Values: []any{Accumulation{Items: rest}, list[0]}}, nil
}

// AccumulationTail splits off the last item. An empty accumulation is
// returned unchanged with no tail.
type AccumulationTail struct{ Base }

func NewAccumulationTail(opts ...Option) *AccumulationTail {
	decl := schema.Schema{
		Inputs: []schema.Input{accumulationInput()},
		Outputs: []schema.Output{
			{Name: "accumulation", Type: accumulationType()},
			{Name: "tail", Type: socket.Template("T")},
		},
	}
	return &AccumulationTail{Base: newBase(AccumulationTailClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *AccumulationTail) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	list, err := items(AccumulationTailClass, hidden.NodeID, inputs["accumulation"], false)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return domain.Done{Values: []any{Accumulation{Items: list}, nil}}, nil
	}
	last := len(list) - 1
	rest := append([]any(nil), list[:last]...)
	return domain.Done{Values: []any{Accumulation{Items: rest}, list[last]}}, nil
}

// AccumulationToList exposes the items as a plain list.
type AccumulationToList struct{ Base }

func NewAccumulationToList(opts ...Option) *AccumulationToList {
	decl := schema.Schema{
		Inputs:  []schema.Input{accumulationInput()},
		Outputs: []schema.Output{{Name: "list", Type: socket.Qualified(socket.ListWrapper, "T")}},
	}
	return &AccumulationToList{Base: newBase(AccumulationToListClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *AccumulationToList) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	list, err := items(AccumulationToListClass, hidden.NodeID, inputs["accumulation"], false)
	if err != nil {
		return nil, err
	}
	return domain.Done{Values: []any{append([]any{}, list...)}}, nil
}

// ListToAccumulation wraps a list.
type ListToAccumulation struct{ Base }

func NewListToAccumulation(opts ...Option) *ListToAccumulation {
	decl := schema.Schema{
		Inputs:  []schema.Input{{Name: "list", Type: socket.Qualified(socket.ListWrapper, "T")}},
		Outputs: []schema.Output{{Name: "accumulation", Type: accumulationType()}},
	}
	return &ListToAccumulation{Base: newBase(ListToAccumulationClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *ListToAccumulation) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	switch list := inputs["list"].(type) {
	case nil:
		return domain.Done{Values: []any{Accumulation{Items: []any{}}}}, nil
	case []any:
		return domain.Done{Values: []any{Accumulation{Items: append([]any{}, list...)}}}, nil
	default:
		return nil, fmt.Errorf("%s %q: %w: list is %T", ListToAccumulationClass, hidden.NodeID, ErrInvalidInput, list)
	}
}

// AccumulationGetLength counts the items.
type AccumulationGetLength struct{ Base }

func NewAccumulationGetLength(opts ...Option) *AccumulationGetLength {
	decl := schema.Schema{
		Inputs:  []schema.Input{accumulationInput()},
		Outputs: []schema.Output{{Name: "length", Type: socket.Int()}},
	}
	return &AccumulationGetLength{Base: newBase(AccumulationGetLengthClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *AccumulationGetLength) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	list, err := items(AccumulationGetLengthClass, hidden.NodeID, inputs["accumulation"], false)
	if err != nil {
		return nil, err
	}
	return domain.Done{Values: []any{len(list)}}, nil
}

// AccumulationGetItem reads one item. Negative indexes count from the end.
type AccumulationGetItem struct{ Base }

func NewAccumulationGetItem(opts ...Option) *AccumulationGetItem {
	decl := schema.Schema{
		Inputs: []schema.Input{
			accumulationInput(),
			{Name: "index", Type: socket.Int(), Default: 0},
		},
		Outputs: []schema.Output{{Name: "item", Type: socket.Template("T")}},
	}
	return &AccumulationGetItem{Base: newBase(AccumulationGetItemClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *AccumulationGetItem) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	list, err := items(AccumulationGetItemClass, hidden.NodeID, inputs["accumulation"], false)
	if err != nil {
		return nil, err
	}
	i, err := position(AccumulationGetItemClass, hidden.NodeID, inputs["index"], len(list))
	if err != nil {
		return nil, err
	}
	return domain.Done{Values: []any{list[i]}}, nil
}

// AccumulationSetItem replaces one item in a copy of the accumulation.
type AccumulationSetItem struct{ Base }

func NewAccumulationSetItem(opts ...Option) *AccumulationSetItem {
	decl := schema.Schema{
		Inputs: []schema.Input{
			accumulationInput(),
			{Name: "index", Type: socket.Int(), Default: 0},
			{Name: "value", Type: socket.Template("T")},
		},
		Outputs: []schema.Output{{Name: "accumulation", Type: accumulationType()}},
	}
	return &AccumulationSetItem{Base: newBase(AccumulationSetItemClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *AccumulationSetItem) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	list, err := items(AccumulationSetItemClass, hidden.NodeID, inputs["accumulation"], false)
	if err != nil {
		return nil, err
	}
	i, err := position(AccumulationSetItemClass, hidden.NodeID, inputs["index"], len(list))
	if err != nil {
		return nil, err
	}
	next := append([]any(nil), list...)
	next[i] = inputs["value"]
	return domain.Done{Values: []any{Accumulation{Items: next}}}, nil
}

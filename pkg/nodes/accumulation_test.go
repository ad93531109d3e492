package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

func acc(items ...any) Accumulation { return Accumulation{Items: items} }

func TestAccumulationHeadAndTail(t *testing.T) {
	head := NewAccumulationHead()
	assert.Equal(t, []any{acc(2, 3), 1}, run(t, head, map[string]any{"accumulation": acc(1, 2, 3)}))
	assert.Equal(t, []any{Accumulation{}, nil}, run(t, head, map[string]any{"accumulation": Accumulation{}}))

	tail := NewAccumulationTail()
	assert.Equal(t, []any{acc(1, 2), 3}, run(t, tail, map[string]any{"accumulation": acc(1, 2, 3)}))
	assert.Equal(t, []any{Accumulation{}, nil}, run(t, tail, map[string]any{"accumulation": Accumulation{}}))

	_, err := head.Execute(context.Background(), map[string]any{}, ports.Hidden{NodeID: "h"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAccumulationHead_DoesNotShareItems(t *testing.T) {
	in := acc(1, 2, 3)
	out := run(t, NewAccumulationHead(), map[string]any{"accumulation": in})
	rest := out[0].(Accumulation)
	rest.Items[0] = 99
	assert.Equal(t, acc(1, 2, 3), in)
}

func TestAccumulationListConversions(t *testing.T) {
	list := run(t, NewAccumulationToList(), map[string]any{"accumulation": acc("a", "b")})
	assert.Equal(t, []any{[]any{"a", "b"}}, list)

	back := run(t, NewListToAccumulation(), map[string]any{"list": []any{"a", "b"}})
	assert.Equal(t, []any{acc("a", "b")}, back)

	empty := run(t, NewListToAccumulation(), map[string]any{})
	assert.Equal(t, []any{Accumulation{Items: []any{}}}, empty)

	_, err := NewListToAccumulation().Execute(context.Background(), map[string]any{"list": 3}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAccumulationItems(t *testing.T) {
	a := acc(10, 20, 30)

	assert.Equal(t, []any{3}, run(t, NewAccumulationGetLength(), map[string]any{"accumulation": a}))

	get := NewAccumulationGetItem()
	assert.Equal(t, []any{20}, run(t, get, map[string]any{"accumulation": a, "index": 1}))
	assert.Equal(t, []any{30}, run(t, get, map[string]any{"accumulation": a, "index": -1}))
	_, err := get.Execute(context.Background(), map[string]any{"accumulation": a, "index": 3}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	set := NewAccumulationSetItem()
	got := run(t, set, map[string]any{"accumulation": a, "index": 0, "value": 11})
	assert.Equal(t, []any{acc(11, 20, 30)}, got)
	assert.Equal(t, acc(10, 20, 30), a, "the input accumulation is left intact")
	_, err = set.Execute(context.Background(), map[string]any{"accumulation": a, "index": -4, "value": 1}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAccumulationClasses_ResolveElementType(t *testing.T) {
	obs := schema.NewObservation()
	obs.ObserveInput("accumulation", socket.Observed("ACCUMULATION<INT>"))
	req := resolve.Request{Observed: obs}

	head := NewAccumulationHead().Resolve(req)
	assert.Equal(t, "ACCUMULATION<INT>", head.Outputs[0].Type.String())
	assert.Equal(t, "INT", head.Outputs[1].Type.String())

	assert.Equal(t, "LIST<INT>", NewAccumulationToList().Resolve(req).Outputs[0].Type.String())
	assert.Equal(t, "INT", NewAccumulationGetItem().Resolve(req).Outputs[0].Type.String())
	assert.Equal(t, "INT", NewAccumulationGetLength().Resolve(req).Outputs[0].Type.String())

	listObs := schema.NewObservation()
	listObs.ObserveInput("list", socket.Observed("LIST<STRING>"))
	back := NewListToAccumulation().Resolve(resolve.Request{Observed: listObs})
	assert.Equal(t, "ACCUMULATION<STRING>", back.Outputs[0].Type.String())
}

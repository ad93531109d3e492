package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/dsl"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

func flowSchema(n int) schema.Schema {
	return schema.Schema{Groups: map[string]int{FlowGroup: n}}
}

func TestWhileLoopOpen_Execute(t *testing.T) {
	open := NewWhileLoopOpen()
	res, err := open.Execute(context.Background(),
		map[string]any{"initial_value0": 3},
		ports.Hidden{NodeID: "open", Schema: flowSchema(2)})
	require.NoError(t, err)

	done, ok := res.(domain.Done)
	require.True(t, ok)
	assert.Equal(t, []any{domain.FlowHandle{OpenID: "open"}, 3, nil}, done.Values)
}

func TestWhileLoop_ResolvesSymmetrically(t *testing.T) {
	open, closeNode := NewWhileLoopOpen(), NewWhileLoopClose()

	openObs := schema.NewObservation()
	openObs.ObserveInput("initial_value0", socket.Int())
	openObs.ObserveOutput("value0", socket.Concrete("INT", "FLOAT"))

	closeObs := schema.NewObservation()
	closeObs.ObserveInput("flow_control", socket.FlowControl())
	closeObs.ObserveInput("initial_value0", socket.Concrete("INT", "STRING"))
	closeObs.ObserveInput("initial_value1", socket.Boolean())

	so := open.Resolve(resolve.Request{Observed: openObs, Entangled: []schema.Observation{closeObs}})
	sc := closeNode.Resolve(resolve.Request{Observed: closeObs, Entangled: []schema.Observation{openObs}})

	assert.Equal(t, 3, so.Count(FlowGroup))
	assert.Equal(t, 3, sc.Count(FlowGroup))
	assert.Equal(t, []string{"flow_control", "value0", "value1", "value2"}, so.OutputNames())
	assert.Equal(t, []string{"value0", "value1", "value2"}, sc.OutputNames())

	for i, name := range []string{"value0", "value1", "value2"} {
		openType := so.Outputs[i+1].Type
		closeType := sc.Outputs[i].Type
		assert.True(t, openType.Equal(closeType), "%s: %s vs %s", name, openType, closeType)
	}
	assert.Equal(t, "INT", so.Outputs[1].Type.String())
	assert.Equal(t, "BOOLEAN", so.Outputs[2].Type.String())
	assert.True(t, so.Outputs[3].Type.IsWildcard())

	in, ok := sc.Input("initial_value2")
	require.True(t, ok)
	assert.True(t, in.Optional)
}

func countdown(t *testing.T) *domain.Prompt {
	t.Helper()
	b := dsl.New("")
	open := b.Add(WhileLoopOpenClass, "open").Set("initial_value0", 3)
	sub := b.Add(IntMathClass, "sub").Set("operation", OpSubtract).Set("a", open.Out(1)).Set("b", 1)
	cond := b.Add(ToBoolClass, "cond").Set("value", sub.Out(0))
	b.Add(WhileLoopCloseClass, "close").
		Set("flow_control", open.Out(0)).
		Set("condition", cond.Out(0)).
		Set("initial_value0", sub.Out(0))
	p, err := b.BuildPrompt("countdown")
	require.NoError(t, err)
	return p
}

func TestWhileLoopClose_Execute(t *testing.T) {
	closeNode := NewWhileLoopClose()
	ctx := context.Background()

	t.Run("false condition emits the values", func(t *testing.T) {
		res, err := closeNode.Execute(ctx, map[string]any{
			"flow_control":   domain.FlowHandle{OpenID: "open"},
			"condition":      false,
			"initial_value0": 0,
		}, ports.Hidden{NodeID: "close", Schema: flowSchema(2)})
		require.NoError(t, err)
		assert.Equal(t, domain.Done{Values: []any{0, nil}}, res)
	})

	t.Run("true condition without handle fails", func(t *testing.T) {
		_, err := closeNode.Execute(ctx, map[string]any{"condition": true},
			ports.Hidden{NodeID: "close", Schema: flowSchema(1)})
		assert.True(t, errors.Is(err, domain.ErrMissingFlowHandle))
	})

	t.Run("true condition expands the body", func(t *testing.T) {
		p := countdown(t)
		res, err := closeNode.Execute(ctx, map[string]any{
			"flow_control":   domain.FlowHandle{OpenID: "open"},
			"condition":      true,
			"initial_value0": 2,
		}, ports.Hidden{NodeID: "close", DisplayID: "close", Schema: flowSchema(2), Prompt: p, Prefix: "x1"})
		require.NoError(t, err)

		cw, ok := res.(domain.ContinueWith)
		require.True(t, ok)
		assert.Equal(t, []string{"x1.open", "x1.sub", "x1.cond", "x1.Recurse"}, cw.Expansion.IDs())
		assert.Equal(t, []any{
			domain.Ref{Node: "x1.Recurse", Output: 0},
			domain.Ref{Node: "x1.Recurse", Output: 1},
		}, cw.Values)
		assert.Equal(t, domain.Literal(2), cw.Expansion.Nodes[0].Inputs["initial_value0"])
	})
}

func TestForLoopOpen_Execute(t *testing.T) {
	forOpen := NewForLoopOpen()
	ctx := context.Background()

	t.Run("expands a seeded while open", func(t *testing.T) {
		res, err := forOpen.Execute(ctx, map[string]any{"remaining": 3, "initial_value1": "v"},
			ports.Hidden{NodeID: "fo", DisplayID: "fo", Schema: flowSchema(2), Prefix: "x1"})
		require.NoError(t, err)

		cw, ok := res.(domain.ContinueWith)
		require.True(t, ok)
		require.Len(t, cw.Expansion.Nodes, 1)
		wo := cw.Expansion.Nodes[0]
		assert.Equal(t, "x1.while_open", wo.ID)
		assert.Equal(t, WhileLoopOpenClass, wo.Class)
		assert.Equal(t, domain.Literal(3), wo.Inputs["initial_value0"])
		assert.Equal(t, domain.Literal("v"), wo.Inputs["initial_value1"])
		assert.NotContains(t, wo.Inputs, "initial_value2", "the free slot stays unwired")
		assert.Len(t, wo.Inputs, 3)

		assert.Equal(t, []any{
			domain.FlowHandle{OpenID: "fo"},
			domain.Ref{Node: "x1.while_open", Output: 1},
			domain.Ref{Node: "x1.while_open", Output: 2},
			domain.Ref{Node: "x1.while_open", Output: 3},
		}, cw.Values)
	})

	t.Run("carried count overrides remaining", func(t *testing.T) {
		res, err := forOpen.Execute(ctx, map[string]any{"remaining": 3, "initial_value0": 1},
			ports.Hidden{NodeID: "fo", Schema: flowSchema(1), Prefix: "x2"})
		require.NoError(t, err)
		wo := res.(domain.ContinueWith).Expansion.Nodes[0]
		assert.Equal(t, domain.Literal(1), wo.Inputs["initial_value0"])
	})

	t.Run("rejects fewer than one iteration", func(t *testing.T) {
		_, err := forOpen.Execute(ctx, map[string]any{"remaining": 0},
			ports.Hidden{NodeID: "fo", Schema: flowSchema(1), Prefix: "x3"})
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestForLoopClose_Execute(t *testing.T) {
	forClose := NewForLoopClose()

	res, err := forClose.Execute(context.Background(), map[string]any{
		"flow_control":   domain.Link{From: "fo", Output: 0},
		"initial_value1": domain.Link{From: "body", Output: 0},
	}, ports.Hidden{NodeID: "fc", DisplayID: "fc", Schema: flowSchema(2), Prefix: "x4"})
	require.NoError(t, err)

	cw, ok := res.(domain.ContinueWith)
	require.True(t, ok)
	assert.Equal(t, []string{"x4.sub", "x4.cond", "x4.while_close"}, cw.Expansion.IDs())

	byID := map[string]*domain.Node{}
	for _, n := range cw.Expansion.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, domain.Linked("fo", 1), byID["x4.sub"].Inputs["a"])
	assert.Equal(t, "fc:sub", byID["x4.sub"].Display())

	wc := byID["x4.while_close"]
	assert.Equal(t, domain.Linked("fo", 0), wc.Inputs["flow_control"])
	assert.Equal(t, domain.Linked("x4.cond", 0), wc.Inputs["condition"])
	assert.Equal(t, domain.Linked("x4.sub", 0), wc.Inputs["initial_value0"])
	assert.Equal(t, domain.Linked("body", 0), wc.Inputs["initial_value1"])
	_, hasFree := wc.Inputs["initial_value2"]
	assert.False(t, hasFree)

	assert.Equal(t, []any{
		domain.Ref{Node: "x4.while_close", Output: 1},
		domain.Ref{Node: "x4.while_close", Output: 2},
	}, cw.Values)
}

func TestForLoopClose_RequiresFlowLink(t *testing.T) {
	_, err := NewForLoopClose().Execute(context.Background(), map[string]any{},
		ports.Hidden{NodeID: "fc", Schema: flowSchema(1)})
	assert.True(t, errors.Is(err, domain.ErrMissingFlowHandle))
}

func TestLoopClasses_Partners(t *testing.T) {
	p := countdown(t)
	var open ports.Entangled = NewWhileLoopOpen()
	assert.Equal(t, []string{"close"}, open.Partners("open", p))
	var closeNode ports.Entangled = NewWhileLoopClose()
	assert.Equal(t, []string{"open"}, closeNode.Partners("close", p))
}

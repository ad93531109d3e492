package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/registry"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

func run(t *testing.T, c ports.NodeClass, inputs map[string]any) []any {
	t.Helper()
	res, err := c.Execute(context.Background(), inputs, ports.Hidden{NodeID: "n", DisplayID: "n"})
	require.NoError(t, err)
	return res.Outputs()
}

func TestIntMath(t *testing.T) {
	tests := []struct {
		op   string
		a, b any
		want int
	}{
		{OpAdd, 2, 3, 5},
		{OpSubtract, 3, 1, 2},
		{OpMultiply, 4, 5, 20},
		{OpDivide, 7, 2, 3},
		{OpDivide, -7, 2, -4},
		{OpModulo, -7, 3, 2},
		{OpPower, 2, 10, 1024},
		{OpMin, 2, -1, -1},
		{OpMax, 2, -1, 2},
		{OpAdd, float64(2), json.Number("40"), 42},
	}
	m := NewIntMath()
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got := run(t, m, map[string]any{"operation": tt.op, "a": tt.a, "b": tt.b})
			assert.Equal(t, []any{tt.want}, got)
		})
	}
}

func TestIntMath_Errors(t *testing.T) {
	m := NewIntMath()
	ctx := context.Background()

	_, err := m.Execute(ctx, map[string]any{"operation": OpDivide, "a": 1, "b": 0}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	_, err = m.Execute(ctx, map[string]any{"operation": "sqrt", "a": 1, "b": 0}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrUnknownOperation))

	_, err = m.Execute(ctx, map[string]any{"a": 1.5, "b": 0}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestToBool(t *testing.T) {
	b := NewToBool()
	for v, want := range map[any]bool{0: false, 3: true, "": false, "x": true, true: true, false: false, 0.5: true} {
		assert.Equal(t, []any{want}, run(t, b, map[string]any{"value": v}), "%v", v)
	}
	assert.Equal(t, []any{false}, run(t, b, map[string]any{"value": nil}))
	assert.Equal(t, []any{false}, run(t, b, map[string]any{"value": []any{}}))
}

func TestGate(t *testing.T) {
	g := NewGate()
	assert.Equal(t, []any{"v"}, run(t, g, map[string]any{"input": "v", "block": false}))

	out := run(t, g, map[string]any{"input": "v", "block": true, "verbose": true})
	require.Len(t, out, 1)
	blocked, ok := out[0].(domain.Blocked)
	require.True(t, ok)
	assert.Contains(t, blocked.String(), "gate n blocked")
}

func TestAccumulate(t *testing.T) {
	a := NewAccumulate()
	first := run(t, a, map[string]any{"to_add": 1})
	second := run(t, a, map[string]any{"to_add": 2, "accumulation": first[0]})
	assert.Equal(t, []any{Accumulation{Items: []any{1, 2}}}, second)

	_, err := a.Execute(context.Background(), map[string]any{"to_add": 1, "accumulation": "nope"}, ports.Hidden{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAccumulate_ResolvesWrapper(t *testing.T) {
	obs := schema.NewObservation()
	obs.ObserveInput("to_add", socket.Int())
	s := NewAccumulate().Resolve(resolve.Request{Observed: obs})
	assert.Equal(t, "ACCUMULATION<INT>", s.Outputs[0].Type.String())
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrint(WithOutput(&buf))
	out := run(t, p, map[string]any{"value": 3, "label": "count"})
	assert.Equal(t, []any{3}, out)
	assert.Equal(t, "[count]: 3\n", buf.String())

	buf.Reset()
	run(t, p, map[string]any{"value": Accumulation{Items: []any{1, 2}}})
	assert.Equal(t, "[n]: {'accum': [1,2,],}\n", buf.String())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "s", "'s'"},
		{"int", 42, "42"},
		{"float", 2.5, "2.5"},
		{"bool", true, "true"},
		{"nil", nil, "<nil>"},
		{"list", []any{"a", "b"}, "['a','b',]"},
		{"nested", []any{1, []any{2}}, "[1,[2,],]"},
		{"typed slice", []int{1, 2}, "[1,2,]"},
		{"map", map[string]any{"b": 2, "a": "x"}, "{'a': 'x','b': 2,}"},
		{"other", domain.FlowHandle{OpenID: "o"}, "FlowHandle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.in))
		})
	}
}

func TestPassthrough_ResolvesFromConsumers(t *testing.T) {
	obs := schema.NewObservation()
	obs.ObserveOutput("value", socket.Concrete("INT", "FLOAT"))
	obs.ObserveOutput("value", socket.Int())
	s := NewPassthrough().Resolve(resolve.Request{Observed: obs})
	assert.Equal(t, "INT", s.Inputs[0].Type.String())
	assert.Equal(t, "INT", s.Outputs[0].Type.String())
}

func TestMakeList(t *testing.T) {
	m := NewMakeList()

	obs := schema.NewObservation()
	obs.ObserveInput("value1", socket.Int())
	obs.ObserveInput("value2", socket.Int())
	s := m.Resolve(resolve.Request{Observed: obs})
	assert.Equal(t, 3, s.Count(ListGroup))
	assert.Equal(t, "LIST<INT>", s.Outputs[0].Type.String())

	res, err := m.Execute(context.Background(), map[string]any{"value1": 1, "value2": 2},
		ports.Hidden{Schema: s})
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{1, 2}}, res.Outputs())
}

func TestValidate(t *testing.T) {
	m := NewIntMath()
	assert.NoError(t, m.Validate(map[string]socket.Type{"a": socket.Int()}))

	err := m.Validate(map[string]socket.Type{"a": socket.Concrete("STRING"), "b": socket.Int()})
	require.Error(t, err)
	assert.Nil(t, schema.ValidationErrors(err), "a single failure is not aggregated")
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "a", ve.Socket)
	assert.Equal(t, "INT", ve.Declared.String())

	closeNode := NewWhileLoopClose()
	assert.NoError(t, closeNode.Validate(map[string]socket.Type{
		"flow_control":   socket.FlowControl(),
		"initial_value3": socket.Concrete("FLOAT"),
	}))
	assert.Error(t, closeNode.Validate(map[string]socket.Type{"condition": socket.Concrete("STRING")}))
}

func TestRegisterAll(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, RegisterAll(r))
	assert.Equal(t, []string{
		AccumulateClass, AccumulationGetItemClass, AccumulationGetLengthClass, AccumulationHeadClass,
		AccumulationSetItemClass, AccumulationTailClass, AccumulationToListClass,
		ForLoopCloseClass, ForLoopOpenClass, GateClass, IntMathClass, ListToAccumulationClass,
		MakeListClass, PassthroughClass, PrintClass, ToBoolClass, WhileLoopCloseClass, WhileLoopOpenClass,
	}, r.Names())
}

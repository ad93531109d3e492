package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		link *Link
	}{
		{"literal int", 3, nil},
		{"literal string", "hello", nil},
		{"map link", map[string]any{"from": "open", "output": 1}, &Link{From: "open", Output: 1}},
		{"map link float index", map[string]any{"from": "open", "output": float64(2)}, &Link{From: "open", Output: 2}},
		{"list link", []any{"sub", float64(0)}, &Link{From: "sub", Output: 0}},
		{"map with extra keys", map[string]any{"from": "a", "output": 0, "x": 1}, nil},
		{"negative index", map[string]any{"from": "a", "output": -1}, nil},
		{"list of numbers", []any{float64(1), float64(2)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeInput(tt.raw)
			if tt.link == nil {
				assert.False(t, got.IsLink())
				assert.Equal(t, tt.raw, got.Value)
				return
			}
			require.True(t, got.IsLink())
			assert.Equal(t, *tt.link, *got.Link)
		})
	}
}

func TestInputJSON(t *testing.T) {
	n := NewNode("close", "WhileLoopClose")
	n.Set("flow_control", Linked("open", 0))
	n.Set("condition", Literal(true))

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "close",
		"class": "WhileLoopClose",
		"inputs": {
			"flow_control": {"from": "open", "output": 0},
			"condition": true
		}
	}`, string(data))

	var back Node
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Inputs["flow_control"].IsLink())
	assert.Equal(t, true, back.Inputs["condition"].Value)
}

func TestNodeClone(t *testing.T) {
	n := NewNode("a", "Passthrough")
	n.DisplayID = "orig"
	n.Set("value", Linked("b", 0))

	c := n.Clone()
	c.Inputs["value"].Link.From = "z"
	c.Set("extra", Literal(1))

	assert.Equal(t, "b", n.Inputs["value"].Link.From)
	assert.Len(t, n.Inputs, 1)
	assert.Equal(t, "orig", c.Display())
	assert.Equal(t, "b", NewNode("b", "X").Display())
}

func TestPrompt(t *testing.T) {
	p := NewPrompt("loop")
	require.NoError(t, p.Add(NewNode("b", "X")))
	require.NoError(t, p.Add(NewNode("a", "X")))

	err := p.Add(NewNode("a", "Y"))
	assert.True(t, errors.Is(err, ErrDuplicateNode))
	assert.Error(t, p.Add(&Node{}))

	assert.Equal(t, []string{"b", "a"}, p.IDs())
	assert.Equal(t, 2, p.Len())
	if i, ok := p.Position("a"); assert.True(t, ok) {
		assert.Equal(t, 1, i)
	}
	_, ok := p.Position("ghost")
	assert.False(t, ok)

	var zero Prompt
	require.NoError(t, zero.Add(NewNode("z", "X")))
	if i, ok := zero.Position("z"); assert.True(t, ok) {
		assert.Equal(t, 0, i)
	}

	n := NewNode("n", "X")
	n.Set("v", Literal(1))
	n.Unset("v")
	assert.NotContains(t, n.Inputs, "v")

	c := p.Clone()
	require.NoError(t, c.Add(NewNode("c", "X")))
	assert.Equal(t, 2, p.Len())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	var back Prompt
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "loop", back.ID)
	assert.Equal(t, []string{"b", "a"}, back.IDs())
}

func TestResultVariants(t *testing.T) {
	var r Result = Done{Values: []any{1}}
	assert.Equal(t, []any{1}, r.Outputs())

	exp := &Expansion{Nodes: []*Node{NewNode("x1.Recurse", "WhileLoopClose")}}
	r = ContinueWith{Values: []any{Ref{Node: "x1.Recurse", Output: 0}}, Expansion: exp}
	cw, ok := r.(ContinueWith)
	require.True(t, ok)
	assert.False(t, cw.Expansion.Empty())
	assert.Equal(t, []string{"x1.Recurse"}, cw.Expansion.IDs())
	assert.True(t, (*Expansion)(nil).Empty())

	assert.Equal(t, "FLOW_CONTROL", FlowHandle{OpenID: "open"}.SocketType().String())
	assert.Equal(t, "blocked", Blocked{}.String())
	assert.Equal(t, Linked("n", 2), Ref{Node: "n", Output: 2}.Link())
}

func TestRunReportOutput(t *testing.T) {
	r := NewRunReport("run")
	r.Outputs["a"] = []any{1, 2}
	v, ok := r.Output("a", 1)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = r.Output("a", 2)
	assert.False(t, ok)
	_, ok = r.Output("missing", 0)
	assert.False(t, ok)
}

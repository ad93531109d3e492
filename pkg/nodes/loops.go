package nodes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/dsl"
	"github.com/aretw0/weave/pkg/loop"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Class names of the loop nodes.
const (
	WhileLoopOpenClass  = "WhileLoopOpen"
	WhileLoopCloseClass = "WhileLoopClose"
	ForLoopOpenClass    = "ForLoopOpen"
	ForLoopCloseClass   = "ForLoopClose"
)

// FlowGroup is the variadic group of loop-carried values.
const FlowGroup = "FLOW"

const remainingSocket = "remaining"

func carriedInput(rawLink bool) schema.Input {
	return schema.Input{
		Name:     loop.InitialPrefix + schema.GroupMarker + FlowGroup,
		Type:     socket.Any(),
		Optional: true,
		RawLink:  rawLink,
	}
}

func carriedOutput() schema.Output {
	return schema.Output{Name: loop.ValuePrefix + schema.GroupMarker + FlowGroup, Type: socket.Any()}
}

func flowStrategy(start int) resolve.Flow {
	return resolve.Flow{Group: FlowGroup, Input: loop.InitialPrefix, Output: loop.ValuePrefix, Start: start}
}

// carried reads the loop-carried values an execution was scheduled with.
func carried(inputs map[string]any, hidden ports.Hidden, start int) []any {
	n := liveCount(hidden.Schema.Count(FlowGroup), inputs, loop.InitialPrefix, start)
	return numbered(inputs, loop.InitialPrefix, start, n)
}

// WhileLoopOpen marks the start of a loop body. It emits a flow handle
// naming itself followed by its carried values unchanged.
type WhileLoopOpen struct {
	Base
	flowPartners
}

func NewWhileLoopOpen(opts ...Option) *WhileLoopOpen {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: loop.ConditionSocket, Type: socket.Boolean(), Optional: true, Default: true},
			carriedInput(false),
		},
		Outputs: []schema.Output{
			{Name: loop.FlowSocket, Type: socket.FlowControl()},
			carriedOutput(),
		},
		GroupStart: map[string]int{FlowGroup: 0},
	}
	return &WhileLoopOpen{Base: newBase(WhileLoopOpenClass, decl, flowStrategy(0), newConfig(opts))}
}

func (n *WhileLoopOpen) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	values := carried(inputs, hidden, 0)
	return domain.Done{Values: append([]any{domain.FlowHandle{OpenID: hidden.NodeID}}, values...)}, nil
}

// WhileLoopClose ends a loop body. While its condition holds it clones the
// body for another iteration; once false it emits its carried values.
type WhileLoopClose struct {
	Base
	flowPartners
}

func NewWhileLoopClose(opts ...Option) *WhileLoopClose {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: loop.FlowSocket, Type: socket.FlowControl()},
			{Name: loop.ConditionSocket, Type: socket.Boolean()},
			carriedInput(false),
		},
		Outputs:    []schema.Output{carriedOutput()},
		GroupStart: map[string]int{FlowGroup: 0},
	}
	return &WhileLoopClose{Base: newBase(WhileLoopCloseClass, decl, flowStrategy(0), newConfig(opts))}
}

func (n *WhileLoopClose) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	values := carried(inputs, hidden, 0)
	if !truthy(inputs[loop.ConditionSocket]) {
		return domain.Done{Values: values}, nil
	}

	handle, ok := inputs[loop.FlowSocket].(domain.FlowHandle)
	if !ok || handle.OpenID == "" {
		return nil, fmt.Errorf("%s %q: %w", WhileLoopCloseClass, hidden.NodeID, domain.ErrMissingFlowHandle)
	}
	if hidden.Prompt == nil {
		return nil, fmt.Errorf("%s %q: no prompt to expand", WhileLoopCloseClass, hidden.NodeID)
	}

	cw, err := loop.Expand(loop.Iteration{
		Prompt:  hidden.Prompt,
		CloseID: hidden.NodeID,
		OpenID:  handle.OpenID,
		Prefix:  hidden.Prefix,
		Values:  values,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", WhileLoopCloseClass, hidden.NodeID, err)
	}
	return cw, nil
}

// ForLoopOpen starts a counted loop. It is a while loop whose first carried
// value is the remaining iteration count; the user-visible carried values
// start at index 1.
type ForLoopOpen struct {
	Base
	flowPartners
}

func NewForLoopOpen(opts ...Option) *ForLoopOpen {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: remainingSocket, Type: socket.Int(), Default: 1},
			{Name: loop.InitialPrefix + "0", Type: socket.Any(), Optional: true, Hidden: true},
			carriedInput(false),
		},
		Outputs: []schema.Output{
			{Name: loop.FlowSocket, Type: socket.FlowControl()},
			{Name: remainingSocket, Type: socket.Int()},
			carriedOutput(),
		},
		GroupStart: map[string]int{FlowGroup: 1},
	}
	return &ForLoopOpen{Base: newBase(ForLoopOpenClass, decl, flowStrategy(1), newConfig(opts))}
}

func (n *ForLoopOpen) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	raw, ok := inputs[loop.InitialPrefix+"0"]
	if !ok || raw == nil {
		if raw, ok = inputs[remainingSocket]; !ok || raw == nil {
			raw = 1
		}
	}
	remaining, err := asInt(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %s: %w", ForLoopOpenClass, hidden.NodeID, remainingSocket, err)
	}
	if remaining < 1 {
		return nil, fmt.Errorf("%s %q: %w: remaining must be at least 1, got %d", ForLoopOpenClass, hidden.NodeID, ErrInvalidInput, remaining)
	}
	values := carried(inputs, hidden, 1)

	b := dsl.New(hidden.Prefix)
	wo := b.Add(WhileLoopOpenClass, "while_open").
		Display(hidden.DisplayID+":while_open").
		Set(loop.ConditionSocket, true).
		Set(loop.InitialPrefix+"0", remaining)
	for i, v := range values {
		wo.Set(loop.InitialPrefix+strconv.Itoa(i+1), v)
	}

	outputs := []any{domain.FlowHandle{OpenID: hidden.NodeID}, wo.Out(1)}
	for i := range values {
		outputs = append(outputs, wo.Out(i+2))
	}
	return domain.ContinueWith{Values: outputs, Expansion: b.Finalize()}, nil
}

// ForLoopClose ends a counted loop. It receives its inputs as links and
// expands into a decrement, a condition and a WhileLoopClose wired to them,
// so the iteration logic is the while loop's.
type ForLoopClose struct {
	Base
	flowPartners
}

func NewForLoopClose(opts ...Option) *ForLoopClose {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: loop.FlowSocket, Type: socket.FlowControl(), RawLink: true},
			carriedInput(true),
		},
		Outputs:    []schema.Output{carriedOutput()},
		GroupStart: map[string]int{FlowGroup: 1},
	}
	return &ForLoopClose{Base: newBase(ForLoopCloseClass, decl, flowStrategy(1), newConfig(opts))}
}

func (n *ForLoopClose) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	flow, ok := inputs[loop.FlowSocket].(domain.Link)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", ForLoopCloseClass, hidden.NodeID, domain.ErrMissingFlowHandle)
	}
	count := liveCount(hidden.Schema.Count(FlowGroup), inputs, loop.InitialPrefix, 1)

	label := func(key string) string { return hidden.DisplayID + ":" + key }
	b := dsl.New(hidden.Prefix)
	sub := b.Add(IntMathClass, "sub").Display(label("sub")).
		Set("operation", OpSubtract).
		Set("a", domain.Ref{Node: flow.From, Output: 1}).
		Set("b", 1)
	cond := b.Add(ToBoolClass, "cond").Display(label("cond")).
		Set("value", sub.Out(0))
	wc := b.Add(WhileLoopCloseClass, "while_close").Display(label("while_close")).
		Set(loop.FlowSocket, flow).
		Set(loop.ConditionSocket, cond.Out(0)).
		Set(loop.InitialPrefix+"0", sub.Out(0))
	for i := 1; i <= count; i++ {
		name := loop.InitialPrefix + strconv.Itoa(i)
		if v, ok := inputs[name]; ok {
			wc.Set(name, v)
		}
	}

	values := make([]any, count)
	for i := range values {
		values[i] = wc.Out(i + 1)
	}
	return domain.ContinueWith{Values: values, Expansion: b.Finalize()}, nil
}

package nodes

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Class names of the value nodes.
const (
	GateClass        = "Gate"
	IntMathClass     = "IntMath"
	ToBoolClass      = "ToBool"
	AccumulateClass  = "Accumulate"
	PrintClass       = "Print"
	PassthroughClass = "Passthrough"
	MakeListClass    = "MakeList"
)

// IntMath operations.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
	OpModulo   = "modulo"
	OpPower    = "power"
	OpMin      = "min"
	OpMax      = "max"
)

// AccumulationWrapper is the wrapper name of accumulated values.
const AccumulationWrapper = "ACCUMULATION"

// Accumulation is an append-only sequence built one item per iteration.
type Accumulation struct {
	Items []any `json:"accum"`
}

// Gate forwards its input unless block is set, in which case it emits a
// blocked marker that stops every consumer downstream.
type Gate struct{ Base }

func NewGate(opts ...Option) *Gate {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: "input", Type: socket.Template("T")},
			{Name: "block", Type: socket.Boolean(), Default: false},
			{Name: "verbose", Type: socket.Boolean(), Default: false},
		},
		Outputs: []schema.Output{{Name: "output", Type: socket.Template("T")}},
	}
	return &Gate{Base: newBase(GateClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *Gate) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	if !truthy(inputs["block"]) {
		return domain.Done{Values: []any{inputs["input"]}}, nil
	}
	msg := ""
	if truthy(inputs["verbose"]) {
		msg = "gate " + hidden.DisplayID + " blocked execution"
	}
	return domain.Done{Values: []any{domain.Blocked{Message: msg}}}, nil
}

// IntMath applies one integer operation to a and b.
type IntMath struct{ Base }

func NewIntMath(opts ...Option) *IntMath {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: "operation", Type: socket.Concrete(socket.StringName), Default: OpAdd},
			{Name: "a", Type: socket.Int(), Default: 0},
			{Name: "b", Type: socket.Int(), Default: 0},
		},
		Outputs: []schema.Output{{Name: "result", Type: socket.Int()}},
	}
	return &IntMath{Base: newBase(IntMathClass, decl, resolve.Static, newConfig(opts))}
}

func (n *IntMath) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	a, err := asInt(inputs["a"])
	if err != nil {
		return nil, fmt.Errorf("%s %q: a: %w", IntMathClass, hidden.NodeID, err)
	}
	b, err := asInt(inputs["b"])
	if err != nil {
		return nil, fmt.Errorf("%s %q: b: %w", IntMathClass, hidden.NodeID, err)
	}
	op, _ := inputs["operation"].(string)
	r, err := intOp(op, a, b)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", IntMathClass, hidden.NodeID, err)
	}
	return domain.Done{Values: []any{r}}, nil
}

func intOp(op string, a, b int) (int, error) {
	switch strings.ToLower(op) {
	case OpAdd, "":
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return q, nil
	case OpModulo:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		m := a % b
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return m, nil
	case OpPower:
		if b < 0 {
			return 0, fmt.Errorf("%w: negative exponent %d", ErrInvalidInput, b)
		}
		r := 1
		for i := 0; i < b; i++ {
			r *= a
		}
		return r, nil
	case OpMin:
		return min(a, b), nil
	case OpMax:
		return max(a, b), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
}

// ToBool converts any value to its truthiness.
type ToBool struct{ Base }

func NewToBool(opts ...Option) *ToBool {
	decl := schema.Schema{
		Inputs:  []schema.Input{{Name: "value", Type: socket.Any()}},
		Outputs: []schema.Output{{Name: "bool", Type: socket.Boolean()}},
	}
	return &ToBool{Base: newBase(ToBoolClass, decl, resolve.Static, newConfig(opts))}
}

func (n *ToBool) Execute(_ context.Context, inputs map[string]any, _ ports.Hidden) (domain.Result, error) {
	return domain.Done{Values: []any{truthy(inputs["value"])}}, nil
}

// Accumulate appends to_add to an accumulation, starting a new one when
// none is wired.
type Accumulate struct{ Base }

func NewAccumulate(opts ...Option) *Accumulate {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: "to_add", Type: socket.Template("T")},
			{Name: "accumulation", Type: socket.Qualified(AccumulationWrapper, "T"), Optional: true},
		},
		Outputs: []schema.Output{{Name: "accumulation", Type: socket.Qualified(AccumulationWrapper, "T")}},
	}
	return &Accumulate{Base: newBase(AccumulateClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *Accumulate) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	prev, err := items(AccumulateClass, hidden.NodeID, inputs["accumulation"], true)
	if err != nil {
		return nil, err
	}
	next := append(append([]any(nil), prev...), inputs["to_add"])
	return domain.Done{Values: []any{Accumulation{Items: next}}}, nil
}

// Print writes a labelled description of its value and passes the value
// through.
type Print struct {
	Base
	out io.Writer
}

func NewPrint(opts ...Option) *Print {
	cfg := newConfig(opts)
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: "value", Type: socket.Template("T")},
			{Name: "label", Type: socket.Concrete(socket.StringName), Default: ""},
		},
		Outputs: []schema.Output{{Name: "value", Type: socket.Template("T")}},
	}
	return &Print{Base: newBase(PrintClass, decl, resolve.Templates(), cfg), out: cfg.out}
}

func (n *Print) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	label, _ := inputs["label"].(string)
	if label == "" {
		label = hidden.DisplayID
	}
	if _, err := fmt.Fprintf(n.out, "[%s]: %s\n", label, describe(inputs["value"])); err != nil {
		return nil, err
	}
	return domain.Done{Values: []any{inputs["value"]}}, nil
}

// Passthrough emits its input; its output type follows the wiring.
type Passthrough struct{ Base }

func NewPassthrough(opts ...Option) *Passthrough {
	decl := schema.Schema{
		Inputs:  []schema.Input{{Name: "value", Type: socket.Template("T")}},
		Outputs: []schema.Output{{Name: "value", Type: socket.Template("T")}},
	}
	return &Passthrough{Base: newBase(PassthroughClass, decl, resolve.Templates(), newConfig(opts))}
}

func (n *Passthrough) Execute(_ context.Context, inputs map[string]any, _ ports.Hidden) (domain.Result, error) {
	return domain.Done{Values: []any{inputs["value"]}}, nil
}

// MakeList collects a variadic number of values into a list.
type MakeList struct{ Base }

// ListGroup is MakeList's variadic group.
const ListGroup = "N"

func NewMakeList(opts ...Option) *MakeList {
	decl := schema.Schema{
		Inputs: []schema.Input{
			{Name: "value" + schema.GroupMarker + ListGroup, Type: socket.Template("T"), Optional: true},
		},
		Outputs: []schema.Output{{Name: "list", Type: socket.Qualified(socket.ListWrapper, "T")}},
	}
	return &MakeList{Base: newBase(MakeListClass, decl, resolve.Generic(), newConfig(opts))}
}

func (n *MakeList) Execute(_ context.Context, inputs map[string]any, hidden ports.Hidden) (domain.Result, error) {
	start := hidden.Schema.Start(ListGroup)
	count := liveCount(hidden.Schema.Count(ListGroup), inputs, "value", start)
	list := make([]any, 0, count)
	for _, v := range numbered(inputs, "value", start, count) {
		if v != nil {
			list = append(list, v)
		}
	}
	return domain.Done{Values: []any{list}}, nil
}

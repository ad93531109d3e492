package weave_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/pkg/dsl"
	"github.com/aretw0/weave/pkg/nodes"
)

// ExampleEngine_Run builds a while loop that counts down from 3. The Print
// node sits inside the loop body, so every iteration's copy prints once.
func ExampleEngine_Run() {
	eng, err := weave.New("")
	if err != nil {
		log.Fatal(err)
	}

	b := dsl.New("")
	open := b.Add(nodes.WhileLoopOpenClass, "open").Set("initial_value0", 3)
	show := b.Add(nodes.PrintClass, "tick").Set("value", open.Out(1))
	sub := b.Add(nodes.IntMathClass, "sub").
		Set("operation", "subtract").Set("a", show.Out(0)).Set("b", 1)
	cond := b.Add(nodes.ToBoolClass, "cond").Set("value", sub.Out(0))
	b.Add(nodes.WhileLoopCloseClass, "close").
		Set("flow_control", open.Out(0)).
		Set("condition", cond.Out(0)).
		Set("initial_value0", sub.Out(0))

	p, err := b.BuildPrompt("countdown")
	if err != nil {
		log.Fatal(err)
	}

	report, err := eng.Run(context.Background(), p)
	if err != nil {
		log.Fatal(err)
	}

	final, _ := report.Output("close", 0)
	fmt.Println("final:", final, "expansions:", report.Expansions)

	// Output:
	// [tick] 3
	// [tick] 2
	// [tick] 1
	// final: 0 expansions: 2
}

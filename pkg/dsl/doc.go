/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Weave prompts.

Node classes use it at execution time to emit expansions, and tests and hosts
use it to build whole prompts without writing YAML or JSON.

Example usage:

	b := dsl.New("")

	open := b.Add("WhileLoopOpen", "open").Set("initial_value0", 3)
	sub := b.Add("IntMath", "sub").
		Set("operation", "subtract").
		Set("a", open.Out(1)).
		Set("b", 1)
	cond := b.Add("ToBool", "cond").Set("value", sub.Out(0))
	b.Add("WhileLoopClose", "close").
		Set("flow_control", open.Out(0)).
		Set("condition", cond.Out(0)).
		Set("initial_value0", sub.Out(0))

	prompt, err := b.BuildPrompt("countdown")
*/
package dsl

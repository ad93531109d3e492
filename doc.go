/*
Package weave is a node-graph runtime whose node schemas adapt to the way the
nodes are wired, and whose loops are built by growing the graph while it runs.

# Concept

A prompt is a graph of node instances. Every node class declares a schema of
typed input and output sockets. Socket types can be concrete ("INT"), unions
("INT,FLOAT"), the wildcard ("*"), templates ("<T>") bound from whatever is
wired in, or qualified templates ("LIST<T>"). Sockets named "value#N" form
variadic groups that grow with the number of connected members.

Before a prompt runs, the engine resolves every node's schema to a fixpoint:
producers constrain consumers and consumers constrain producers. Loop open
and close nodes are resolved together so both halves agree on the carried
values.

Loops are not special to the scheduler. A loop close node whose condition
holds returns a ContinueWith result: a fresh copy of the loop body, with its
own close node, spliced into the running prompt. The close node's outputs
become references to the copy's outputs, so the host simply keeps running
until every reference resolves.

# Usage

	eng, err := weave.New("", weave.WithMaxExpansions(1000))
	if err != nil {
		log.Fatal(err)
	}

	b := dsl.New("")
	open := b.Add(nodes.WhileLoopOpenClass, "open").Set("initial_value0", 3)
	sub := b.Add(nodes.IntMathClass, "sub").
		Set("operation", "subtract").Set("a", open.Out(1)).Set("b", 1)
	cond := b.Add(nodes.ToBoolClass, "cond").Set("value", sub.Out(0))
	b.Add(nodes.WhileLoopCloseClass, "close").
		Set("flow_control", open.Out(0)).
		Set("condition", cond.Out(0)).
		Set("initial_value0", sub.Out(0))

	p, _ := b.BuildPrompt("countdown")
	report, err := eng.Run(context.Background(), p)

A directory of Markdown, YAML or JSON documents, one per node, can be
opened with weave.New(path) and read with Engine.Load.
*/
package weave

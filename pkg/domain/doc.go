/*
Package domain contains the core models shared by every part of the Weave engine.

It defines the graph being executed and the values exchanged with node
classes. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node: one instance of a node class, with literal or linked inputs.
  - Prompt: the arena of nodes for one run, extended by expansions.
  - Result: Done or ContinueWith, the outcome of a node execution.
  - FlowHandle: the loop identity threaded from an open node to its close node.
  - RunReport: the snapshot of a finished run.
*/
package domain

/*
Package socket implements the type algebra used by node sockets.

A Type is one of four variants:

  - wildcard (*), compatible with anything
  - concrete union (INT or INT,FLOAT), compared with set semantics
  - naked template (<T>), resolved per node instance
  - qualified template (LIST<T>), resolved to LIST<...> keeping the wrapper

Resolution only narrows: Intersect and IntersectAll combine constraints and an
Env accumulates every binding site for a template key. Compatible is the
subset check used by validation.
*/
package socket

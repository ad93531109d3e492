// Package loop implements loop control by graph rewriting.
//
// An open node emits a flow handle and the loop-carried values; the matching
// close node receives the handle, a condition and the current values. While
// the condition holds, the close node calls Expand to clone the loop body
// (every node between open and close) once, seeds the cloned open node with
// the current values, and returns references to the clone's outputs. The
// host splices the clone and schedules it like any other node, so each
// iteration is one bounded step and nothing recurses on the call stack.
//
// Termination is the caller's responsibility: a condition that never becomes
// false adds one clone per iteration without bound.
package loop

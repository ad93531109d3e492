// Package nodes provides the built-in node classes.
//
// The loop classes come in open/close pairs linked through their
// flow_control socket. WhileLoopClose re-runs the body by graph expansion
// (see package loop). ForLoopOpen and ForLoopClose are compositions: on
// execution they expand into a WhileLoopOpen and into a decrement, a
// condition and a WhileLoopClose respectively, so they add no loop logic of
// their own.
//
// The remaining classes are small value nodes used to build loop bodies.
package nodes

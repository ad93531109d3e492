// Package resolve computes the concrete schema of a node instance from its
// declaration and the types observed on its wiring.
//
// Node classes opt into behavior by choosing a Strategy: Templates for <T>
// placeholders, Variadic for name#GROUP sockets, Generic for both, and Flow
// for the loop-carried sockets of open/close pairs.
package resolve

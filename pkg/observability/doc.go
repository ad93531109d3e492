/*
Package observability provides tools for monitoring the Weave engine.

It includes lifecycle hooks for logging node executions and graph
expansions, Prometheus collectors fed by the same hooks, and a helper to
combine several hook sets into one.
*/
package observability

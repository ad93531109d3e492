/*
Package session serializes access to stored prompts.

A prompt may be loaded, run and saved back by several replicas. The Manager
pairs an in-process mutex per prompt with an optional distributed lock, so
a read-modify-write through Update never interleaves with another one.
*/
package session

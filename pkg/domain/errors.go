package domain

import "errors"

// ErrMissingFlowHandle is returned when a close node must loop but was not
// given the handle of its open node. Hosts must treat it as fatal.
var ErrMissingFlowHandle = errors.New("missing flow handle")

// ErrNodeNotFound is returned when a link or id names a node the prompt does not hold.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when a node id is added twice.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrUnknownClass is returned when no node class is registered under a name.
var ErrUnknownClass = errors.New("unknown node class")

// ErrPromptNotFound is returned when a prompt ID cannot be found in the store.
var ErrPromptNotFound = errors.New("prompt not found")

// ErrStalled is returned when nodes remain but none can run.
var ErrStalled = errors.New("prompt stalled")

// ErrExpansionLimit is returned when a run exceeds the host's expansion cap.
var ErrExpansionLimit = errors.New("expansion limit reached")

package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeStart EventType = "node_start"
	EventNodeDone  EventType = "node_done"
	EventExpansion EventType = "expansion"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	PromptID  string    `json:"prompt_id,omitempty"`
}

// NodeEvent represents the start or end of one node execution.
type NodeEvent struct {
	EventBase
	NodeID    string `json:"node_id"`
	DisplayID string `json:"display_id"`
	Class     string `json:"class"`
	Outputs   []any  `json:"outputs,omitempty"`
}

// ExpansionEvent represents a subgraph spliced into the prompt.
type ExpansionEvent struct {
	EventBase
	NodeID string   `json:"node_id"`
	Prefix string   `json:"prefix"`
	Added  []string `json:"added"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeStart func(context.Context, *NodeEvent)
	OnNodeDone  func(context.Context, *NodeEvent)
	OnExpand    func(context.Context, *ExpansionEvent)
}

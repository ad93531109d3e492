package ports

import (
	"context"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// PromptReader gives read access to the prompt being executed.
// *domain.Prompt implements it.
type PromptReader interface {
	Node(id string) (*domain.Node, bool)
	IDs() []string
	// Position is the insertion index of a node.
	Position(id string) (int, bool)
}

// ConsumerIndex is implemented by readers that index links by producer.
// Lookups that would otherwise scan every node use it when present.
type ConsumerIndex interface {
	// Consumers returns the nodes whose input named input links to id.
	Consumers(id, input string) []string
}

// Hidden is the context the host passes to an execution besides the bound
// input values.
type Hidden struct {
	// NodeID is the id of the executing node instance.
	NodeID string
	// DisplayID is the identity shown to users.
	DisplayID string
	// Schema is the resolved schema the node was scheduled with.
	Schema schema.Schema
	// Prompt is the current graph, fully populated up to this node.
	Prompt PromptReader
	// Prefix is unique to this execution; nodes the execution creates must
	// use ids under it.
	Prefix string
}

// NodeClass is the capability set every node type exposes to the host.
type NodeClass interface {
	// Name is the registered class name.
	Name() string

	// DeclaredSchema is the shape prior to resolution.
	DeclaredSchema() schema.Schema

	// Resolve returns the concrete schema of one instance given the types
	// observed on its wiring and on its entangled partners.
	Resolve(req resolve.Request) schema.Schema

	// Execute runs the node. A ContinueWith result asks the host to splice
	// the expansion into the prompt.
	Execute(ctx context.Context, inputs map[string]any, hidden Hidden) (domain.Result, error)

	// Validate rejects observed input types that are not subsets of the
	// declared ones. Failures are reported as *schema.ValidationError values.
	Validate(observed map[string]socket.Type) error
}

// Entangled is implemented by classes whose instances are resolved jointly
// with partner nodes, such as loop open/close pairs.
type Entangled interface {
	Partners(nodeID string, p PromptReader) []string
}

// ClassLookup resolves class names to implementations.
type ClassLookup interface {
	Lookup(name string) (NodeClass, error)
}

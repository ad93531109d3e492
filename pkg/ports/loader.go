package ports

import (
	"context"

	"github.com/aretw0/weave/pkg/domain"
)

// PromptLoader defines how a prompt graph is read from a source such as a
// Loam vault or an in-memory fixture.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type PromptLoader interface {
	// GetNode retrieves the definition of a node by ID.
	GetNode(ctx context.Context, id string) (*domain.Node, error)

	// ListNodes returns the IDs of every node available in the source.
	// This is used for introspection and visualization tools (e.g. 'weave graph').
	ListNodes(ctx context.Context) ([]string, error)
}

// LoadPrompt assembles every node a loader exposes into a prompt.
func LoadPrompt(ctx context.Context, loader PromptLoader, promptID string) (*domain.Prompt, error) {
	ids, err := loader.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	p := domain.NewPrompt(promptID)
	for _, id := range ids {
		n, err := loader.GetNode(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := p.Add(n); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Watchable is implemented by loaders that can report changes to their source.
type Watchable interface {
	// Watch emits the id of every node that changes until ctx ends.
	Watch(ctx context.Context) (<-chan string, error)
}

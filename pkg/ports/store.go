package ports

import (
	"context"

	"github.com/aretw0/weave/pkg/domain"
)

// PromptStore defines the interface for persisting prompts.
// Stored prompts can be validated or run later by id, from any replica.
type PromptStore interface {
	// Save persists the prompt under the given ID.
	Save(ctx context.Context, promptID string, prompt *domain.Prompt) error

	// Load retrieves the prompt for a given ID.
	// Returns domain.ErrPromptNotFound if the prompt does not exist.
	Load(ctx context.Context, promptID string) (*domain.Prompt, error)

	// Delete removes the prompt for a given ID.
	Delete(ctx context.Context, promptID string) error

	// List returns the IDs of all stored prompts.
	List(ctx context.Context) ([]string, error)
}

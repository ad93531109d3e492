package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/weave/pkg/domain"
)

// Store implements ports.PromptStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Prompt
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Prompt),
	}
}

// Save persists a copy of the prompt.
func (s *Store) Save(ctx context.Context, promptID string, p *domain.Prompt) error {
	copied := p.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[promptID] = copied
	return nil
}

// Load returns a copy so callers can't mutate stored prompts by pointer.
func (s *Store) Load(ctx context.Context, promptID string) (*domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[promptID]
	if !ok {
		return nil, domain.ErrPromptNotFound
	}
	return p.Clone(), nil
}

// Delete removes the prompt.
func (s *Store) Delete(ctx context.Context, promptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, promptID)
	return nil
}

// List returns stored prompt IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

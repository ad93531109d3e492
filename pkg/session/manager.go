package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed prompt lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to stored prompts, so one prompt is never run
// and rewritten concurrently. It uses reference counting to garbage collect
// unused locks.
type Manager struct {
	store ports.PromptStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given prompt store.
func NewManager(store ports.PromptStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(promptID) after unlocking.
func (m *Manager) acquire(promptID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[promptID]
	if !exists {
		entry = &lockEntry{}
		m.locks[promptID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(promptID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[promptID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, promptID)
	}
}

// Load retrieves a stored prompt.
func (m *Manager) Load(ctx context.Context, promptID string) (*domain.Prompt, error) {
	var p *domain.Prompt
	err := m.WithLock(ctx, promptID, func(ctx context.Context) error {
		var err error
		p, err = m.store.Load(ctx, promptID)
		return err
	})
	return p, err
}

// Save persists a prompt.
func (m *Manager) Save(ctx context.Context, promptID string, p *domain.Prompt) error {
	return m.WithLock(ctx, promptID, func(ctx context.Context) error {
		return m.store.Save(ctx, promptID, p)
	})
}

// Update loads a prompt, passes it to fn and saves what fn returns, all
// under the prompt's lock. A missing prompt reaches fn as nil. Returning a
// nil prompt leaves the store untouched.
func (m *Manager) Update(ctx context.Context, promptID string, fn func(context.Context, *domain.Prompt) (*domain.Prompt, error)) error {
	return m.WithLock(ctx, promptID, func(ctx context.Context) error {
		cur, err := m.store.Load(ctx, promptID)
		if err != nil && !errors.Is(err, domain.ErrPromptNotFound) {
			return fmt.Errorf("failed to load prompt: %w", err)
		}
		next, err := fn(ctx, cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return m.store.Save(ctx, promptID, next)
	})
}

// Delete removes the prompt from the store.
func (m *Manager) Delete(ctx context.Context, promptID string) error {
	return m.WithLock(ctx, promptID, func(ctx context.Context) error {
		return m.store.Delete(ctx, promptID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying prompt store.
func (m *Manager) Store() ports.PromptStore {
	return m.store
}

// WithLock executes a function while holding the lock for the prompt.
func (m *Manager) WithLock(ctx context.Context, promptID string, fn func(context.Context) error) error {
	entry := m.acquire(promptID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(promptID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, promptID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"prompt_id", promptID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

package runtime

import (
	"log/slog"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// Engine resolves, validates and executes prompts.
type Engine struct {
	classes       ports.ClassLookup
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	maxExpansions int
	maxRounds     int
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxExpansions caps how many subgraphs one run may splice. Zero means
// no cap.
func WithMaxExpansions(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxExpansions = n
		}
	}
}

// WithMaxRounds caps the resolution fixpoint.
func WithMaxRounds(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRounds = n
		}
	}
}

// NewEngine creates an engine resolving class names through classes.
func NewEngine(classes ports.ClassLookup, opts ...Option) *Engine {
	e := &Engine{
		classes:   classes,
		logger:    logging.NewNop(),
		maxRounds: 16,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classes exposes the class lookup the engine was built with.
func (e *Engine) Classes() ports.ClassLookup { return e.classes }

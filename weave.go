package weave

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/loam"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/internal/runtime"
	loamAdapter "github.com/aretw0/weave/pkg/adapters/loam"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/nodes"
	"github.com/aretw0/weave/pkg/observability"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/registry"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
)

// Version is the library version reported by the CLI.
var Version = "v0.1.0-dev"

// Schemas maps node ids to their resolved schemas.
type Schemas = runtime.Schemas

// Engine is the high-level entry point for the Weave library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime       *runtime.Engine
	registry      *registry.Registry
	loader        ports.PromptLoader
	hooks         domain.LifecycleHooks
	metrics       *observability.Metrics
	logger        *slog.Logger
	maxExpansions int
	nodeOpts      []nodes.Option
	Name          string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom PromptLoader, bypassing the default Loam initialization.
func WithLoader(l ports.PromptLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithRegistry replaces the built-in class catalog. Classes are looked up
// in r only; register nodes.All into it to keep the built-ins.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithNodeOptions configures the built-in classes, e.g. the Print writer.
// It has no effect together with WithRegistry.
func WithNodeOptions(opts ...nodes.Option) Option {
	return func(e *Engine) {
		e.nodeOpts = append(e.nodeOpts, opts...)
	}
}

// WithMetrics feeds runtime events and validation verdicts into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxExpansions caps the subgraphs one run may splice. Zero means no cap.
func WithMaxExpansions(n int) Option {
	return func(e *Engine) {
		e.maxExpansions = n
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Weave Engine.
// A non-empty repoPath is opened as a read-only Loam vault holding one
// prompt, one document per node. If WithLoader is provided, repoPath is only
// used as the engine name.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil && repoPath != "" {
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}

		// Strict mode keeps numbers consistent across JSON and Markdown
		// documents. The engine never writes to the vault.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}

		typedRepo := loam.NewTypedRepository[loamAdapter.NodeMetadata](repo)
		eng.loader = loamAdapter.New(typedRepo)
	}
	if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("prompt_source", eng.Name)
	}

	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
		if err := nodes.RegisterAll(eng.registry, eng.nodeOpts...); err != nil {
			return nil, err
		}
	}

	hooks := []domain.LifecycleHooks{observability.LoggingHooks(eng.logger)}
	if eng.metrics != nil {
		hooks = append(hooks, eng.metrics.Hooks())
	}
	hooks = append(hooks, eng.hooks)

	eng.runtime = runtime.NewEngine(eng.registry,
		runtime.WithLogger(eng.logger),
		runtime.WithHooks(observability.Combine(hooks...)),
		runtime.WithMaxExpansions(eng.maxExpansions),
	)

	return eng, nil
}

// Load assembles the prompt exposed by the engine's loader.
func (e *Engine) Load(ctx context.Context) (*domain.Prompt, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("no prompt loader configured")
	}
	id := e.Name
	if id == "" {
		id = "prompt"
	}
	return ports.LoadPrompt(ctx, e.loader, id)
}

// Resolve computes the schema of every node in p.
func (e *Engine) Resolve(p *domain.Prompt) (Schemas, error) {
	return e.runtime.Resolve(p)
}

// Validate checks every node's wiring against its declared schema.
func (e *Engine) Validate(p *domain.Prompt) error {
	err := e.runtime.Validate(p)
	if e.metrics != nil {
		e.metrics.ObserveValidation(err)
	}
	return err
}

// Run executes p to completion. The report is returned even on failure.
func (e *Engine) Run(ctx context.Context, p *domain.Prompt) (*domain.RunReport, error) {
	return e.runtime.Run(ctx, p)
}

// Classes lists the registered class names.
func (e *Engine) Classes() []string {
	return e.registry.Names()
}

// Class returns a registered class.
func (e *Engine) Class(name string) (ports.NodeClass, error) {
	return e.registry.Lookup(name)
}

// ResolveNode resolves one class against an observation supplied by the
// caller instead of a prompt's wiring.
func (e *Engine) ResolveNode(class string, observed schema.Observation, entangled ...schema.Observation) (schema.Schema, error) {
	c, err := e.registry.Lookup(class)
	if err != nil {
		return schema.Schema{}, err
	}
	return c.Resolve(resolve.Request{Observed: observed, Entangled: entangled}), nil
}

// Watch returns a channel that signals when the underlying prompt changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying PromptLoader used by the engine.
func (e *Engine) Loader() ports.PromptLoader {
	return e.loader
}

// Registry returns the class registry used by the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

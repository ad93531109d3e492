package nodes

import (
	"io"
	"os"

	"github.com/aretw0/weave/pkg/loop"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

// Base carries what every class shares: its name, its declaration, the
// resolver strategy it opted into and the validator it checks wiring with.
// Concrete classes embed it and add Execute.
type Base struct {
	name      string
	decl      schema.Schema
	strategy  resolve.Strategy
	validator *schema.Validator
}

func newBase(name string, decl schema.Schema, strategy resolve.Strategy, cfg config) Base {
	return Base{name: name, decl: decl, strategy: strategy, validator: cfg.validator}
}

// Name implements ports.NodeClass.
func (b Base) Name() string { return b.name }

// DeclaredSchema implements ports.NodeClass.
func (b Base) DeclaredSchema() schema.Schema { return b.decl.Clone() }

// Resolve implements ports.NodeClass.
func (b Base) Resolve(req resolve.Request) schema.Schema {
	return b.strategy.Resolve(b.decl, req)
}

// Validate checks observed types against the declaration. Variadic groups
// are numbered first so that value3 is checked against value#N; templates
// are left in place and accept anything.
func (b Base) Validate(observed map[string]socket.Type) error {
	obs := schema.NewObservation()
	for name, t := range observed {
		obs.ObserveInput(name, t)
	}
	expanded := resolve.ExpandGroups(b.decl, resolve.Request{Observed: obs})
	return b.validator.Validate(expanded, observed)
}

// flowPartners makes a class entangled through its flow socket.
type flowPartners struct{}

func (flowPartners) Partners(nodeID string, p ports.PromptReader) []string {
	return loop.Partners(p, nodeID)
}

// Option configures the catalog.
type Option func(*config)

type config struct {
	validator *schema.Validator
	out       io.Writer
}

func newConfig(opts []Option) config {
	cfg := config{validator: schema.NewValidator(), out: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithValidator shares a validator, and so its smart types, across classes.
func WithValidator(v *schema.Validator) Option {
	return func(c *config) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithOutput sets where Print writes.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.out = w
		}
	}
}

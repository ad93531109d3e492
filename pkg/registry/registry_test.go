package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/resolve"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/socket"
)

type stubClass struct{ name string }

func (s stubClass) Name() string                          { return s.name }
func (s stubClass) DeclaredSchema() schema.Schema         { return schema.Schema{} }
func (s stubClass) Resolve(resolve.Request) schema.Schema { return schema.Schema{} }
func (s stubClass) Validate(map[string]socket.Type) error { return nil }
func (s stubClass) Execute(context.Context, map[string]any, ports.Hidden) (domain.Result, error) {
	return domain.Done{}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubClass{name: "B"}))
	require.NoError(t, r.Register(stubClass{name: "A"}))

	c, err := r.Lookup("A")
	require.NoError(t, err)
	assert.Equal(t, "A", c.Name())
	assert.Equal(t, []string{"A", "B"}, r.Names())

	_, err = r.Lookup("missing")
	assert.True(t, errors.Is(err, domain.ErrUnknownClass))

	assert.Error(t, r.Register(stubClass{}))
	assert.Error(t, r.Register(nil))
}

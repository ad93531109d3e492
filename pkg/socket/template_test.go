package socket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		out  string
	}{
		{"", KindWildcard, "*"},
		{" * ", KindWildcard, "*"},
		{"INT", KindConcrete, "INT"},
		{"STRING, INT", KindConcrete, "INT,STRING"},
		{"<T>", KindTemplate, "<T>"},
		{"LIST<T>", KindQualified, "LIST<T>"},
		{"FLOAT,LIST<INT>", KindConcrete, "FLOAT,LIST<INT>"},
		{"A,*", KindWildcard, "*"},
	}
	for _, tt := range tests {
		got := Parse(tt.in)
		assert.Equal(t, tt.kind, got.Kind(), "kind of %q", tt.in)
		assert.Equal(t, tt.out, got.String(), "string of %q", tt.in)
	}
}

func TestObservedNeverTemplated(t *testing.T) {
	got := Observed("LIST<INT>")
	assert.Equal(t, KindConcrete, got.Kind())
	assert.True(t, got.Has("LIST<INT>"))
}

func TestTemplateRoundTrip(t *testing.T) {
	t.Run("naked", func(t *testing.T) {
		decl := Parse("<T>")
		key, val, ok := Bind(decl, Observed("IMAGE"))
		require.True(t, ok)
		env := NewEnv()
		env.Bind(key, val)
		assert.Equal(t, "IMAGE", Substitute(decl, env).String())
	})

	t.Run("qualified", func(t *testing.T) {
		decl := Parse("ACCUMULATION<T>")
		key, val, ok := Bind(decl, Observed("ACCUMULATION<INT>"))
		require.True(t, ok)
		assert.Equal(t, "T", key)
		assert.Equal(t, "INT", val.String())
		env := NewEnv()
		env.Bind(key, val)
		assert.Equal(t, "ACCUMULATION<INT>", Substitute(decl, env).String())
	})

	t.Run("wrapper mismatch", func(t *testing.T) {
		_, _, ok := Bind(Parse("LIST<T>"), Observed("ACCUMULATION<INT>"))
		assert.False(t, ok)
	})

	t.Run("concrete declaration", func(t *testing.T) {
		_, _, ok := Bind(Parse("INT"), Observed("INT"))
		assert.False(t, ok)
	})
}

func TestSubstituteUnbound(t *testing.T) {
	env := NewEnv()
	assert.True(t, Substitute(Parse("<T>"), env).IsWildcard())
	assert.Equal(t, "LIST<*>", Substitute(Parse("LIST<T>"), env).String())
	assert.Equal(t, "INT", Substitute(Parse("INT"), env).String())
}

func TestEnvNarrowsAcrossSites(t *testing.T) {
	env := NewEnv()
	env.Bind("T", Observed("INT,FLOAT"))
	env.Bind("T", Observed("FLOAT,STRING"))
	assert.Equal(t, "FLOAT", env.Lookup("T").String())
	assert.Equal(t, []string{"T"}, env.Keys())

	// Disjoint sites fall back to the wildcard; validation is what reports it.
	env.Bind("U", Observed("INT"))
	env.Bind("U", Observed("STRING"))
	assert.True(t, env.Lookup("U").IsWildcard())
}

func TestReplaceGroup(t *testing.T) {
	assert.Equal(t, "<T3>", Parse("<T#N>").ReplaceGroup("#N", 3).String())
	assert.Equal(t, "LIST<T0>", Parse("LIST<T#N>").ReplaceGroup("#N", 0).String())
	assert.Equal(t, "INT", Parse("INT").ReplaceGroup("#N", 2).String())
}

func TestTypeJSON(t *testing.T) {
	var got struct {
		A Type `json:"a"`
		B Type `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"LIST<T>","b":"INT,FLOAT"}`), &got))
	assert.Equal(t, KindQualified, got.A.Kind())
	assert.Equal(t, "FLOAT,INT", got.B.String())

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"LIST<T>","b":"FLOAT,INT"}`, string(out))
}

func TestOf(t *testing.T) {
	assert.Equal(t, "INT", Of(3).String())
	assert.Equal(t, "INT", Of(float64(3)).String())
	assert.Equal(t, "FLOAT", Of(2.5).String())
	assert.Equal(t, "BOOLEAN", Of(true).String())
	assert.Equal(t, "STRING", Of("x").String())
	assert.Equal(t, "INT", Of(json.Number("7")).String())
	assert.True(t, Of(nil).IsWildcard())
	assert.True(t, Of(struct{}{}).IsWildcard())
}

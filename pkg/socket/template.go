package socket

import "sort"

// Env collects template bindings for one resolution pass.
//
// Every binding site is kept and the resolved value of a key is the
// intersection of all of them, so the order in which sites are visited does
// not change the result.
type Env struct {
	sites map[string][]Type
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{sites: make(map[string][]Type)}
}

// Bind records one observation for key.
func (e *Env) Bind(key string, t Type) {
	if e.sites == nil {
		e.sites = make(map[string][]Type)
	}
	e.sites[key] = append(e.sites[key], t)
}

// Lookup returns the resolved value of key, or the wildcard when unbound.
func (e *Env) Lookup(key string) Type {
	if e == nil {
		return Any()
	}
	return IntersectAll(e.sites[key]...)
}

// Keys lists bound keys in sorted order.
func (e *Env) Keys() []string {
	keys := make([]string, 0, len(e.sites))
	for k := range e.sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bind matches a declared descriptor against an observed one.
//
// A naked template <K> binds K to actual. A qualified template W<K> binds K
// when every member of actual is W<V>; the union of the V becomes the value.
// Concrete declarations yield no binding.
func Bind(template, actual Type) (key string, value Type, ok bool) {
	switch template.kind {
	case KindTemplate:
		return template.key, actual, true
	case KindQualified:
		if actual.kind != KindConcrete {
			return "", Type{}, false
		}
		var inner []string
		for _, m := range actual.names {
			w, in, isQ := splitQualified(m)
			if !isQ || w != template.wrapper {
				return "", Type{}, false
			}
			inner = append(inner, splitUnion(in)...)
		}
		return template.key, Concrete(inner...), true
	}
	return "", Type{}, false
}

// Substitute resolves the placeholder in t through env. Unbound keys become
// the wildcard; a qualified template keeps its wrapper. Other types are
// returned unchanged.
func Substitute(t Type, env *Env) Type {
	switch t.kind {
	case KindTemplate:
		return env.Lookup(t.key)
	case KindQualified:
		return Concrete(t.wrapper + "<" + env.Lookup(t.key).String() + ">")
	}
	return t
}
